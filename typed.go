package kiln

import (
	"github.com/aretw0/kiln/pkg/core"
	"github.com/aretw0/kiln/pkg/typed"
)

// Model is a typed view of a record.
type Model[T any] = typed.Model[T]

// TypedReader decodes the records of a document into T.
type TypedReader[T any] = typed.Reader[T]

// Decode converts the properties of r into T.
func Decode[T any](r *core.Record) (*Model[T], error) {
	return typed.Decode[T](r)
}

// DecodeAll decodes every record into T.
func DecodeAll[T any](records []*core.Record) ([]*Model[T], error) {
	return typed.DecodeAll[T](records)
}

// NewTyped creates a type-safe wrapper around a Reader.
func NewTyped[T any](r *Reader) *TypedReader[T] {
	return typed.NewReader[T](r)
}
