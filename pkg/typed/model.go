// Package typed decodes built records into Go structs.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/kiln/pkg/core"
)

// Model is a typed view of a built record.
type Model[T any] struct {
	ID   string
	Tags []string
	Data T // The record properties decoded into T
}

// Decode converts the record properties into T through a JSON round-trip.
// Collection properties decode into slices; scalars into strings or any
// type implementing json.Unmarshaler.
func Decode[T any](r *core.Record) (*Model[T], error) {
	if r == nil {
		return nil, fmt.Errorf("nil record")
	}
	dataBytes, err := json.Marshal(r.Properties)
	if err != nil {
		return nil, fmt.Errorf("properties marshal failed: %w", err)
	}

	var data T
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}

	var tags []string
	if r.Tags != nil {
		tags = append([]string(nil), r.Tags...)
	}
	return &Model[T]{ID: r.Identity(), Tags: tags, Data: data}, nil
}

// DecodeAll decodes every record, stopping at the first failure.
func DecodeAll[T any](records []*core.Record) ([]*Model[T], error) {
	result := make([]*Model[T], 0, len(records))
	for i, r := range records {
		m, err := Decode[T](r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %d (%q): %w", i, r.Identity(), err)
		}
		result = append(result, m)
	}
	return result, nil
}

// Source produces records from a document.
type Source interface {
	ReadFile(ctx context.Context, path string) ([]*core.Record, error)
}

// Reader wraps a Source to provide type-safe access.
type Reader[T any] struct {
	src Source
}

// NewReader creates a type-safe wrapper around an existing source.
func NewReader[T any](src Source) *Reader[T] {
	return &Reader[T]{src: src}
}

// ReadFile builds the records of path and decodes them into T.
func (r *Reader[T]) ReadFile(ctx context.Context, path string) ([]*Model[T], error) {
	records, err := r.src.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](records)
}

// Find returns the first record with the given id.
func (r *Reader[T]) Find(ctx context.Context, path, id string) (*Model[T], error) {
	records, err := r.src.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID != nil && *rec.ID == id {
			return Decode[T](rec)
		}
	}
	return nil, fmt.Errorf("record %q not found in %s", id, path)
}
