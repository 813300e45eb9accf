// Package core holds the domain of Kiln: the markup node tree, entity
// definitions, records, the command language and its scope stacks.
package core

import "fmt"

// EventType represents the type of change observed on a document.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a watched document.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}
