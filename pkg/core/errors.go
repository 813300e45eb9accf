package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrUnknownElement is returned for a node that declares neither a record,
	// a command scope nor a variable scope.
	ErrUnknownElement = errors.New("unknown element")
	// ErrCommandIsNotDefined is returned for a record child carrying attributes
	// whose name is not one of the command elements.
	ErrCommandIsNotDefined = errors.New("command is not defined")
	// ErrPropertyIsNotDefined is returned when a name does not match any schema property.
	ErrPropertyIsNotDefined = errors.New("property is not defined")
	// ErrCannotAddItemToNonCollectionProperty is returned by the add command on a scalar property.
	ErrCannotAddItemToNonCollectionProperty = errors.New("cannot add item to non-collection property")
	// ErrPropertyNameIsReserved is returned when building a schema with a reserved property name.
	ErrPropertyNameIsReserved = errors.New("property name is reserved")
	// ErrInvalidValue is returned when a raw value cannot be resolved.
	ErrInvalidValue = errors.New("invalid value")
	// ErrEntityNameRequired is returned when building a schema without an entity name.
	ErrEntityNameRequired = errors.New("entity name is required")
	// ErrDuplicateProperty is returned when a schema declares the same property twice.
	ErrDuplicateProperty = errors.New("duplicate property")
	// ErrMissingAttribute is returned for a var element without its name or value.
	ErrMissingAttribute = errors.New("missing required attribute")
	// ErrDocumentTooDeep is returned when nesting exceeds the collector's maximum depth.
	ErrDocumentTooDeep = errors.New("document nesting too deep")
)

// NodeError ties a failure to the document node being processed when it occurred.
type NodeError struct {
	Node *Node
	Err  error
}

// Error implements error.
func (e *NodeError) Error() string {
	if e.Node == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Node, e.Err)
}

// Unwrap allows errors.Is to match the underlying sentinel.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError wraps err with the node it is attributed to.
// An error that already carries a node is returned unchanged.
func NewNodeError(n *Node, err error) error {
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{Node: n, Err: err}
}
