package weave

import (
	"errors"
	"fmt"

	"github.com/nexusgraph/weave/canvas"
	"github.com/nexusgraph/weave/graph"
	"github.com/nexusgraph/weave/persist"
)

// Error kinds categorize engine errors by their cause.
const (
	// KindNotFound indicates a referenced node, edge or canvas is absent.
	KindNotFound = "not_found"

	// KindAlreadyExists indicates an id collision on creation.
	KindAlreadyExists = "already_exists"

	// KindInvalidEndpoint indicates an edge referenced a missing node.
	KindInvalidEndpoint = "invalid_endpoint"

	// KindHierarchyViolation indicates the containment rules rejected an
	// edge: a cycle or a leaf-into-container insertion.
	KindHierarchyViolation = "hierarchy_violation"

	// KindPersistence indicates a durable read or write failed.
	KindPersistence = "persistence"

	// KindValidation indicates a malformed request.
	KindValidation = "validation"
)

// Error is a structured error wrapping an underlying failure with the
// operation that produced it and its kind. It supports errors.Is and
// errors.As through Unwrap.
type Error struct {
	// Op is the operation that failed (e.g., "Engine.AddEdge").
	Op string

	// Kind categorizes the error (e.g., KindNotFound).
	Kind string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("weave: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("weave: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind (and op, when the target sets one), or
// delegates to the underlying error chain.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			return t.Op == "" || e.Op == t.Op
		}
		return false
	}
	return errors.Is(e.Err, target)
}

// wrapErr classifies a package-level sentinel into a structured Error.
// A nil err passes through unchanged.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, graph.ErrNotFound), errors.Is(err, canvas.ErrNotFound):
		return KindNotFound
	case errors.Is(err, graph.ErrAlreadyExists), errors.Is(err, canvas.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, graph.ErrInvalidEndpoint):
		return KindInvalidEndpoint
	case errors.Is(err, graph.ErrHierarchyViolation):
		return KindHierarchyViolation
	case errors.Is(err, persist.ErrStorageFailed):
		return KindPersistence
	default:
		return KindValidation
	}
}
