package graph

import "errors"

// Sentinel errors for graph store operations. Callers match them with
// errors.Is.
var (
	// ErrNotFound indicates the referenced node or edge does not exist.
	ErrNotFound = errors.New("graph: not found")

	// ErrAlreadyExists indicates a shadow node id collided with an
	// existing node.
	ErrAlreadyExists = errors.New("graph: node already exists")

	// ErrInvalidEndpoint indicates an edge referenced a missing node.
	ErrInvalidEndpoint = errors.New("graph: edge endpoint does not exist")

	// ErrHierarchyViolation indicates an edge was rejected by the
	// containment rules: either a document would contain a folder, or the
	// edge would close a containment cycle.
	ErrHierarchyViolation = errors.New("graph: hierarchy violation")

	// ErrInvalidArgument indicates a malformed request, such as an empty
	// node id or an out-of-range traversal depth.
	ErrInvalidArgument = errors.New("graph: invalid argument")
)
