package dom

import "errors"

// Errors flagged by mutations which the live tree refuses.
var (
	// ErrHierarchy is flagged if a node cannot be inserted at the requested position.
	ErrHierarchy = errors.New("node cannot be inserted at this position")

	// ErrNotAChild is flagged if a reference node is not a child of the given parent.
	ErrNotAChild = errors.New("node is not a child of this parent")

	// ErrDetached is flagged for operations which require an attached node.
	ErrDetached = errors.New("node is not attached to a parent")

	// ErrNodeType is flagged for operations on nodes of the wrong type.
	ErrNodeType = errors.New("operation not supported for this node type")

	// ErrNoTimer is flagged for unknown timer IDs.
	ErrNoTimer = errors.New("no timer with this id")
)

// Errors flagged while loading resources.
var (
	// ErrNoResource is flagged if a resource loader does not know a URL.
	ErrNoResource = errors.New("resource not found")
)
