package navgraph

import "errors"

var (
	// ErrNodeNotFound is returned by authoring operations that reference a
	// node the graph does not hold. Runtime queries never return it; they
	// yield an empty result instead.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidThreshold is returned when the connection threshold is not a
	// positive, finite distance.
	ErrInvalidThreshold = errors.New("connection threshold must be positive")

	// ErrCorruptSnapshot is returned when a saved graph references nodes it
	// does not contain.
	ErrCorruptSnapshot = errors.New("corrupt graph snapshot")
)
