package collab

import "errors"

// Adapter-specific errors
var (
	// ErrAdapterDisposed is returned by every accessor and mutator
	// invoked after Close. It is the only error the adapter itself
	// produces; backend write failures pass through unmodified.
	ErrAdapterDisposed = errors.New("adapter is disposed")
)
