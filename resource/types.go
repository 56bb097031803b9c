package resource

import "context"

// Resource is anything a scope can release on the owner's behalf.
//
// Release is called at most once per registration by a scope. Implementations
// should be fast and non-blocking; a Release that blocks stalls the drain
// cycle that invoked it.
type Resource interface {
	Release() error
}

// Dropper is implemented by values that need cleanup but cannot fail.
type Dropper interface {
	Drop()
}

// ContextCloser is implemented by values whose Close takes a context,
// such as wazero runtimes, compiled modules and module instances.
type ContextCloser interface {
	Close(ctx context.Context) error
}
