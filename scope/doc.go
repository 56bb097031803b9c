// Package scope provides a reusable, concurrency-safe disposal container.
//
// A Scope collects resources and releases all of them when drained. Unlike
// a one-shot closer list it stays usable afterwards, so the same scope can
// back any number of subscribe/unsubscribe or open/close cycles.
//
//	s := scope.NewWithDefaults()
//	s.Add(resource.Closer(conn))
//	s.AddFunc(func() { ticker.Stop() })
//	f := scope.AttachCloser(s, file)
//
//	err := s.Drain() // releases conn, ticker and file; s is empty again
//
// # Double Buffering
//
// A Scope owns two batches. Drain swaps which one is active under the lock,
// then releases the other without holding the lock. This lets release
// actions call Add, Remove or Drain on the same scope without deadlocking:
//
//	s.AddFunc(func() {
//	    s.AddFunc(cleanupLater) // lands in the new active batch
//	})
//	s.Drain() // cleanupLater is not released yet
//	s.Drain() // now it is
//
// Only one sweep runs at a time. A Drain that arrives while another is in
// progress returns immediately and releases nothing; resources it would have
// seen stay registered for the next cycle.
//
// # Discard vs Release
//
// Clear forgets every registration without releasing it. Remove hands a
// single resource back to the caller and only looks at the active batch, so
// a resource swapped out by an in-progress Drain can no longer be removed.
//
// # Failures
//
// A failing or panicking release never stops a sweep. Failures are
// returned from Drain combined with go.uber.org/multierr, logged at warn
// level and reported to observers as EventReleaseFailed.
//
// # Composition
//
// AsResource wraps a scope's Drain as a Resource, so child scopes can be
// registered in a parent:
//
//	parent.Add(child.AsResource())
package scope
