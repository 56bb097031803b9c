// Package resource defines the releasable values that scopes own.
//
// A Resource has a single Release action. Values that already know how to
// clean up are adapted rather than rewritten:
//
//	resource.Func(func() { ticker.Stop() })      // bare callback
//	resource.FuncErr(func() error { ... })       // fallible callback
//	resource.Closer(file)                        // io.Closer
//	resource.CloserContext(ctx, wazeroModule)    // Close(ctx) error
//	resource.Drop(handle)                        // Drop()
//
// # Identity
//
// Scopes find registrations with Same, which compares with ==. Adapters over
// existing objects are comparable values, so wrapping the same object twice
// produces equal resources:
//
//	s.Add(resource.Closer(f))
//	s.Remove(resource.Closer(f)) // true
//
// Callback adapters are pointers; keep the returned Resource to remove it.
package resource
