// Package dispose provides reusable, concurrency-safe disposal scopes.
//
// A scope collects resources that own a release action and later releases
// all of them at once. Unlike a one-shot cleanup list, a scope can be drained
// any number of times, and it stays usable while a drain is running:
// resources added by other goroutines, or by release callbacks themselves,
// land in a fresh batch and are released by the next drain.
//
// # Architecture Overview
//
//	dispose/             Root package with type aliases and NewScope
//	├── resource/        Resource interface, adapters and identity helper
//	├── scope/           Batch and Scope, observers, stats, Attach helpers
//	├── errors/          Structured error types for release failures
//	├── listener/        Subscription lifecycle driving a scope
//	├── engine/          wazero runtime whose modules and instances live in scopes
//	└── cmd/scopestress/ Stress tool verifying exactly-once release
//
// # Quick Start
//
//	s := dispose.NewScope()
//
//	f, err := os.Open(path)
//	if err != nil {
//	    return err
//	}
//	s.Add(resource.Closer(f))
//	s.AddFunc(func() { fmt.Println("done") })
//
//	if err := s.Drain(); err != nil {
//	    log.Printf("release: %v", err)
//	}
//
// # Drain Semantics
//
// A scope holds two batches and swaps them at the start of each drain. The
// batch that was active is released outside the scope's lock while the other
// one accepts new resources. A drain started while another one is in progress
// (from another goroutine or from inside a release callback) returns
// immediately without releasing anything.
//
// Release failures never stop a drain. Every failure, including a recovered
// panic, is wrapped in an *errors.Error and the drain returns all of them
// combined.
//
// # Thread Safety
//
// Scope is safe for concurrent use. Batch is not; it is the building block a
// Scope guards with its mutex.
package dispose
