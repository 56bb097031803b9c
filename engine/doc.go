// Package engine binds wazero module lifetimes to disposal scopes.
//
// An Engine wraps a wazero runtime with two scopes: one for compiled
// modules, which live as long as the engine, and one for instances, which
// are recycled in bulk:
//
//	eng := engine.New(ctx, nil)
//	defer eng.Close(ctx)
//
//	compiled, err := eng.Compile(ctx, wasmBytes)
//	for job := range jobs {
//	    mod, err := eng.Instantiate(ctx, compiled, "worker")
//	    run(mod, job)
//	    eng.Recycle(ctx) // closes "worker"; the name is free again
//	}
//
// Instances are registered through resource.CloserContext, so anything that
// closes a wazero module can be released the same way from other scopes.
package engine
