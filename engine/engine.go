package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/dispose/errors"
	"github.com/wippyai/dispose/resource"
	"github.com/wippyai/dispose/scope"
)

// ErrClosed is returned by operations on a closed Engine.
var ErrClosed = errors.InvalidInput(errors.PhaseEngine, "engine closed")

// Config holds configuration for engine creation
type Config struct {
	// Logger is used by the engine and its scopes. Defaults to Logger().
	Logger *zap.Logger

	// Name prefixes the names of the engine's scopes.
	Name string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Engine owns a wazero runtime together with everything compiled and
// instantiated in it.
//
// Compiled modules live until Close. Instances are recycled: Recycle closes
// every instance created so far and leaves the engine ready for new ones,
// so instance names can be reused across cycles. Thread-safe: Close waits
// for in-flight Compile and Instantiate calls, and later calls fail with
// ErrClosed, so nothing is registered after the scopes are drained.
type Engine struct {
	runtime   wazero.Runtime
	modules   *scope.Scope
	instances *scope.Scope
	logger    *zap.Logger
	seq       atomic.Uint64
	mu        sync.RWMutex
	closed    bool
}

// New creates an engine. A nil cfg uses defaults.
func New(ctx context.Context, cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	name := cfg.Name
	if name == "" {
		name = "engine"
	}

	return &Engine{
		runtime:   wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		modules:   scope.New(scope.Options{Name: name + "/modules", Logger: log}),
		instances: scope.New(scope.Options{Name: name + "/instances", Logger: log}),
		logger:    log,
	}
}

// Runtime returns the underlying wazero runtime.
func (e *Engine) Runtime() wazero.Runtime {
	return e.runtime
}

// Modules returns the scope owning compiled modules.
func (e *Engine) Modules() *scope.Scope {
	return e.modules
}

// Instances returns the scope owning module instances.
func (e *Engine) Instances() *scope.Scope {
	return e.instances
}

// Compile compiles wasm and registers the compiled module for release on Close.
func (e *Engine) Compile(ctx context.Context, wasm []byte) (wazero.CompiledModule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEngine, errors.KindCompile, err, "compile module")
	}
	e.modules.Add(resource.CloserContext(context.WithoutCancel(ctx), compiled))
	return compiled, nil
}

// Instantiate instantiates compiled under name and registers the instance
// for release on the next Recycle. An empty name is replaced with a unique one.
func (e *Engine) Instantiate(ctx context.Context, compiled wazero.CompiledModule, name string) (api.Module, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}
	if compiled == nil {
		return nil, errors.NilPointer(errors.PhaseEngine, "wazero.CompiledModule")
	}
	if name == "" {
		name = fmt.Sprintf("instance-%d", e.seq.Inc())
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.New(errors.PhaseEngine, errors.KindInstantiation).
			Scope(e.instances.Name()).
			Detail("instantiate %q", name).
			Cause(err).
			Build()
	}
	e.instances.Add(resource.CloserContext(context.WithoutCancel(ctx), mod))
	e.logger.Debug("module instantiated", zap.String("module", name))
	return mod, nil
}

// Live returns the number of instances awaiting the next Recycle.
func (e *Engine) Live() int {
	return e.instances.Len()
}

// Recycle closes every instance created so far. The engine stays usable.
func (e *Engine) Recycle(ctx context.Context) error {
	n := e.instances.Len()
	err := e.instances.Drain()
	e.logger.Debug("instances recycled", zap.Int("instances", n), zap.Error(err))
	return err
}

// Close releases all instances, then all compiled modules, then the runtime.
// Closing an already closed engine is a no-op.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	return multierr.Combine(
		e.instances.Drain(),
		e.modules.Drain(),
		e.runtime.Close(ctx),
	)
}
