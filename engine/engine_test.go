package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/dispose/errors"
	"github.com/wippyai/dispose/scope"
)

// emptyModule is the smallest valid core module: magic and version only.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func TestEngine_InstantiateAndRecycle(t *testing.T) {
	ctx := context.Background()
	eng := New(ctx, nil)
	defer eng.Close(ctx)

	compiled, err := eng.Compile(ctx, emptyModule)
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Modules().Len())

	mod, err := eng.Instantiate(ctx, compiled, "worker")
	require.NoError(t, err)
	assert.Equal(t, "worker", mod.Name())
	assert.Equal(t, 1, eng.Live())
	assert.NotNil(t, eng.Runtime().Module("worker"))

	// the name is taken until the instance is released
	_, err = eng.Instantiate(ctx, compiled, "worker")
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindInstantiation})

	require.NoError(t, eng.Recycle(ctx))
	assert.Equal(t, 0, eng.Live())
	assert.Nil(t, eng.Runtime().Module("worker"))

	_, err = eng.Instantiate(ctx, compiled, "worker")
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Modules().Len())
}

func TestEngine_GeneratedNames(t *testing.T) {
	ctx := context.Background()
	eng := New(ctx, &Config{Name: "pool", MemoryLimitPages: 16})
	defer eng.Close(ctx)

	compiled, err := eng.Compile(ctx, emptyModule)
	require.NoError(t, err)

	a, err := eng.Instantiate(ctx, compiled, "")
	require.NoError(t, err)
	b, err := eng.Instantiate(ctx, compiled, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.Name(), b.Name())
	assert.Equal(t, 2, eng.Live())
	assert.Equal(t, "pool/instances", eng.Instances().Name())
}

func TestEngine_CompileInvalid(t *testing.T) {
	ctx := context.Background()
	eng := New(ctx, nil)
	defer eng.Close(ctx)

	_, err := eng.Compile(ctx, []byte("not wasm"))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindCompile})
	assert.Equal(t, 0, eng.Modules().Len())

	_, err = eng.Instantiate(ctx, nil, "x")
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNilPointer})
}

func TestEngine_Close(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	eng := New(ctx, &Config{Logger: zap.New(core)})

	compiled, err := eng.Compile(ctx, emptyModule)
	require.NoError(t, err)
	_, err = eng.Instantiate(ctx, compiled, "a")
	require.NoError(t, err)

	require.NoError(t, eng.Close(ctx))
	assert.Equal(t, 0, eng.Live())
	assert.Equal(t, 0, eng.Modules().Len())
	assert.NoError(t, eng.Close(ctx))

	_, err = eng.Compile(ctx, emptyModule)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = eng.Instantiate(ctx, compiled, "b")
	assert.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, 1, logs.FilterMessage("module instantiated").Len())
}

func TestEngine_InstancesComposeIntoParentScope(t *testing.T) {
	ctx := context.Background()
	eng := New(ctx, nil)
	defer eng.Close(ctx)

	compiled, err := eng.Compile(ctx, emptyModule)
	require.NoError(t, err)
	_, err = eng.Instantiate(ctx, compiled, "req")
	require.NoError(t, err)

	request := scope.NewWithDefaults()
	request.Add(eng.Instances().AsResource())
	require.NoError(t, request.Drain())
	assert.Equal(t, 0, eng.Live())
	assert.Nil(t, eng.Runtime().Module("req"))
}

func TestEngine_CloseDuringCompile(t *testing.T) {
	ctx := context.Background()
	eng := New(ctx, nil)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 20; j++ {
				compiled, err := eng.Compile(ctx, emptyModule)
				if err != nil {
					if !errors.Is(err, ErrClosed) {
						return err
					}
					return nil
				}
				if _, err := eng.Instantiate(ctx, compiled, ""); err != nil && !errors.Is(err, ErrClosed) {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		return eng.Close(ctx)
	})
	require.NoError(t, g.Wait())

	// nothing registered after Close drained the scopes
	assert.Equal(t, 0, eng.Modules().Len())
	assert.Equal(t, 0, eng.Live())
}
