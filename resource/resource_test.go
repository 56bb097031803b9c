package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	closed int
	err    error
}

func (c *fakeCloser) Close() error {
	c.closed++
	return c.err
}

type fakeContextCloser struct {
	ctx    context.Context
	closed int
}

func (c *fakeContextCloser) Close(ctx context.Context) error {
	c.ctx = ctx
	c.closed++
	return nil
}

type fakeDropper struct {
	dropped int
}

func (d *fakeDropper) Drop() {
	d.dropped++
}

type sliceResource []int

func (sliceResource) Release() error { return nil }

func TestFunc(t *testing.T) {
	calls := 0
	r := Func(func() { calls++ })

	require.NoError(t, r.Release())
	assert.Equal(t, 1, calls)

	assert.NoError(t, Func(nil).Release())
}

func TestFuncErr(t *testing.T) {
	want := errors.New("release failed")
	r := FuncErr(func() error { return want })
	assert.ErrorIs(t, r.Release(), want)

	assert.NoError(t, FuncErr(nil).Release())
}

func TestFunc_DistinctIdentity(t *testing.T) {
	fn := func() {}
	a := Func(fn)
	b := Func(fn)

	assert.True(t, Same(a, a))
	assert.False(t, Same(a, b))
}

func TestCloser(t *testing.T) {
	c := &fakeCloser{err: errors.New("close")}
	r := Closer(c)

	assert.EqualError(t, r.Release(), "close")
	assert.Equal(t, 1, c.closed)

	assert.True(t, Same(Closer(c), Closer(c)))
	assert.False(t, Same(Closer(c), Closer(&fakeCloser{})))
	assert.NoError(t, Closer(nil).Release())
}

func TestCloserContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	c := &fakeContextCloser{}

	require.NoError(t, CloserContext(ctx, c).Release())
	assert.Equal(t, 1, c.closed)
	assert.Equal(t, "v", c.ctx.Value(key{}))

	//nolint:staticcheck // nil context is replaced
	require.NoError(t, CloserContext(nil, c).Release())
	assert.NotNil(t, c.ctx)
	assert.True(t, Same(CloserContext(ctx, c), CloserContext(ctx, c)))
}

func TestDrop(t *testing.T) {
	d := &fakeDropper{}
	require.NoError(t, Drop(d).Release())
	assert.Equal(t, 1, d.dropped)
	assert.True(t, Same(Drop(d), Drop(d)))
	assert.NoError(t, Drop(nil).Release())
}

func TestSame_NotComparable(t *testing.T) {
	a := sliceResource{1}
	b := sliceResource{1}

	assert.NotPanics(t, func() {
		assert.False(t, Same(a, b))
	})
	assert.True(t, Same(nil, nil))
	assert.False(t, Same(nil, Func(nil)))
}
