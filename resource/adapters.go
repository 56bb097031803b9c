package resource

import (
	"context"
	"io"
)

type funcResource struct {
	fn func() error
}

func (f *funcResource) Release() error {
	if f.fn == nil {
		return nil
	}
	return f.fn()
}

// Func wraps a callback as a Resource.
// Every call returns a distinct identity, so the returned value must be kept
// to Remove it later. A nil fn releases as a no-op.
func Func(fn func()) Resource {
	if fn == nil {
		return &funcResource{}
	}
	return &funcResource{fn: func() error {
		fn()
		return nil
	}}
}

// FuncErr wraps a fallible callback as a Resource.
func FuncErr(fn func() error) Resource {
	return &funcResource{fn: fn}
}

type closerResource struct {
	c io.Closer
}

func (r closerResource) Release() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Closer adapts an io.Closer.
// Wrapping the same closer twice yields equal resources.
func Closer(c io.Closer) Resource {
	return closerResource{c: c}
}

type contextCloserResource struct {
	ctx context.Context
	c   ContextCloser
}

func (r contextCloserResource) Release() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close(r.ctx)
}

// CloserContext adapts a ContextCloser; ctx is passed to Close at release time.
// A nil ctx is replaced with context.Background.
func CloserContext(ctx context.Context, c ContextCloser) Resource {
	if ctx == nil {
		ctx = context.Background()
	}
	return contextCloserResource{ctx: ctx, c: c}
}

type dropResource struct {
	d Dropper
}

func (r dropResource) Release() error {
	if r.d != nil {
		r.d.Drop()
	}
	return nil
}

// Drop adapts a Dropper. Wrapping the same value twice yields equal resources.
func Drop(d Dropper) Resource {
	return dropResource{d: d}
}
