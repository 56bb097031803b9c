package scope

import (
	"io"

	"github.com/wippyai/dispose/resource"
)

// Attach registers r with s and returns r, for use in expressions:
//
//	sub := scope.Attach(s, bus.Subscribe(handler))
func Attach[T resource.Resource](s *Scope, r T) T {
	s.Add(r)
	return r
}

// AttachCloser registers c's Close with s and returns c.
//
//	f := scope.AttachCloser(s, must(os.Open(path)))
func AttachCloser[T io.Closer](s *Scope, c T) T {
	s.Add(resource.Closer(c))
	return c
}

// AttachFunc registers fn with s and returns the Resource wrapping it.
func AttachFunc(s *Scope, fn func()) resource.Resource {
	return s.AddFunc(fn)
}
