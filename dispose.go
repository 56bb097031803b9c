package dispose

import (
	"github.com/wippyai/dispose/resource"
	"github.com/wippyai/dispose/scope"
)

// Resource is anything a scope can release.
type Resource = resource.Resource

// Scope is a reusable disposal scope.
type Scope = scope.Scope

// NewScope creates a scope with default options.
func NewScope() *Scope {
	return scope.NewWithDefaults()
}
