package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in a scope's lifecycle the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // add/remove/attach
	PhaseRelease  Phase = "release"  // releasing a single resource
	PhaseDrain    Phase = "drain"    // drain cycle bookkeeping
	PhaseInspect  Phase = "inspect"  // snapshots and copies
	PhaseEngine   Phase = "engine"   // wazero module lifetimes
)

// Kind categorizes the error
type Kind string

const (
	KindReleaseFailed Kind = "release_failed"
	KindPanic         Kind = "panic"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindInvalidInput  Kind = "invalid_input"
	KindNilPointer    Kind = "nil_pointer"
	KindInstantiation Kind = "instantiation"
	KindCompile       Kind = "compile"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Scope  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Scope != "" {
		b.WriteString(" in scope ")
		b.WriteString(e.Scope)
	}

	if e.Type != "" {
		b.WriteString(": ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Scope sets the name of the scope that produced the error
func (b *Builder) Scope(name string) *Builder {
	b.err.Scope = name
	return b
}

// Type sets the Go type name of the offending resource
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// ReleaseFailed creates an error for a resource whose release returned an error.
// Value holds the index of the entry within its batch.
func ReleaseFailed(index int, resource any, cause error) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindReleaseFailed,
		Type:   fmt.Sprintf("%T", resource),
		Detail: fmt.Sprintf("release entry %d", index),
		Value:  index,
		Cause:  cause,
	}
}

// Panicked creates an error for a resource whose release panicked.
// A recovered error value becomes the Cause.
func Panicked(index int, resource any, recovered any) *Error {
	e := &Error{
		Phase:  PhaseRelease,
		Kind:   KindPanic,
		Type:   fmt.Sprintf("%T", resource),
		Detail: fmt.Sprintf("release entry %d panicked: %v", index, recovered),
		Value:  index,
	}
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Type:   goType,
		Detail: "nil pointer",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
