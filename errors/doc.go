// Package errors provides structured error types for the dispose module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the scope name, the Go type of the offending resource,
// the entry index and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRelease, errors.KindReleaseFailed).
//		Scope("session").
//		Type("*os.File").
//		Value(3).
//		Cause(closeErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ReleaseFailed(3, file, closeErr)
//	err := errors.OutOfBounds(errors.PhaseInspect, 10, 5)
//
// A drain that hits several failures returns them combined with
// go.uber.org/multierr; split them with multierr.Errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
