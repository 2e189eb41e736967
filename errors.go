package ecscore

import "github.com/pkg/errors"

// DebugChecks gates precondition validation across every table and the
// sparse index. It is on by default: add/remove/get calls that violate a
// stated precondition panic with a *PreconditionError identifying the
// operation and entity, with a stack trace attached by pkg/errors.
//
// Disabling it (for a release build already validated under checked mode)
// skips those checks on every hot path; violating a precondition then is
// undefined behavior.
var DebugChecks = true

// PreconditionError reports a violated precondition: an operation called on
// an entity in a state the operation does not support (e.g. Add on an entity
// already present).
type PreconditionError struct {
	Op     string
	Entity Entity
	err    error
}

func (e *PreconditionError) Error() string {
	return e.err.Error()
}

func (e *PreconditionError) Unwrap() error { return e.err }

func newPreconditionError(op string, e Entity, msg string) *PreconditionError {
	return &PreconditionError{
		Op:     op,
		Entity: e,
		err:    errors.Errorf("ecscore: %s: entity %d: %s", op, e, msg),
	}
}

// failPrecondition panics with a *PreconditionError. Call sites are gated on
// DebugChecks so the check itself is skipped when DebugChecks is off.
func failPrecondition(op string, e Entity, msg string) {
	panic(newPreconditionError(op, e, msg))
}

// AllocatorError reports a fatal entity allocator condition: id space
// exhaustion. There is no recoverable channel for this condition; it always
// panics.
type AllocatorError struct {
	err error
}

func (e *AllocatorError) Error() string { return e.err.Error() }

func (e *AllocatorError) Unwrap() error { return e.err }

func failAllocator(msg string) {
	panic(&AllocatorError{err: errors.WithStack(errors.New("ecscore: allocator: " + msg))})
}
