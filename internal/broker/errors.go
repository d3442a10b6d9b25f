package broker

import (
	"errors"
)

var (
	// ErrNotReady means an operation was invoked before the engine reached
	// Ready. No command is sent to the host.
	ErrNotReady = errors.New("engine is not ready")

	// ErrInvalidInput means a precondition on the operation's inputs failed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateRequest means a request with the same correlation key is
	// already in flight. The earlier request keeps its slot.
	ErrDuplicateRequest = errors.New("an identical request is already in flight")

	// ErrTimedOut means the broker gave up on a pending request locally,
	// without host cooperation.
	ErrTimedOut = errors.New("request timed out")
)

// EngineError wraps a fault reported by the execution host.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return "engine fault: " + e.Message
}
