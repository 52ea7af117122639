package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by SessionService. Anything else a session
// operation returns is a *ServiceError wrapping the cause.
var (
	// ErrSessionNotFound is returned for unknown game ids, including games
	// that were ended or swept as idle.
	ErrSessionNotFound = errors.New("game session not found")

	// ErrTooManySessions means the configured session limit is reached.
	ErrTooManySessions = errors.New("too many active game sessions")
)

// ServiceError wraps an unexpected failure with the service and operation it
// happened in, while keeping the cause reachable through errors.Is/errors.As.
type ServiceError struct {
	Service string // e.g. "session"
	Op      string // e.g. "select_card"
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for the given service and operation.
func NewServiceError(service, op string, err error) error {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}
