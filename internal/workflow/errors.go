package workflow

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel causes carried by PreconditionError.
var (
	ErrPublishInFlight  = errors.New("a publish cycle is already in flight")
	ErrVideoInFlight    = errors.New("a video generation is already in flight")
	ErrNothingPublished = errors.New("no published lesson in the current cycle")
)

// ValidationError rejects bad or missing input before any external call.
type ValidationError struct {
	Op      string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// ServiceError reports a failed call to an external collaborator.
// Timeouts are ServiceErrors whose cause is a *TimeoutError.
type ServiceError struct {
	Service string
	// Reason is a short classification label (invalid_key, quota, network,
	// timeout, canceled, unknown).
	Reason string
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service failed: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// TimeoutError is the cause of a ServiceError when a call exceeded its budget.
type TimeoutError struct {
	Service string
	After   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s call timed out after %s", e.Service, e.After)
}

// Timeout satisfies the net.Error-style timeout check.
func (e *TimeoutError) Timeout() bool { return true }

// PreconditionError rejects an operation invoked out of sequence.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// ExportError reports a local rendering or I/O failure during export.
type ExportError struct {
	Title string
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %q: %v", e.Title, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err was caused by an external call timing out.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
