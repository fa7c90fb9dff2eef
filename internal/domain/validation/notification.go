// Package validation accumulates domain violations so that a write operation
// can report every problem it found in a single response.
package validation

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every *Failure via errors.Is.
var ErrValidation = errors.New("validation failed")

// Error is a single violation.
type Error struct {
	Message string `json:"message"`
}

// NewError creates an Error with the given message.
func NewError(message string) Error {
	return Error{Message: message}
}

// Failure is returned when one or more violations were found.
type Failure struct {
	Message string
	Errors  []Error
}

// NewFailure creates a Failure carrying a copy of errs.
func NewFailure(message string, errs []Error) *Failure {
	return &Failure{Message: message, Errors: append([]Error(nil), errs...)}
}

func (f *Failure) Error() string {
	if len(f.Errors) == 0 {
		return f.Message
	}
	msgs := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		msgs = append(msgs, e.Message)
	}
	if f.Message == "" {
		return strings.Join(msgs, "; ")
	}
	return f.Message + ": " + strings.Join(msgs, "; ")
}

func (f *Failure) Is(target error) bool {
	return target == ErrValidation
}

// Notification collects violations in the order they were appended.
//
// A collect-all notification keeps going after a violation; a fail-fast one
// returns a *Failure from Append as soon as the first violation arrives.
// Callers pick the policy, the type is the same.
type Notification struct {
	errors   []Error
	failFast bool
}

// NewNotification returns a collect-all Notification.
func NewNotification() *Notification {
	return &Notification{}
}

// NewFailFast returns a Notification that stops at the first violation.
func NewFailFast() *Notification {
	return &Notification{failFast: true}
}

// Append records err. It returns a non-nil *Failure only in fail-fast mode.
func (n *Notification) Append(err Error) error {
	n.errors = append(n.errors, err)
	if n.failFast {
		return NewFailure(err.Message, n.errors)
	}
	return nil
}

// Merge appends every error of other.
func (n *Notification) Merge(other *Notification) error {
	if other == nil {
		return nil
	}
	for _, e := range other.errors {
		if err := n.Append(e); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs fn. A *Failure returned by fn is folded into n and nil is
// returned; any other error propagates unchanged.
func (n *Notification) Validate(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		return err
	}
	for _, e := range failure.Errors {
		if appendErr := n.Append(e); appendErr != nil {
			return appendErr
		}
	}
	if len(failure.Errors) == 0 {
		return n.Append(NewError(failure.Message))
	}
	return nil
}

// ValidateValue is Validate for functions that produce a value.
// On a folded failure the zero value of T is returned with a nil error.
func ValidateValue[T any](n *Notification, fn func() (T, error)) (T, error) {
	var value T
	err := n.Validate(func() error {
		v, err := fn()
		if err == nil {
			value = v
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// HasError reports whether any violation was recorded.
func (n *Notification) HasError() bool {
	return len(n.errors) > 0
}

// FirstError returns the first recorded violation.
func (n *Notification) FirstError() (Error, bool) {
	if len(n.errors) == 0 {
		return Error{}, false
	}
	return n.errors[0], true
}

// Errors returns a copy of the recorded violations.
func (n *Notification) Errors() []Error {
	return append([]Error(nil), n.errors...)
}

// Failure wraps the recorded violations, or returns nil when there are none.
func (n *Notification) Failure(message string) error {
	if !n.HasError() {
		return nil
	}
	return NewFailure(message, n.errors)
}
