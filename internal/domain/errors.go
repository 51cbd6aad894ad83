package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBooking marks creation-time validation failures.
	ErrInvalidBooking = errors.New("invalid booking")
	// ErrInvalidReview marks review validation failures.
	ErrInvalidReview = errors.New("invalid review")
)

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// InvalidBooking builds a creation validation error for field.
func InvalidBooking(field, msg string) error {
	return ValidationError{Field: field, Msg: msg, Err: ErrInvalidBooking}
}

// InvalidReview builds a review validation error for field.
func InvalidReview(field, msg string) error {
	return ValidationError{Field: field, Msg: msg, Err: ErrInvalidReview}
}

// TransitionError reports an action that is illegal in the booking's current state.
type TransitionError struct {
	From   Status
	Action string
}

func (e TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("invalid transition: booking is already %s, cannot %s it", e.From, e.Action)
	}
	return fmt.Sprintf("invalid transition: cannot %s a booking in status %s", e.Action, e.From)
}

type UnauthorizedError struct {
	ActorID string
	Msg     string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return "unauthorized: " + e.Msg
	}
	return "unauthorized"
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInvalidBooking(err error) bool {
	return errors.Is(err, ErrInvalidBooking)
}

func IsInvalidReview(err error) bool {
	return errors.Is(err, ErrInvalidReview)
}

func IsInvalidTransition(err error) bool {
	var target TransitionError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
