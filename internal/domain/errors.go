package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to its caller unwraps to one of
// these, or is an unexpected infrastructure failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Value object errors. They carry no kind; services wrap them with AsValidation.
var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidState   = errors.New("invalid US state code")
	ErrNegativeMoney  = errors.New("money amount cannot be negative")
	ErrDateOutOfRange = errors.New("date year is outside the allowed window")
	ErrDateOrder      = errors.New("available_to must be on or after available_from")
	ErrInvalidTarget  = errors.New("swipe target must be a listing or a seeker")
)

var (
	ErrUserNotFound        = newKindError(ErrNotFound, "user not found")
	ErrSeekerNotFound      = newKindError(ErrNotFound, "seeker profile not found")
	ErrListingNotFound     = newKindError(ErrNotFound, "listing not found")
	ErrHostListingNotFound = newKindError(ErrNotFound, "host has no listing")
	ErrMatchNotFound       = newKindError(ErrNotFound, "match not found")
	ErrSwipeNotFound       = newKindError(ErrNotFound, "swipe not found")

	ErrDuplicateSwipe  = newKindError(ErrValidation, "duplicate swipe")
	ErrCannotSwipeSelf = newKindError(ErrValidation, "cannot swipe on your own profile or listing")

	ErrForeignListing        = newKindError(ErrConflict, "listing belongs to another host")
	ErrHostAlreadyHasListing = newKindError(ErrConflict, "host already has a listing")
	ErrEmailTaken            = newKindError(ErrConflict, "email is already registered")
)

type kindError struct {
	kind error
	msg  string
	err  error
}

func newKindError(kind error, msg string) *kindError {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string {
	if e.err != nil && e.msg == "" {
		return e.err.Error()
	}
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

// NotFoundf returns a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return newKindError(ErrNotFound, fmt.Sprintf(format, args...))
}

// Validationf returns a Validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return newKindError(ErrValidation, fmt.Sprintf(format, args...))
}

// Conflictf returns a Conflict error with a formatted message.
func Conflictf(format string, args ...any) error {
	return newKindError(ErrConflict, fmt.Sprintf(format, args...))
}

// AsValidation re-wraps err as a Validation error unless it already has a kind.
func AsValidation(err error) error {
	if err == nil || HasKind(err) {
		return err
	}
	return &kindError{kind: ErrValidation, err: err}
}

// HasKind reports whether err unwraps to NotFound, Validation or Conflict.
func HasKind(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

var valueErrors = []error{
	ErrInvalidEmail, ErrInvalidState, ErrNegativeMoney, ErrDateOutOfRange, ErrDateOrder, ErrInvalidTarget,
}

// IsValueError reports whether err comes from a value object check.
func IsValueError(err error) bool {
	for _, v := range valueErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
