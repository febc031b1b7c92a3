package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every client-facing failure unwraps to exactly one of these;
// anything that doesn't is an internal error.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrUserNotFound     = &Error{kind: ErrNotFound, msg: "User not found."}
	ErrNGONotFound      = &Error{kind: ErrNotFound, msg: "NGO not found."}
	ErrDonationNotFound = &Error{kind: ErrNotFound, msg: "Donation not found."}

	ErrAlreadyDecided  = &Error{kind: ErrValidation, msg: "Only pending donations can be approved or rejected."}
	ErrNGOHasDonations = &Error{kind: ErrValidation, msg: "Cannot delete NGO with existing donations. Please transfer or remove donations first."}
)

// Error is a failure whose message is safe to show to the caller.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns the sentinel this error belongs to.
func (e *Error) Kind() error {
	return e.kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Unauthenticatedf(format string, args ...any) error {
	return newError(ErrUnauthenticated, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func Validationf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}
