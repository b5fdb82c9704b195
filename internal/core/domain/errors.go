package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorises an Error. Each kind belongs to exactly one family.
type ErrorKind string

const (
	// auth
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindAuthUnavailable    ErrorKind = "auth_unavailable"

	// data
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindDataUnavailable  ErrorKind = "data_unavailable"

	// validation
	KindMissingField ErrorKind = "missing_field"
	KindInvalidRange ErrorKind = "invalid_range"
)

// ErrorFamily groups kinds the way callers handle them.
type ErrorFamily string

const (
	FamilyAuth       ErrorFamily = "auth"
	FamilyData       ErrorFamily = "data"
	FamilyValidation ErrorFamily = "validation"
)

func (k ErrorKind) Family() ErrorFamily {
	switch k {
	case KindInvalidCredentials, KindAuthUnavailable:
		return FamilyAuth
	case KindMissingField, KindInvalidRange:
		return FamilyValidation
	default:
		return FamilyData
	}
}

// Error is the single error type returned across the core. Field is only set
// for validation errors.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so that errors.Is(err, domain.ErrNotFound) works for any
// wrapped not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewValidationError reports a field that blocked submission.
func NewValidationError(kind ErrorKind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

var (
	ErrInvalidCredentials = NewError(KindInvalidCredentials, "invalid credentials", nil)
	ErrAuthUnavailable    = NewError(KindAuthUnavailable, "authentication unavailable", nil)

	ErrNotFound         = NewError(KindNotFound, "not found", nil)
	ErrPermissionDenied = NewError(KindPermissionDenied, "permission denied", nil)
	ErrDataUnavailable  = NewError(KindDataUnavailable, "data store unavailable", nil)

	ErrMissingField = NewError(KindMissingField, "missing field", nil)
	ErrInvalidRange = NewError(KindInvalidRange, "invalid range", nil)
)

// KindOf returns the kind of a domain error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsAuthError(err error) bool {
	return KindOf(err).Family() == FamilyAuth
}

func IsValidationError(err error) bool {
	return KindOf(err) != "" && KindOf(err).Family() == FamilyValidation
}

// IsUnavailable is true for both auth and data unavailability; these are the
// only errors worth retrying.
func IsUnavailable(err error) bool {
	k := KindOf(err)
	return k == KindDataUnavailable || k == KindAuthUnavailable
}
