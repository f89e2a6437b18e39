// Package apperror holds the classified failures the API reports to clients.
// Anything that is not an *Error is treated as unclassified by the translator.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidIdentifier  Kind = "invalid_identifier"
	KindEmailAlreadyExists Kind = "email_already_exists"
	KindUserNotFound       Kind = "user_not_found"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

// Is matches on Kind so that validation errors with different field lists compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrInvalidIdentifier  = &Error{Kind: KindInvalidIdentifier, Status: http.StatusBadRequest, Message: "invalid identifier"}
	ErrEmailAlreadyExists = &Error{Kind: KindEmailAlreadyExists, Status: http.StatusBadRequest, Message: "ERR_USER_EMAIL_EXISTS"}
	ErrUserNotFound       = &Error{Kind: KindUserNotFound, Status: http.StatusBadRequest, Message: "ERR_USER_NOT_FOUND"}
	ErrValidation         = &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: "invalid payload"}
)

// Validation wraps field errors into a client error.
func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: ErrValidation.Message, Fields: fields}
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
