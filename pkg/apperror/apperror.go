package apperror

import (
	"errors"
	"net/http"
)

// Kinds shared by every usecase. Specific errors wrap one of these so the
// delivery layer can map them to a status code without knowing the domain.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable entity")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalid       = errors.New("invalid input")
)

type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func NotFound(message string) *Error {
	return &Error{kind: ErrNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{kind: ErrConflict, Message: message}
}

func Unprocessable(message string) *Error {
	return &Error{kind: ErrUnprocessable, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{kind: ErrForbidden, Message: message}
}

func Invalid(message string) *Error {
	return &Error{kind: ErrInvalid, Message: message}
}

// StatusCode returns the HTTP status for err, or 500 when err carries no kind.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
