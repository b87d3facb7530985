package errors_utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindInvalidRequest ErrorKind = "INVALID_REQUEST"
	KindUnauthorized   ErrorKind = "UNAUTHORIZED"
	KindServer         ErrorKind = "SERVER_ERROR"
)

// AppError is a domain failure that maps onto a response status. Messages of
// everything but KindServer are safe to show to the caller.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error

	// counted by the invalid attempts guard even when Kind is not unauthorized
	InvalidAttempt bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func InvalidRequest(message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Server(message string, err error) *AppError {
	return &AppError{Kind: KindServer, Message: message, Err: err}
}

// InvalidAttempt is an invalid request that also counts against the caller,
// e.g. accepting an invite that was never sent.
func InvalidAttempt(message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message, InvalidAttempt: true}
}

// IsInvalidAttemptError reports whether err should count against the caller.
func IsInvalidAttemptError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}

	return appErr.Kind == KindUnauthorized || appErr.InvalidAttempt
}

// KindOf reports the kind of the first AppError in err's chain. Anything else
// is treated as a server error.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindServer
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
