package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Forum error kinds. All of them are recoverable and meant to be shown to the user.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username taken")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrTopicNotFound      = errors.New("topic not found")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("Validation error: %s", e.Message)
	}
	return fmt.Sprintf("Validation error: %s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	return Is[*ValidationError](err)
}

// StatusCode maps an error to the HTTP status the presentation layer should answer with.
func StatusCode(err error) int {
	var withStatus *ErrorWithStatusCode
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &withStatus):
		return withStatus.StatusCode
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTopicNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var validation *ValidationError
	var withStatus *ErrorWithStatusCode
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserNotFound):
		return "User not found. Please register."
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect password. Please try again."
	case errors.Is(err, ErrUsernameTaken):
		return "Username already exists. Please try to log in or choose a different username."
	case errors.Is(err, ErrNotAuthenticated):
		return "You need to log in first."
	case errors.Is(err, ErrTopicNotFound):
		return "Topic not found."
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &withStatus):
		return withStatus.Message
	default:
		return "Internal error"
	}
}
