package errors

import "net/http"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func New(statusCode int, message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials")
	ErrMissingInput       = New(http.StatusBadRequest, "Missing input")
	ErrUnauthorized       = New(http.StatusUnauthorized, "Please sign-in")
)
