package subsonic

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrConnection is returned by Connect when the server cannot be reached or
// rejects the credentials.
var ErrConnection = errors.New("could not connect to the server")

// Protocol error codes that rocksonic reacts to.
const (
	CodeGeneric       = 0
	CodeWrongAuth     = 40
	CodeNotAuthorized = 50
	CodeNotFound      = 70
)

// Error is a non-"ok" response of the server.
type Error struct {
	// Code is the protocol error code, 0 when the body carried none.
	Code int

	// Message is the server message, possibly empty.
	Message string

	// HTTPStatus is the status code of the HTTP response.
	HTTPStatus int
}

// Error returns the server message, or the HTTP status when there is none.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.HTTPStatus, http.StatusText(e.HTTPStatus))
}

// IsNotFound reports whether err is a "data not found" answer, either as
// protocol code 70 or as HTTP 404.
func IsNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == CodeNotFound || e.HTTPStatus == http.StatusNotFound
}
