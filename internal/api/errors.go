package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the server rejected the session token. Callers
// treat it as a global sign-out signal, never as something to retry.
var ErrUnauthorized = errors.New("session expired or invalid")

// Error is a server-returned failure: the request completed and the server
// answered with a non-2xx status and (usually) a message body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error, status %d: %s", e.Status, e.Message)
}

// IsServerError reports whether err is a response the server actually
// produced, as opposed to a transport failure with no response at all.
func IsServerError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) || errors.Is(err, ErrUnauthorized)
}
