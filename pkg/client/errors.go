package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStale is returned by Controller.Submit when a newer submission
// superseded this one before its response arrived.
var ErrStale = errors.New("comparison superseded by a newer request")

// ValidationError reports a missing version selection. No request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// TransportError wraps a failure to reach the server or read its reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError is a non-2xx reply. ServerMessage holds the server's
// "error" field when the body carried one.
type ApplicationError struct {
	StatusCode    int
	ServerMessage string
}

func (e *ApplicationError) Error() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
