package mcp

import (
	"errors"
	"fmt"
)

// UnreachableError is returned when the publishing service cannot be
// reached at all.
type UnreachableError struct {
	URL string
	Err error
}

func (e UnreachableError) Error() string {
	return fmt.Sprintf("publishing service unreachable at %s: %v", e.URL, e.Err)
}

func (e UnreachableError) Unwrap() error { return e.Err }

// RejectedError is returned when the service answered with an explicit
// error or a result that marks the publish as failed.
type RejectedError struct {
	Code    int
	Message string
	Detail  string
}

func (e RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "publish rejected"
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

// ErrAmbiguousResponse is reported when a response carries neither a
// result nor an error; the publish outcome is unknown and the run fails.
var ErrAmbiguousResponse = errors.New("publish response carried neither result nor error")
