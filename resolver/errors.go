package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Class partitions resolver failures by how they were produced. The class
// decides whether the next tier is consulted and what the caller may infer
// about the primary endpoint's opinion of the request.
type Class string

const (
	// ClassTimeout: the primary call did not settle within the deadline.
	ClassTimeout Class = "timeout"
	// ClassTransport: the primary call failed before producing a status.
	ClassTransport Class = "transport"
	// ClassRemoteRejected: the primary endpoint answered with a non-2xx status.
	ClassRemoteRejected Class = "remote_rejected"
	// ClassTranslation: the backing-store translator could not satisfy the descriptor.
	ClassTranslation Class = "translation"
	// ClassNotFound: all consulted tiers agree the resource does not exist.
	ClassNotFound Class = "not_found"
)

// Error is a classified resolver failure. Status and Payload are only set
// for remote rejections, carrying what the endpoint actually answered.
type Error struct {
	Class   Class
	Status  int
	Payload json.RawMessage
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Class == ClassRemoteRejected:
		return fmt.Sprintf("resolver: remote rejected with status %d", e.Status)
	case e.cause != nil:
		return fmt.Sprintf("resolver: %s: %s", e.Class, e.cause.Error())
	default:
		return fmt.Sprintf("resolver: %s", e.Class)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewTimeout classifies a deadline failure of the primary call.
func NewTimeout(cause error) *Error {
	return &Error{Class: ClassTimeout, cause: cause}
}

// NewTransport classifies a network-level failure of the primary call.
func NewTransport(cause error) *Error {
	return &Error{Class: ClassTransport, cause: cause}
}

// NewRemoteRejected classifies a non-2xx answer. A 404 becomes ClassNotFound
// so lower tiers can confirm or override it.
func NewRemoteRejected(status int, payload json.RawMessage) *Error {
	class := ClassRemoteRejected
	if status == 404 {
		class = ClassNotFound
	}
	return &Error{Class: class, Status: status, Payload: payload}
}

// NewTranslation classifies a backing-store translation failure.
func NewTranslation(cause error) *Error {
	return &Error{Class: ClassTranslation, cause: cause}
}

// NewNotFound reports that a lower tier positively determined the resource
// is absent. Status stays zero: only a remote 404 carries one.
func NewNotFound(cause error) *Error {
	return &Error{Class: ClassNotFound, cause: cause}
}

// AsError extracts a classified resolver error from an error chain.
func AsError(err error) (*Error, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

// IsRejection reports whether the primary endpoint was reached and explicitly
// refused the request: a 4xx answer, including a remote 404. A 5xx is a
// server fault, not a verdict on the request, so availability fallbacks may
// still fire for it.
func IsRejection(err error) bool {
	rerr, ok := AsError(err)
	if !ok {
		return false
	}
	switch rerr.Class {
	case ClassRemoteRejected:
		return rerr.Status >= 400 && rerr.Status < 500
	case ClassNotFound:
		return rerr.Status != 0
	default:
		return false
	}
}
