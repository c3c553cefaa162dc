package apperrors

import (
	"errors"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthenticated
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInvalidState
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func InvalidState(msg string) error {
	return &Error{Kind: KindInvalidState, Msg: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code the API surfaces it with.
// InvalidState shares 409 with Conflict: both mean the request was valid
// but the current state of the entity forbids it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return 400
	case KindUnauthenticated:
		return 401
	case KindUnauthorized:
		return 403
	case KindNotFound:
		return 404
	case KindConflict, KindInvalidState:
		return 409
	default:
		return 500
	}
}
