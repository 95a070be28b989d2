package post

import (
	"errors"
	"fmt"
)

type Kind string

const (
	MissingParameter    Kind = "missing_parameter"
	UpstreamUnavailable Kind = "upstream_unavailable"
	ParseFailure        Kind = "parse_failure"
	NotFound            Kind = "not_found"
)

// Error is the only failure shape that leaves the adapter.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details is the human-readable text exposed to callers.
func (e *Error) Details() string {
	if e.Err != nil && e.Detail == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

// KindOf extracts the error kind, if err carries one.
func KindOf(err error) (Kind, bool) {
	var postErr *Error
	if errors.As(err, &postErr) {
		return postErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
