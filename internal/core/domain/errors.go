package domain

import (
	"errors"
	"net/http"
)

// Kind classifies a delivery failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNoSuitableFormat
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNoSuitableFormat:
		return "no_suitable_format"
	case KindUpstreamFailure:
		return "upstream_failure"
	}
	return "unknown"
}

// HTTPStatus maps the kind to the status code the service answers with.
func (k Kind) HTTPStatus() int {
	if k == KindInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error carries a user facing message plus the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
