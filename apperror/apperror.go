package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	Gateway
	State
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Gateway:
		return "gateway"
	case State:
		return "state"
	default:
		return "internal"
	}
}

// Error is the error every layer returns to the HTTP boundary.
// Message is safe to show to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperror.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrValidation = &Error{Kind: Validation}
	ErrNotFound   = &Error{Kind: NotFound}
	ErrConflict   = &Error{Kind: Conflict}
	ErrGateway    = &Error{Kind: Gateway}
	ErrState      = &Error{Kind: State}
)

func NewValidation(message string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// FieldError is a validation error about a single input field.
func FieldError(field, message string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: map[string]string{field: message}}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

func NewConflict(message string, err error) *Error {
	return &Error{Kind: Conflict, Message: message, Err: err}
}

func NewGateway(message string, err error) *Error {
	return &Error{Kind: Gateway, Message: message, Err: err}
}

func NewState(message string) *Error {
	return &Error{Kind: State, Message: message}
}

func Wrap(err error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusUnprocessableEntity
	case NotFound:
		return http.StatusNotFound
	case Conflict, State:
		return http.StatusConflict
	case Gateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
