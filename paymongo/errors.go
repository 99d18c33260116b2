package paymongo

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // network failure, timeout, 5xx
	KindAuth      ErrorKind = "auth"      // rejected credentials
	KindBusiness  ErrorKind = "business"  // provider refused the request
	KindDecode    ErrorKind = "decode"    // response did not match the expected schema
)

// Error is the tagged failure returned by every Client call.
type Error struct {
	Kind      ErrorKind
	Status    int
	Code      string
	Reason    string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("paymongo %s error", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Reason: "request failed", Retryable: true, Err: err}
}

func decodeError(reason string, err error) *Error {
	return &Error{Kind: KindDecode, Reason: reason, Err: err}
}

// statusError classifies a non-2xx response using the provider's error body.
func statusError(status int, body []byte) *Error {
	code, detail := parseErrorBody(body)
	e := &Error{Status: status, Code: code, Reason: detail}
	switch {
	case status == 401 || status == 403:
		e.Kind = KindAuth
	case status == 429 || status >= 500:
		e.Kind = KindTransport
		e.Retryable = true
	default:
		e.Kind = KindBusiness
	}
	if e.Reason == "" {
		e.Reason = fmt.Sprintf("unexpected status %d", status)
	}
	return e
}
