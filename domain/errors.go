package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialParse        = errors.New("service account parse error")
	ErrMissingCredentialField = errors.New("missing service account field")
	ErrSigning                = errors.New("jwt signing error")
	ErrTokenExchange          = errors.New("token exchange error")
	ErrDispatch               = errors.New("dispatch error")
	ErrInvalidResponse        = errors.New("invalid response from fcm")
	ErrApplicationDispatch    = errors.New("fcm rejected the message")
	ErrInvalidNotification    = errors.New("invalid notification")
)

// DispatchError describes a failed messages:send call. Kind is one of
// ErrDispatch, ErrInvalidResponse or ErrApplicationDispatch.
type DispatchError struct {
	Kind       error
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *DispatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
