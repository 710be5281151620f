// Package apperr carries the business error kinds shared by all services.
// Controllers switch on Kind to pick an HTTP status; services attach the
// human-readable reason.
package apperr

import "errors"

type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindValidation       Kind = "VALIDATION_FAILED"
	KindInfra            Kind = "INFRASTRUCTURE"
)

type Error struct {
	K   Kind
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.K)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) error         { return &Error{K: KindNotFound, Msg: msg} }
func PermissionDenied(msg string) error { return &Error{K: KindPermissionDenied, Msg: msg} }
func Validation(msg string) error       { return &Error{K: KindValidation, Msg: msg} }

// Infra wraps a storage or scheduler failure so callers can treat it as
// retryable without losing the cause.
func Infra(err error) error {
	if err == nil {
		return nil
	}
	return &Error{K: KindInfra, Err: err}
}

// KindOf extracts the kind, walking wrapped errors. Unclassified errors
// report as infrastructure failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.K
	}
	return KindInfra
}
