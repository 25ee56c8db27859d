package services

import "errors"

// ErrorKind is the public error vocabulary. Handlers map kinds to HTTP
// statuses; internal failure detail is logged server-side and never echoed
// to the caller.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, for logging only
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func Validation(message string) error {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) error {
	return &ServiceError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) error {
	return &ServiceError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) error {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) error {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func Internal(message string, err error) error {
	return &ServiceError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from any error; unrecognized errors are internal.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
