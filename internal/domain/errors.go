package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// Kinds are matched with errors.Is; *Error carries the message shown to the
// client and an optional cause that is only ever logged.
// -----------------------------------------------------------------------------

// Error kinds
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrInternalError = errors.New("internal error")
)

// User errors
var (
	ErrUserNotFound       = NotFound("User not found")
	ErrUserAlreadyExists  = Conflict("Username or email already exists")
	ErrInvalidCredentials = Unauthenticated("Invalid credentials")
)

// Session errors
var (
	ErrSessionNotFound = Unauthenticated("Session not found")
	ErrSessionExpired  = Unauthenticated("Session expired")
)

// Resource errors
var (
	ErrCourseNotFound   = NotFound("Course not found")
	ErrCourseCodeExists = Conflict("Course code already exists")
	ErrAuthRequired     = Unauthenticated("Authentication required")
)

// Error is a classified failure with a client-safe message
type Error struct {
	kind    error
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Kind returns the sentinel kind of the error
func (e *Error) Kind() error {
	return e.kind
}

// Cause returns the wrapped cause, if any
func (e *Error) Cause() error {
	return e.cause
}

// WithCause returns a copy of e wrapping err
func (e *Error) WithCause(err error) *Error {
	return &Error{kind: e.kind, Message: e.Message, cause: err}
}

func newError(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

// Validation creates an ErrInvalidInput error
func Validation(message string) *Error {
	return newError(ErrInvalidInput, message)
}

// Conflict creates an ErrConflict error
func Conflict(message string) *Error {
	return newError(ErrConflict, message)
}

// Unauthenticated creates an ErrUnauthorized error
func Unauthenticated(message string) *Error {
	return newError(ErrUnauthorized, message)
}

// NotFound creates an ErrNotFound error
func NotFound(message string) *Error {
	return newError(ErrNotFound, message)
}

// Internal creates an ErrInternalError error with a generic message
func Internal(message string, cause error) *Error {
	return &Error{kind: ErrInternalError, Message: message, cause: cause}
}

// KindOf returns the kind of err, defaulting to ErrInternalError
func KindOf(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de.kind
	}
	for _, kind := range []error{ErrInvalidInput, ErrConflict, ErrUnauthorized, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternalError
}

// MessageOf returns the client-safe message of err, or fallback when err
// carries none or is internal
func MessageOf(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.kind != ErrInternalError && de.Message != "" {
		return de.Message
	}
	return fallback
}
