package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal")
)

// MessageInternal is the only text a client sees for an unexpected failure.
const MessageInternal = "Server error. Please try again later."

// ServiceError wraps a sentinel error with a specific code and message for the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
	// Field names the input that caused a conflict, if any.
	Field string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

// Conflict reports a uniqueness violation on field.
func Conflict(field, code, message string) *ServiceError {
	e := NewError(ErrConflict, code, message)
	e.Field = field
	return e
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Internal() *ServiceError {
	return NewError(ErrInternal, "INTERNAL", MessageInternal)
}

var (
	errMissingFields      = BadRequest("MISSING_FIELDS", "All fields are required!")
	errEmailTaken         = Conflict("email", "EMAIL_TAKEN", "Email is already in use.")
	errUsernameTaken      = Conflict("username", "USERNAME_TAKEN", "Username is already taken.")
	errInvalidCredentials = Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	errUserNotFound       = NotFound("USER_NOT_FOUND", "User not found.")
	errSelfFollow         = BadRequest("SELF_FOLLOW", "You cannot follow yourself.")
	errFollowInProgress   = Conflict("", "FOLLOW_IN_PROGRESS", "A follow request for this user is already in progress.")
)
