package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminRequired      = errors.New("admin account required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrAlreadyVoted       = errors.New("already voted for this complaint")
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrRecordNotFound     = errors.New("record not found")
	ErrUpvoteIncomplete   = errors.New("vote recorded but upvote count not updated")
	ErrInFlight           = errors.New("operation already in progress")
	ErrRefreshFailed      = errors.New("saved, but records could not be refreshed")
	ErrUnknownSheet       = errors.New("unknown sheet type")
)

// GatewayError is a transport or protocol failure talking to the remote
// record gateway. The operation was abandoned; nothing local changed.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}

func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

// ValidationError reports a missing or malformed field. It is raised before
// any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func required(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}
