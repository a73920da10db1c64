// Package notify turns the outcome of a portal action into the short notice
// shown to the user.
package notify

import (
	"errors"
	"net/http"

	"barangay/pkg/types"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	OK      bool   `json:"ok"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(message string) Notice {
	return Notice{OK: true, Level: LevelSuccess, Message: message}
}

// FromError describes err. A nil err is a success with successMessage.
// A write that succeeded but could not be followed by a reload is still OK,
// reported as a warning.
func FromError(err error, successMessage string) Notice {
	if err == nil {
		return Success(successMessage)
	}

	if errors.Is(err, types.ErrRefreshFailed) {
		return Notice{OK: true, Level: LevelWarning, Message: successMessage + " (refresh failed, showing older data)"}
	}

	return Notice{OK: false, Level: LevelError, Message: Message(err)}
}

// Message is the user-facing text for err.
func Message(err error) string {
	var vErr *types.ValidationError

	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, types.ErrNotAuthenticated):
		return "Please login first"
	case errors.Is(err, types.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, types.ErrAdminRequired):
		return "Admin access required"
	case errors.Is(err, types.ErrDuplicateUsername):
		return "Username exists"
	case errors.Is(err, types.ErrAlreadyVoted):
		return "You already voted"
	case errors.Is(err, types.ErrComplaintNotFound):
		return "Complaint not found"
	case errors.Is(err, types.ErrRecordNotFound):
		return "Record not found"
	case errors.Is(err, types.ErrUpvoteIncomplete):
		return "Vote recorded but the count could not be updated"
	case errors.Is(err, types.ErrInFlight):
		return "Already in progress, please wait"
	case types.IsGatewayError(err):
		return "Error connecting to server"
	default:
		return "Something went wrong"
	}
}

// Status maps err to the HTTP status the portal answers with.
func Status(err error) int {
	switch {
	case err == nil, errors.Is(err, types.ErrRefreshFailed):
		return http.StatusOK
	case types.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrNotAuthenticated), errors.Is(err, types.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, types.ErrComplaintNotFound), errors.Is(err, types.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDuplicateUsername),
		errors.Is(err, types.ErrAlreadyVoted),
		errors.Is(err, types.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, types.ErrUpvoteIncomplete), types.IsGatewayError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
