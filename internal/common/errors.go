package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCampusEmail = errors.New("email is not a campus address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")

	ErrGoogleSignInDisabled = errors.New("google sign-in is not configured")

	// Listing errors
	ErrListingNotFound  = errors.New("listing not found")
	ErrListingNotActive = errors.New("listing is not active")

	// Messaging errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("not a participant of this conversation")
	ErrSelfConversation     = errors.New("cannot start a conversation about your own listing")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrMessageTooLong       = errors.New("message text is too long")

	// Report errors
	ErrReportTarget     = errors.New("exactly one report target is required")
	ErrReportTargetSelf = errors.New("cannot report yourself")

	// Storage errors
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrUnsupportedFile    = errors.New("unsupported file type")
)

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrListingNotFound), errors.Is(err, ErrConversationNotFound):
		return 404
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrInvalidCampusEmail):
		return 403
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return 401
	case errors.Is(err, ErrUserAlreadyExists), errors.Is(err, ErrConflict),
		errors.Is(err, ErrListingNotActive):
		return 409
	case errors.Is(err, ErrFileTooLarge):
		return 413
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrGoogleSignInDisabled):
		return 503
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrSelfConversation), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrMessageTooLong), errors.Is(err, ErrReportTarget),
		errors.Is(err, ErrReportTargetSelf), errors.Is(err, ErrUnsupportedFile):
		return 400
	default:
		return 500
	}
}
