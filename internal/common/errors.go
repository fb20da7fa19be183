package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrForbidden = errors.New("forbidden")

	// Event errors
	ErrEventNotFound   = errors.New("event not found or not active")
	ErrEventPrivate    = errors.New("event is private")
	ErrInvalidCode     = errors.New("invalid contributor code")
	ErrPackageNotFound = errors.New("package not found")

	// Contribution errors
	ErrPostNotFound  = errors.New("post not found")
	ErrMediaNotFound = errors.New("media file not found")
	ErrGuestNotFound = errors.New("guest not found")

	// Moderation errors
	ErrPackageLimitReached = errors.New("package media limit reached")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
