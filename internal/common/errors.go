package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Item errors
	ErrItemNotFound = errors.New("item not found")
	ErrAlreadySold  = errors.New("item already sold")
	ErrOwnItem      = errors.New("cannot purchase own item")

	// Review errors
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewNotAllowed = errors.New("only the buyer can review this item")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
