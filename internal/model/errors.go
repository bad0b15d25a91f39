package model

import "errors"

// Common errors used across the application
var (
	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidScore    = errors.New("score must be positive")

	// Store errors
	ErrStoreUnavailable = errors.New("profile store unavailable")

	// Access errors
	ErrNotReady = errors.New("game is not ready to start")
)
