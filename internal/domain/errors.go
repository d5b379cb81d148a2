package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-specific errors below wrap it so callers can match either.
	ErrValidation = errors.New("validation failed")

	ErrInvalidEmail     = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyEmail       = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d characters long", ErrValidation, MaxPasswordLength)
	ErrEmptyPassword    = fmt.Errorf("%w: password cannot be empty", ErrValidation)

	// ErrInvalidStatus is returned for a status outside the Status enumeration.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)

	// ErrInvalidPercent is returned for a completion percentage outside 0..100.
	ErrInvalidPercent = fmt.Errorf("%w: complete percent must be between 0 and 100", ErrValidation)

	ErrEmptyName = fmt.Errorf("%w: name cannot be empty", ErrValidation)
)
