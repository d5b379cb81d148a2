package service

import (
	"errors"
	"fmt"
)

// Service errors. Callers check them with errors.Is; the API layer maps each
// one to a status code in a single place.
var (
	// ErrEmailInUse is returned when registering or changing to an email
	// that another account already has.
	ErrEmailInUse = errors.New("email already in use")

	// ErrInvalidCredentials covers both an unknown email and a wrong password
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated means a token is missing, malformed, badly signed,
	// expired, or names a user that no longer exists.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden means the caller is authenticated but not allowed.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNotFound is returned for unknown tasks and projects, and for
	// projects without any tasks.
	ErrNotFound = errors.New("not found")
)

// Team membership drives edit rights, so only admins may change it through
// the profile.
var errTeamChangeForbidden = fmt.Errorf("%w: only admins can change team membership", ErrForbidden)
