package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Passwords arrive already hashed; the store never sees plaintext.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if no user has the (normalized) email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update overwrites email, profile fields and password hash.
	// Returns ErrUserNotFound or ErrEmailExists.
	Update(ctx context.Context, user *domain.User) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx DBTX) UserStore
}
