package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

const userColumns = `id, email, hashed_password, full_name, position, team_id, created_at, updated_at`

// userRow is the database shape of a user.
type userRow struct {
	ID             uuid.UUID  `db:"id"`
	Email          string     `db:"email"`
	HashedPassword string     `db:"hashed_password"`
	FullName       string     `db:"full_name"`
	Position       string     `db:"position"`
	TeamID         *uuid.UUID `db:"team_id"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		FullName:       r.FullName,
		Position:       r.Position,
		TeamID:         r.TeamID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx store.DBTX) store.UserStore {
	return &PostgresUserStore{db: tx}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)

	if err := s.ensureEmailFree(ctx, user.Email, uuid.Nil); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.HashedPassword, user.FullName, user.Position,
		user.TeamID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return fmt.Errorf("failed to create user: %w", MapError(err))
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, s.db, &row,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, s.mapGetError(err)
	}
	return row.toDomain(), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, s.db, &row,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
	if err != nil {
		return nil, s.mapGetError(err)
	}
	return row.toDomain(), nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)

	if err := s.ensureEmailFree(ctx, user.Email, user.ID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $1, hashed_password = $2, full_name = $3, position = $4,
		    team_id = $5, updated_at = $6
		WHERE id = $7`,
		user.Email, user.HashedPassword, user.FullName, user.Position,
		user.TeamID, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return fmt.Errorf("failed to update user: %w", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// ensureEmailFree returns ErrEmailExists if a user other than self owns email.
func (s *PostgresUserStore) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	var owner uuid.UUID
	err := sqlx.GetContext(ctx, s.db, &owner, `SELECT id FROM users WHERE email = $1`, email)
	switch {
	case err == nil && owner != self:
		return store.ErrEmailExists
	case err == nil, IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("failed to check email: %w", err)
	}
}

func (s *PostgresUserStore) mapGetError(err error) error {
	if IsNotFound(err) {
		return store.ErrUserNotFound
	}
	return fmt.Errorf("failed to get user: %w", MapError(err))
}

// IsNotFound reports whether err is a no-rows result.
func IsNotFound(err error) bool {
	return errors.Is(MapError(err), store.ErrNotFound)
}
