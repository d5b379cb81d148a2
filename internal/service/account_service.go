package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service/auth"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ProfileUpdate lists the profile fields a user may change. Nil fields are
// left untouched. ClearTeam removes the user from their team. Changing the
// team is reserved for admins.
type ProfileUpdate struct {
	Email     *string
	FullName  *string
	Position  *string
	TeamID    *uuid.UUID
	ClearTeam bool
	Password  *string
}

// AccountService covers registration, login, token handling and the admin gate.
type AccountService interface {
	// Register creates a user. Returns ErrEmailInUse or a domain validation error.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate returns the user owning email if password matches,
	// otherwise ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// IssueToken signs an access token for user.
	IssueToken(ctx context.Context, user *domain.User) (*Token, error)

	// ResolveToken returns the live user a token was issued for, or ErrUnauthenticated.
	ResolveToken(ctx context.Context, token string) (*domain.User, error)

	// RequireAdmin returns user if it is on the admin allow-list, otherwise ErrForbidden.
	RequireAdmin(ctx context.Context, user *domain.User) (*domain.User, error)

	// IsAdmin reports whether user is on the admin allow-list.
	IsAdmin(user *domain.User) bool

	// UpdateProfile applies upd to the user. Returns ErrEmailInUse when the
	// new email belongs to someone else.
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*domain.User, error)
}

// AccountServiceImpl implements AccountService.
type AccountServiceImpl struct {
	users    store.UserStore
	db       *sqlx.DB
	tokens   auth.JWTService
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	admins   auth.AdminAllowList
	logger   *slog.Logger
}

var _ AccountService = (*AccountServiceImpl)(nil)

// PasswordHashVerifier is satisfied by auth.BcryptVerifier.
type PasswordHashVerifier interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// NewAccountService creates an AccountService. db is used for transactions.
func NewAccountService(
	users store.UserStore,
	db *sqlx.DB,
	tokens auth.JWTService,
	passwords PasswordHashVerifier,
	admins auth.AdminAllowList,
	logger *slog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		users:    users,
		db:       db,
		tokens:   tokens,
		hasher:   passwords,
		verifier: passwords,
		admins:   admins,
		logger:   logger.With("component", "account_service"),
	}
}

// Register implements AccountService.
func (s *AccountServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register existing email", "email", user.Email)
			return nil, ErrEmailInUse
		}
		s.logger.Error("failed to save user", "error", err, "email", user.Email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate implements AccountService.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login for unknown email", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login with wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken implements AccountService.
func (s *AccountServiceImpl) IssueToken(ctx context.Context, user *domain.User) (*Token, error) {
	token, expiresAt, err := s.tokens.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// ResolveToken implements AccountService.
func (s *AccountServiceImpl) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("token for missing user", "user_id", claims.UserID)
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}

	return user, nil
}

// IsAdmin implements AccountService.
func (s *AccountServiceImpl) IsAdmin(user *domain.User) bool {
	return user != nil && s.admins.IsAdmin(user.Email)
}

// RequireAdmin implements AccountService.
func (s *AccountServiceImpl) RequireAdmin(ctx context.Context, user *domain.User) (*domain.User, error) {
	if !s.IsAdmin(user) {
		return nil, ErrForbidden
	}
	return user, nil
}

// UpdateProfile implements AccountService.
func (s *AccountServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	upd ProfileUpdate,
) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		// Checked against the stored email so a rename cannot grant itself rights.
		if changesTeam(user, upd) && !s.admins.IsAdmin(user.Email) {
			return errTeamChangeForbidden
		}

		if upd.Email != nil {
			email := domain.NormalizeEmail(*upd.Email)
			if err := domain.ValidateEmail(email); err != nil {
				return err
			}
			user.Email = email
		}
		if upd.FullName != nil {
			user.FullName = *upd.FullName
		}
		if upd.Position != nil {
			user.Position = *upd.Position
		}
		if upd.ClearTeam {
			user.TeamID = nil
		} else if upd.TeamID != nil {
			teamID := *upd.TeamID
			user.TeamID = &teamID
		}
		if upd.Password != nil {
			if err := domain.ValidatePassword(*upd.Password); err != nil {
				return err
			}
			hash, err := s.hasher.Hash(*upd.Password)
			if err != nil {
				return err
			}
			user.HashedPassword = hash
		}
		user.UpdatedAt = time.Now().UTC()

		if err := users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return nil, ErrEmailInUse
		case errors.Is(err, store.ErrUserNotFound):
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		case errors.Is(err, store.ErrInvalidEntity):
			return nil, fmt.Errorf("%w: unknown team", domain.ErrValidation)
		case errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, ErrForbidden):
			s.logger.Warn("team change rejected", "user_id", userID)
			return nil, err
		}
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return updated, nil
}

// changesTeam reports whether upd would move user to a different team.
func changesTeam(user *domain.User, upd ProfileUpdate) bool {
	if upd.ClearTeam {
		return user.TeamID != nil
	}
	if upd.TeamID == nil {
		return false
	}
	return user.TeamID == nil || *user.TeamID != *upd.TeamID
}
