package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the JSON body of POST /api/token. The form variant uses
// "username" for the email.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by POST /api/token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Position  string     `json:"position"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt time.Time  `json:"created_at"`
}

func userToResponse(u *domain.User, isAdmin bool) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Position:  u.Position,
		TeamID:    u.TeamID,
		IsAdmin:   isAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdateRequest is the body of PUT /api/users/me. Omitted fields are
// left unchanged.
type ProfileUpdateRequest struct {
	Email     *string    `json:"email"      validate:"omitempty,email"`
	FullName  *string    `json:"full_name"  validate:"omitempty,max=200"`
	Position  *string    `json:"position"   validate:"omitempty,max=200"`
	TeamID    *uuid.UUID `json:"team_id"`
	ClearTeam bool       `json:"clear_team"`
	Password  *string    `json:"password"   validate:"omitempty,min=8,max=72"`
}

// CompletePercentRequest is the body of PUT /api/data/tasks/complete-percent.
// The range is checked by the service so that unknown tasks report 404 first.
type CompletePercentRequest struct {
	TaskID          uuid.UUID `json:"task_id"          validate:"required"`
	CompletePercent *int      `json:"complete_percent" validate:"required"`
}

// StatusRequest is the body of PUT /api/data/tasks/current-status.
type StatusRequest struct {
	TaskID        uuid.UUID `json:"task_id"        validate:"required"`
	CurrentStatus string    `json:"current_status" validate:"required"`
}

// DescriptionRequest is the body of PUT /api/data/tasks/description.
// An empty description is allowed.
type DescriptionRequest struct {
	TaskID      uuid.UUID `json:"task_id"     validate:"required"`
	Description *string   `json:"description" validate:"required"`
}
