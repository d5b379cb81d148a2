package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/service"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user, h.accounts.IsAdmin(user)))
}

// Token handles POST /api/token. Credentials come either as an OAuth2
// password form (username, password) or as a JSON LoginRequest.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(w, r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, shared.WithElevatedLogLevel())
		return
	}

	token, err := h.accounts.IssueToken(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   token.ExpiresAt,
	})
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes)
		if err := r.ParseMultipartForm(shared.MaxBodyBytes); err != nil &&
			!errors.Is(err, http.ErrNotMultipart) {
			return req, err
		}
		req.Email = strings.TrimSpace(r.PostFormValue("username"))
		req.Password = r.PostFormValue("password")
		return req, nil
	default:
		err := shared.DecodeJSON(w, r, &req)
		return req, err
	}
}

// Me handles GET /api/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user, h.accounts.IsAdmin(user)))
}

// UpdateMe handles PUT /api/users/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}

	var req ProfileUpdateRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user.ID, service.ProfileUpdate{
		Email:     req.Email,
		FullName:  req.FullName,
		Position:  req.Position,
		TeamID:    req.TeamID,
		ClearTeam: req.ClearTeam,
		Password:  req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(updated, h.accounts.IsAdmin(updated)))
}

// Admin handles GET /api/users/admin. The admin gate runs in middleware, so
// reaching this handler means the caller is an admin.
func (h *AuthHandler) Admin(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user, true))
}
