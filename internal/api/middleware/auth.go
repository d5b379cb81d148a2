package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/roadmap-api/internal/api"
	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service"
)

// AccessTokenParam is the query parameter carrying the token on websocket
// upgrades, where browsers cannot set an Authorization header.
const AccessTokenParam = "access_token"

// Authenticator resolves bearer tokens and checks admin rights.
type Authenticator interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
	RequireAdmin(ctx context.Context, user *domain.User) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	accounts Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(accounts Authenticator) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts}
}

// Authenticate resolves the request's bearer token to a live user and stores
// the user in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			api.HandleAPIError(w, r, service.ErrUnauthenticated)
			return
		}

		user, err := m.accounts.ResolveToken(r.Context(), token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			api.HandleAPIError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}

// RequireAdmin rejects callers that are not on the admin allow-list.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		if !ok {
			api.HandleAPIError(w, r, service.ErrUnauthenticated)
			return
		}
		if _, err := m.accounts.RequireAdmin(r.Context(), user); err != nil {
			api.HandleAPIError(w, r, err, shared.WithElevatedLogLevel())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if websocket.IsWebSocketUpgrade(r) {
			token := r.URL.Query().Get(AccessTokenParam)
			return token, token != ""
		}
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
