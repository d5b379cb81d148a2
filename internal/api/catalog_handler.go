package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service"
)

var errInvalidLimit = fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)

// Catalog lists teams, dashboards and notifications.
type Catalog interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)
	ListDashboards(ctx context.Context) ([]domain.Dashboard, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
}

// NotificationStream attaches a client to live notifications.
type NotificationStream interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

// CatalogHandler serves the read-only listings and the notification feed.
type CatalogHandler struct {
	catalog Catalog
	stream  NotificationStream
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler. stream may be nil, in which
// case the websocket endpoint is not available.
func NewCatalogHandler(catalog Catalog, stream NotificationStream, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		stream:  stream,
		logger:  logger.With(slog.String("component", "catalog_handler")),
	}
}

// Teams handles GET /api/data/teams.
func (h *CatalogHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.catalog.ListTeams(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, teams)
}

// Dashboards handles GET /api/data/dashboards.
func (h *CatalogHandler) Dashboards(w http.ResponseWriter, r *http.Request) {
	dashboards, err := h.catalog.ListDashboards(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboards)
}

// Notifications handles GET /api/user/notifications?limit=.
func (h *CatalogHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			HandleAPIError(w, r, errInvalidLimit)
			return
		}
		limit = n
	}

	list, err := h.catalog.ListNotifications(r.Context(), user.ID, limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// NotificationSocket handles GET /api/user/notifications/ws.
func (h *CatalogHandler) NotificationSocket(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}
	if h.stream == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Live notifications are disabled")
		return
	}

	// The connection is hijacked once upgraded, so errors can only be logged.
	if err := h.stream.Serve(w, r, user.ID); err != nil {
		h.logger.DebugContext(r.Context(), "notification stream ended",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
	}
}
