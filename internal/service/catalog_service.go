package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// Notification list bounds.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// CatalogService serves the read-only listings: teams, dashboards and the
// caller's notification inbox.
type CatalogService struct {
	teams         store.TeamStore
	notifications store.NotificationStore
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(teams store.TeamStore, notifications store.NotificationStore) *CatalogService {
	return &CatalogService{teams: teams, notifications: notifications}
}

// ListTeams returns every team by name.
func (s *CatalogService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListDashboards returns one progress summary per project.
func (s *CatalogService) ListDashboards(ctx context.Context) ([]domain.Dashboard, error) {
	dashboards, err := s.teams.ListDashboards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}
	return dashboards, nil
}

// ListNotifications returns the user's newest notifications. limit is
// clamped to [1, MaxNotificationLimit]; zero or less means the default.
func (s *CatalogService) ListNotifications(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.Notification, error) {
	switch {
	case limit <= 0:
		limit = DefaultNotificationLimit
	case limit > MaxNotificationLimit:
		limit = MaxNotificationLimit
	}

	list, err := s.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}
