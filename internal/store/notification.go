package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// NotificationStore persists deadline notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error

	// ListByUser returns the user's newest notifications first, at most limit rows.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
}
