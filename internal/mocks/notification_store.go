package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// MockNotificationStore implements store.NotificationStore in memory.
type MockNotificationStore struct {
	CreateErr error

	mu      sync.Mutex
	Created []domain.Notification
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// Create implements store.NotificationStore
func (m *MockNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, *n)
	return nil
}

// ListByUser implements store.NotificationStore
func (m *MockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, n := range m.Created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Snapshot returns a copy of every stored notification.
func (m *MockNotificationStore) Snapshot() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.Created...)
}
