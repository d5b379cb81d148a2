package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

type notificationRow struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	TaskID    uuid.UUID `db:"task_id"`
	Kind      string    `db:"kind"`
	Message   string    `db:"message"`
	Deadline  time.Time `db:"deadline"`
	CreatedAt time.Time `db:"created_at"`
}

// PostgresNotificationStore implements store.NotificationStore.
type PostgresNotificationStore struct {
	db store.DBTX
}

// NewPostgresNotificationStore creates a notification store on top of db.
func NewPostgresNotificationStore(db store.DBTX) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, task_id, kind, message, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.TaskID, string(n.Kind), n.Message, n.Deadline.UTC(), n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", MapError(err))
	}
	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *PostgresNotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.Notification, error) {
	var rows []notificationRow
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT id, user_id, task_id, kind, message, deadline, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", MapError(err))
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Notification{
			ID:        r.ID,
			UserID:    r.UserID,
			TaskID:    r.TaskID,
			Kind:      domain.NotificationKind(r.Kind),
			Message:   r.Message,
			Deadline:  r.Deadline,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}
