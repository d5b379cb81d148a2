package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/snowflake"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/events"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// Publisher delivers a stored notification to live clients.
type Publisher interface {
	Publish(n domain.Notification)
}

// Inbox persists deadline events as notifications.
type Inbox struct {
	store     store.NotificationStore
	node      *snowflake.Node
	clock     clockwork.Clock
	publisher Publisher
	logger    *slog.Logger
}

var _ events.EventHandler = (*Inbox)(nil)

// NewInbox creates an Inbox. nodeID must be unique per running process
// (0..1023); publisher may be nil.
func NewInbox(
	notifications store.NotificationStore,
	nodeID int64,
	clock clockwork.Clock,
	publisher Publisher,
	logger *slog.Logger,
) (*Inbox, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Inbox{
		store:     notifications,
		node:      node,
		clock:     clock,
		publisher: publisher,
		logger:    logger.With("component", "inbox"),
	}, nil
}

// HandleEvent implements events.EventHandler. Events for unassigned tasks
// have nobody to notify and are skipped.
func (i *Inbox) HandleEvent(ctx context.Context, event *events.DeadlineEvent) error {
	if event.AssigneeID == nil {
		i.logger.Debug("skipping event for unassigned task", "task_id", event.TaskID)
		return nil
	}

	n := domain.Notification{
		ID:        i.node.Generate().Int64(),
		UserID:    *event.AssigneeID,
		TaskID:    event.TaskID,
		Kind:      event.Kind,
		Message:   event.Message(),
		Deadline:  event.Deadline,
		CreatedAt: i.clock.Now().UTC(),
	}

	if err := i.store.Create(ctx, &n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if i.publisher != nil {
		i.publisher.Publish(n)
	}
	return nil
}
