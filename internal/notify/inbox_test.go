package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/events"
	"github.com/phrazzld/roadmap-api/internal/mocks"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu        sync.Mutex
	published []domain.Notification
}

func (p *capturePublisher) Publish(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
}

var firedAt = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func deadlineEvent(assignee *uuid.UUID) *events.DeadlineEvent {
	return events.NewDeadlineEvent(domain.Task{
		ID:            uuid.New(),
		Name:          "Ship",
		ProjectName:   "Billing",
		CurrentStatus: domain.StatusInProgress,
		AssigneeID:    assignee,
		Deadline:      firedAt.Add(3 * time.Hour),
	}, domain.NotificationDueSoon, firedAt)
}

func TestNewInbox_RejectsBadNodeID(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	_, err := NewInbox(&mocks.MockNotificationStore{}, 5000, clockwork.NewFakeClock(), nil, log)
	assert.Error(t, err)
}

func TestInbox_HandleEvent(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	notifications := &mocks.MockNotificationStore{}
	pub := &capturePublisher{}
	inbox, err := NewInbox(notifications, 7, clockwork.NewFakeClockAt(firedAt), pub, log)
	require.NoError(t, err)

	assignee := uuid.New()
	first := deadlineEvent(&assignee)
	require.NoError(t, inbox.HandleEvent(context.Background(), first))
	require.NoError(t, inbox.HandleEvent(context.Background(), deadlineEvent(&assignee)))

	stored := notifications.Snapshot()
	require.Len(t, stored, 2)
	assert.Equal(t, assignee, stored[0].UserID)
	assert.Equal(t, first.TaskID, stored[0].TaskID)
	assert.Equal(t, domain.NotificationDueSoon, stored[0].Kind)
	assert.Equal(t, first.Message(), stored[0].Message)
	assert.Equal(t, firedAt, stored[0].CreatedAt)
	assert.Greater(t, stored[1].ID, stored[0].ID, "snowflake IDs increase")

	assert.Equal(t, stored, pub.published)
}

func TestInbox_SkipsUnassigned(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	notifications := &mocks.MockNotificationStore{}
	inbox, err := NewInbox(notifications, 1, clockwork.NewFakeClock(), nil, log)
	require.NoError(t, err)

	require.NoError(t, inbox.HandleEvent(context.Background(), deadlineEvent(nil)))
	assert.Empty(t, notifications.Snapshot())
}

func TestInbox_StoreFailureIsNotPublished(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	notifications := &mocks.MockNotificationStore{CreateErr: errors.New("db down")}
	pub := &capturePublisher{}
	inbox, err := NewInbox(notifications, 1, clockwork.NewFakeClock(), pub, log)
	require.NoError(t, err)

	assignee := uuid.New()
	assert.ErrorContains(t, inbox.HandleEvent(context.Background(), deadlineEvent(&assignee)), "db down")
	assert.Empty(t, pub.published)
}
