package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies a deadline notification.
type NotificationKind string

const (
	NotificationDueSoon NotificationKind = "due_soon"
	NotificationOverdue NotificationKind = "overdue"
)

// Notification is an inbox entry produced by the deadline scanner.
// IDs are snowflake IDs, so they sort by creation time.
type Notification struct {
	ID        int64            `json:"id,string"`
	UserID    uuid.UUID        `json:"user_id"`
	TaskID    uuid.UUID        `json:"task_id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Deadline  time.Time        `json:"deadline"`
	CreatedAt time.Time        `json:"created_at"`
}
