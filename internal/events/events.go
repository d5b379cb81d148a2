package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// DeadlineEvent reports that an open task is due soon or already overdue.
// The scanner emits one per task per firing.
type DeadlineEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Kind        domain.NotificationKind `json:"kind"`
	TaskID      uuid.UUID               `json:"task_id"`
	TaskName    string                  `json:"task_name"`
	ProjectName string                  `json:"project_name"`
	Status      domain.Status           `json:"status"`

	// AssigneeID is nil for unassigned tasks
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`

	Deadline time.Time `json:"deadline"`

	// FiredAt is the scanner's clock reading for the firing that produced the event
	FiredAt time.Time `json:"fired_at"`
}

// NewDeadlineEvent builds the event for task as seen at firedAt.
func NewDeadlineEvent(task domain.Task, kind domain.NotificationKind, firedAt time.Time) *DeadlineEvent {
	return &DeadlineEvent{
		ID:          uuid.New(),
		Kind:        kind,
		TaskID:      task.ID,
		TaskName:    task.Name,
		ProjectName: task.ProjectName,
		Status:      task.CurrentStatus,
		AssigneeID:  task.AssigneeID,
		Deadline:    task.Deadline,
		FiredAt:     firedAt,
	}
}

// Message renders the human readable text shown to the assignee.
func (e *DeadlineEvent) Message() string {
	when := e.Deadline.UTC().Format(time.RFC3339)
	if e.Kind == domain.NotificationOverdue {
		return fmt.Sprintf("Task %q in %s is overdue (deadline %s)", e.TaskName, e.ProjectName, when)
	}
	return fmt.Sprintf("Task %q in %s is due %s", e.TaskName, e.ProjectName, when)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *DeadlineEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *DeadlineEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *DeadlineEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the scanner to publish events without knowing the handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *DeadlineEvent) error
}
