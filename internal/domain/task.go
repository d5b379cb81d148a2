package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the workflow state of a task.
type Status string

// Task statuses.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusOnHold,
	StatusDone,
	StatusCancelled,
}

// ParseStatus converts user or spreadsheet input into a Status.
// Matching is case-insensitive and accepts spaces or dashes in place of underscores.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, st := range Statuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether no further work is expected on a task in this state.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Task is a unit of work on a project roadmap.
type Task struct {
	ID              uuid.UUID  `json:"id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	TeamID          uuid.UUID  `json:"team_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CurrentStatus   Status     `json:"current_status"`
	CompletePercent int        `json:"complete_percent"`
	AssigneeID      *uuid.UUID `json:"assignee_id,omitempty"`
	Deadline        time.Time  `json:"deadline"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidateCompletePercent checks that p is a percentage.
func ValidateCompletePercent(p int) error {
	if p < 0 || p > 100 {
		return ErrInvalidPercent
	}
	return nil
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
