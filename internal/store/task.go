package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// TaskStore defines persistence for tasks. Every update method touches a
// single column (plus updated_at) and returns ErrTaskNotFound when no row matches.
type TaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByProject returns the project's tasks ordered by deadline.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)

	// ListByTeam returns tasks of every project owned by the team.
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Task, error)

	// ListByAssignee returns tasks currently assigned to the user.
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)

	// ListOpenDueBetween returns non-terminal tasks with from <= deadline <= to.
	ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error)

	SetAssignee(ctx context.Context, id, userID uuid.UUID) error
	UpdateCompletePercent(ctx context.Context, id uuid.UUID, percent int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) error

	// Upsert inserts the task or, when a task with the same name already exists
	// in the project, overwrites its imported fields. task.ID is set to the stored ID.
	Upsert(ctx context.Context, task *domain.Task) error

	WithTx(tx DBTX) TaskStore
}
