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

const taskSelect = `
	SELECT k.id, k.project_id, p.name AS project_name, p.team_id, k.name, k.description,
	       k.current_status, k.complete_percent, k.assignee_id, k.deadline,
	       k.created_at, k.updated_at
	FROM tasks k
	JOIN projects p ON p.id = k.project_id`

type taskRow struct {
	ID              uuid.UUID  `db:"id"`
	ProjectID       uuid.UUID  `db:"project_id"`
	ProjectName     string     `db:"project_name"`
	TeamID          uuid.UUID  `db:"team_id"`
	Name            string     `db:"name"`
	Description     string     `db:"description"`
	CurrentStatus   string     `db:"current_status"`
	CompletePercent int        `db:"complete_percent"`
	AssigneeID      *uuid.UUID `db:"assignee_id"`
	Deadline        time.Time  `db:"deadline"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r *taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		ProjectName:     r.ProjectName,
		TeamID:          r.TeamID,
		Name:            r.Name,
		Description:     r.Description,
		CurrentStatus:   domain.Status(r.CurrentStatus),
		CompletePercent: r.CompletePercent,
		AssigneeID:      r.AssigneeID,
		Deadline:        r.Deadline,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a task store on top of db.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx store.DBTX) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, s.db, &row, taskSelect+` WHERE k.id = $1`, id); err != nil {
		if IsNotFound(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", MapError(err))
	}
	task := row.toDomain()
	return &task, nil
}

// ListByProject implements store.TaskStore.ListByProject
func (s *PostgresTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	return s.list(ctx, taskSelect+` WHERE k.project_id = $1 ORDER BY k.deadline, k.name`, projectID)
}

// ListByTeam implements store.TaskStore.ListByTeam
func (s *PostgresTaskStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Task, error) {
	return s.list(ctx, taskSelect+` WHERE p.team_id = $1 ORDER BY k.deadline, k.name`, teamID)
}

// ListByAssignee implements store.TaskStore.ListByAssignee
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return s.list(ctx, taskSelect+` WHERE k.assignee_id = $1 ORDER BY k.deadline, k.name`, userID)
}

// ListOpenDueBetween implements store.TaskStore.ListOpenDueBetween
func (s *PostgresTaskStore) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	return s.list(ctx, taskSelect+`
		WHERE k.deadline >= $1 AND k.deadline <= $2
		  AND k.current_status NOT IN ('done', 'cancelled')
		ORDER BY k.deadline, k.name`,
		from.UTC(), to.UTC())
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", MapError(err))
	}

	tasks := make([]domain.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toDomain())
	}
	return tasks, nil
}

// SetAssignee implements store.TaskStore.SetAssignee
func (s *PostgresTaskStore) SetAssignee(ctx context.Context, id, userID uuid.UUID) error {
	return s.updateColumn(ctx, "assignee_id", userID, id)
}

// UpdateCompletePercent implements store.TaskStore.UpdateCompletePercent
func (s *PostgresTaskStore) UpdateCompletePercent(ctx context.Context, id uuid.UUID, percent int) error {
	return s.updateColumn(ctx, "complete_percent", percent, id)
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	return s.updateColumn(ctx, "current_status", string(status), id)
}

// UpdateDescription implements store.TaskStore.UpdateDescription
func (s *PostgresTaskStore) UpdateDescription(ctx context.Context, id uuid.UUID, description string) error {
	return s.updateColumn(ctx, "description", description, id)
}

// updateColumn writes a single column. column is always a constant chosen
// by the caller above, never user input.
func (s *PostgresTaskStore) updateColumn(ctx context.Context, column string, value interface{}, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET `+column+` = $1, updated_at = $2 WHERE id = $3`,
		value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", column, MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Upsert implements store.TaskStore.Upsert
func (s *PostgresTaskStore) Upsert(ctx context.Context, task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, name, description, current_status,
		                   complete_percent, assignee_id, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (project_id, name) DO UPDATE SET
			description      = excluded.description,
			current_status   = excluded.current_status,
			complete_percent = excluded.complete_percent,
			assignee_id      = COALESCE(excluded.assignee_id, tasks.assignee_id),
			deadline         = excluded.deadline,
			updated_at       = excluded.updated_at`,
		task.ID, task.ProjectID, task.Name, task.Description, string(task.CurrentStatus),
		task.CompletePercent, task.AssigneeID, task.Deadline.UTC(), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", MapError(err))
	}

	if err := sqlx.GetContext(ctx, s.db, &task.ID,
		`SELECT id FROM tasks WHERE project_id = $1 AND name = $2`,
		task.ProjectID, task.Name); err != nil {
		return fmt.Errorf("failed to read upserted task: %w", MapError(err))
	}

	return nil
}
