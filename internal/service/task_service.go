package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service/auth"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// TaskService covers task listing and per-field task updates.
type TaskService interface {
	// Roadmap returns the named project with its tasks. An unknown project or
	// a project without tasks yields ErrNotFound.
	Roadmap(ctx context.Context, projectName string) (*domain.Roadmap, error)

	// ListByTeam returns the tasks of the caller's team, or none if the caller
	// has no team.
	ListByTeam(ctx context.Context, user *domain.User) ([]domain.Task, error)

	// ListByAssignee returns the tasks assigned to the caller.
	ListByAssignee(ctx context.Context, user *domain.User) ([]domain.Task, error)

	// Assign makes the caller the task's assignee. Any authenticated user may
	// take any task; the only failure is ErrNotFound.
	Assign(ctx context.Context, taskID uuid.UUID, user *domain.User) (*domain.Task, error)

	// The update methods change exactly one field. They fail with ErrNotFound,
	// ErrForbidden or a domain validation error, checked in that order.
	UpdateCompletePercent(ctx context.Context, taskID uuid.UUID, percent int, caller *domain.User) (*domain.Task, error)
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status string, caller *domain.User) (*domain.Task, error)
	UpdateDescription(ctx context.Context, taskID uuid.UUID, description string, caller *domain.User) (*domain.Task, error)
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks  store.TaskStore
	teams  store.TeamStore
	admins auth.AdminAllowList
	logger *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks store.TaskStore,
	teams store.TeamStore,
	admins auth.AdminAllowList,
	logger *slog.Logger,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		tasks:  tasks,
		teams:  teams,
		admins: admins,
		logger: logger.With("component", "task_service"),
	}
}

// Roadmap implements TaskService.
func (s *TaskServiceImpl) Roadmap(ctx context.Context, projectName string) (*domain.Roadmap, error) {
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrNotFound)
	}

	project, err := s.teams.GetProjectByName(ctx, projectName)
	if err != nil {
		return nil, s.mapNotFound(err, "project")
	}

	tasks, err := s.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: project %q has no tasks", ErrNotFound, projectName)
	}

	return &domain.Roadmap{Project: *project, Tasks: tasks}, nil
}

// ListByTeam implements TaskService.
func (s *TaskServiceImpl) ListByTeam(ctx context.Context, user *domain.User) ([]domain.Task, error) {
	if user.TeamID == nil {
		return []domain.Task{}, nil
	}
	tasks, err := s.tasks.ListByTeam(ctx, *user.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, nil
}

// ListByAssignee implements TaskService.
func (s *TaskServiceImpl) ListByAssignee(ctx context.Context, user *domain.User) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

// Assign implements TaskService.
func (s *TaskServiceImpl) Assign(ctx context.Context, taskID uuid.UUID, user *domain.User) (*domain.Task, error) {
	if err := s.tasks.SetAssignee(ctx, taskID, user.ID); err != nil {
		return nil, s.mapNotFound(err, "task")
	}

	s.logger.Info("task assigned", "task_id", taskID, "user_id", user.ID)
	return s.reload(ctx, taskID)
}

// UpdateCompletePercent implements TaskService.
func (s *TaskServiceImpl) UpdateCompletePercent(
	ctx context.Context,
	taskID uuid.UUID,
	percent int,
	caller *domain.User,
) (*domain.Task, error) {
	return s.updateField(ctx, taskID, caller, "complete_percent",
		func() error { return domain.ValidateCompletePercent(percent) },
		func() error { return s.tasks.UpdateCompletePercent(ctx, taskID, percent) })
}

// UpdateStatus implements TaskService.
func (s *TaskServiceImpl) UpdateStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status string,
	caller *domain.User,
) (*domain.Task, error) {
	var parsed domain.Status
	return s.updateField(ctx, taskID, caller, "current_status",
		func() (err error) {
			parsed, err = domain.ParseStatus(status)
			return err
		},
		func() error { return s.tasks.UpdateStatus(ctx, taskID, parsed) })
}

// UpdateDescription implements TaskService.
func (s *TaskServiceImpl) UpdateDescription(
	ctx context.Context,
	taskID uuid.UUID,
	description string,
	caller *domain.User,
) (*domain.Task, error) {
	return s.updateField(ctx, taskID, caller, "description",
		func() error { return nil },
		func() error { return s.tasks.UpdateDescription(ctx, taskID, description) })
}

// updateField runs the shared lookup, authorization and validation steps
// before apply writes the single field.
func (s *TaskServiceImpl) updateField(
	ctx context.Context,
	taskID uuid.UUID,
	caller *domain.User,
	field string,
	validate func() error,
	apply func() error,
) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.mapNotFound(err, "task")
	}

	if !s.canEdit(caller, task) {
		s.logger.Debug("task update denied",
			"task_id", taskID,
			"user_id", caller.ID,
			"field", field)
		return nil, ErrForbidden
	}

	if err := validate(); err != nil {
		return nil, err
	}

	if err := apply(); err != nil {
		return nil, s.mapNotFound(err, "task")
	}

	s.logger.Info("task updated", "task_id", taskID, "user_id", caller.ID, "field", field)
	return s.reload(ctx, taskID)
}

// canEdit allows admins, the assignee and members of the owning team.
func (s *TaskServiceImpl) canEdit(caller *domain.User, task *domain.Task) bool {
	if caller == nil {
		return false
	}
	return s.admins.IsAdmin(caller.Email) ||
		task.IsAssignedTo(caller.ID) ||
		caller.InTeam(task.TeamID)
}

func (s *TaskServiceImpl) reload(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, s.mapNotFound(err, "task")
	}
	return task, nil
}

func (s *TaskServiceImpl) mapNotFound(err error, entity string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return fmt.Errorf("failed to access %s: %w", entity, err)
}
