package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/service"
)

var errInvalidTaskID = fmt.Errorf("%w: task_id must be a UUID", domain.ErrValidation)

// TaskHandler serves roadmap and task endpoints.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Roadmap handles GET /api/data/roadmap?project_name=.
func (h *TaskHandler) Roadmap(w http.ResponseWriter, r *http.Request) {
	roadmap, err := h.tasks.Roadmap(r.Context(), r.URL.Query().Get("project_name"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roadmap)
}

// TeamTasks handles GET /api/team/tasks and its legacy alias GET /api/data/tasks.
func (h *TaskHandler) TeamTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.tasks.ListByTeam)
}

// UserTasks handles GET /api/user/tasks.
func (h *TaskHandler) UserTasks(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.tasks.ListByAssignee)
}

func (h *TaskHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, user *domain.User) ([]domain.Task, error),
) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}
	tasks, err := fetch(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Assign handles POST /api/user/tasks?task_id=. The caller becomes the assignee.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}
	taskID, err := uuid.Parse(r.URL.Query().Get("task_id"))
	if err != nil {
		HandleAPIError(w, r, errInvalidTaskID)
		return
	}

	task, err := h.tasks.Assign(r.Context(), taskID, user)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "task assigned",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateCompletePercent handles PUT /api/data/tasks/complete-percent.
func (h *TaskHandler) UpdateCompletePercent(w http.ResponseWriter, r *http.Request) {
	var req CompletePercentRequest
	user, ok := h.decodeUpdate(w, r, &req)
	if !ok {
		return
	}
	h.respondUpdate(w, r, "complete_percent")(
		h.tasks.UpdateCompletePercent(r.Context(), req.TaskID, *req.CompletePercent, user))
}

// UpdateStatus handles PUT /api/data/tasks/current-status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	user, ok := h.decodeUpdate(w, r, &req)
	if !ok {
		return
	}
	h.respondUpdate(w, r, "current_status")(
		h.tasks.UpdateStatus(r.Context(), req.TaskID, req.CurrentStatus, user))
}

// UpdateDescription handles PUT /api/data/tasks/description.
func (h *TaskHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req DescriptionRequest
	user, ok := h.decodeUpdate(w, r, &req)
	if !ok {
		return
	}
	h.respondUpdate(w, r, "description")(
		h.tasks.UpdateDescription(r.Context(), req.TaskID, *req.Description, user))
}

// decodeUpdate reads and validates a field update body. It writes the error
// response itself and reports false on failure.
func (h *TaskHandler) decodeUpdate(w http.ResponseWriter, r *http.Request, req interface{}) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return nil, false
	}
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return nil, false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleValidationError(w, r, err)
		return nil, false
	}
	return user, true
}

func (h *TaskHandler) respondUpdate(w http.ResponseWriter, r *http.Request, field string) func(*domain.Task, error) {
	return func(task *domain.Task, err error) {
		if err != nil {
			HandleAPIError(w, r, err)
			return
		}
		h.logger.InfoContext(r.Context(), "task updated",
			slog.String("task_id", task.ID.String()),
			slog.String("field", field))
		shared.RespondWithJSON(w, r, http.StatusOK, task)
	}
}
