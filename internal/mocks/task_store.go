package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// MockTaskStore implements store.TaskStore over an in-memory map.
// Set an Fn field to override a single method.
type MockTaskStore struct {
	GetByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListOpenDueBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Task, error)
	UpsertFn             func(ctx context.Context, task *domain.Task) error

	// Err, when set, is returned by every method without an Fn override.
	Err error

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
	Calls []string
}

// NewMockTaskStore creates a store holding copies of tasks.
func NewMockTaskStore(tasks ...domain.Task) *MockTaskStore {
	m := &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
	for i := range tasks {
		t := tasks[i]
		m.Tasks[t.ID] = &t
	}
	return m
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) record(call string) {
	m.Calls = append(m.Calls, call)
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetByID")
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTaskStore) filter(call string, keep func(*domain.Task) bool) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(call)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.Task, 0)
	for _, t := range m.Tasks {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Name < out[j].Name
		}
		return out[i].Deadline.Before(out[j].Deadline)
	})
	return out, nil
}

// ListByProject implements store.TaskStore
func (m *MockTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	return m.filter("ListByProject", func(t *domain.Task) bool { return t.ProjectID == projectID })
}

// ListByTeam implements store.TaskStore
func (m *MockTaskStore) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Task, error) {
	return m.filter("ListByTeam", func(t *domain.Task) bool { return t.TeamID == teamID })
}

// ListByAssignee implements store.TaskStore
func (m *MockTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return m.filter("ListByAssignee", func(t *domain.Task) bool { return t.IsAssignedTo(userID) })
}

// ListOpenDueBetween implements store.TaskStore
func (m *MockTaskStore) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	if m.ListOpenDueBetweenFn != nil {
		return m.ListOpenDueBetweenFn(ctx, from, to)
	}
	return m.filter("ListOpenDueBetween", func(t *domain.Task) bool {
		return !t.CurrentStatus.IsTerminal() && !t.Deadline.Before(from) && !t.Deadline.After(to)
	})
}

func (m *MockTaskStore) update(call string, id uuid.UUID, apply func(*domain.Task)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(call)
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.Tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	apply(t)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetAssignee implements store.TaskStore
func (m *MockTaskStore) SetAssignee(ctx context.Context, id, userID uuid.UUID) error {
	return m.update("SetAssignee", id, func(t *domain.Task) { t.AssigneeID = &userID })
}

// UpdateCompletePercent implements store.TaskStore
func (m *MockTaskStore) UpdateCompletePercent(ctx context.Context, id uuid.UUID, percent int) error {
	return m.update("UpdateCompletePercent", id, func(t *domain.Task) { t.CompletePercent = percent })
}

// UpdateStatus implements store.TaskStore
func (m *MockTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	return m.update("UpdateStatus", id, func(t *domain.Task) { t.CurrentStatus = status })
}

// UpdateDescription implements store.TaskStore
func (m *MockTaskStore) UpdateDescription(ctx context.Context, id uuid.UUID, description string) error {
	return m.update("UpdateDescription", id, func(t *domain.Task) { t.Description = description })
}

// Upsert implements store.TaskStore, matching on project and name.
func (m *MockTaskStore) Upsert(ctx context.Context, task *domain.Task) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Upsert")
	if m.Err != nil {
		return m.Err
	}
	for id, existing := range m.Tasks {
		if existing.ProjectID == task.ProjectID && existing.Name == task.Name {
			task.ID = id
			if task.AssigneeID == nil {
				task.AssigneeID = existing.AssigneeID
			}
			break
		}
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	cp := *task
	m.Tasks[task.ID] = &cp
	return nil
}

// WithTx implements store.TaskStore
func (m *MockTaskStore) WithTx(tx store.DBTX) store.TaskStore {
	return m
}
