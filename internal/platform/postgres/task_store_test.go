package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskNames(tasks []domain.Task) []string {
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	return names
}

func TestPostgresTaskStore_Upsert(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := NewPostgresTaskStore(db)
	ctx := context.Background()
	f := seed(t, db)

	first := &domain.Task{
		ProjectID:       f.project.ID,
		Name:            "Invoices",
		Description:     "v1",
		CurrentStatus:   domain.StatusNotStarted,
		CompletePercent: 0,
		AssigneeID:      &f.user.ID,
		Deadline:        baseTime.Add(48 * time.Hour),
	}
	require.NoError(t, s.Upsert(ctx, first))
	require.NotEqual(t, uuid.Nil, first.ID)

	// Same project and name updates in place and keeps the assignee when the
	// import row has none.
	second := &domain.Task{
		ProjectID:       f.project.ID,
		Name:            "Invoices",
		Description:     "v2",
		CurrentStatus:   domain.StatusInProgress,
		CompletePercent: 40,
		Deadline:        baseTime.Add(72 * time.Hour),
	}
	require.NoError(t, s.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := s.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Description)
	assert.Equal(t, domain.StatusInProgress, got.CurrentStatus)
	assert.Equal(t, 40, got.CompletePercent)
	assert.Equal(t, "Billing", got.ProjectName)
	assert.Equal(t, f.team.ID, got.TeamID)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, f.user.ID, *got.AssigneeID)
	assert.True(t, baseTime.Add(72*time.Hour).Equal(got.Deadline))
}

func TestPostgresTaskStore_Lists(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := NewPostgresTaskStore(db)
	ctx := context.Background()
	f := seed(t, db)

	otherTeam, err := NewPostgresTeamStore(db).EnsureTeam(ctx, "Mobile")
	require.NoError(t, err)
	otherProject, err := NewPostgresTeamStore(db).EnsureProject(ctx, "App", otherTeam.ID)
	require.NoError(t, err)

	late := addTask(t, db, f.project.ID, "Late", domain.StatusNotStarted, baseTime.Add(10*time.Hour))
	addTask(t, db, f.project.ID, "Early", domain.StatusNotStarted, baseTime.Add(time.Hour))
	foreign := addTask(t, db, otherProject.ID, "Foreign", domain.StatusNotStarted, baseTime.Add(time.Hour))

	require.NoError(t, s.SetAssignee(ctx, late.ID, f.user.ID))
	require.NoError(t, s.SetAssignee(ctx, foreign.ID, f.user.ID))

	byProject, err := s.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Early", "Late"}, taskNames(byProject))

	byTeam, err := s.ListByTeam(ctx, f.team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Early", "Late"}, taskNames(byTeam))

	byAssignee, err := s.ListByAssignee(ctx, f.user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Late", "Foreign"}, taskNames(byAssignee))

	empty, err := s.ListByTeam(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostgresTaskStore_ListOpenDueBetween(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := NewPostgresTaskStore(db)
	ctx := context.Background()
	f := seed(t, db)

	addTask(t, db, f.project.ID, "past", domain.StatusInProgress, baseTime.Add(-time.Hour))
	addTask(t, db, f.project.ID, "soon", domain.StatusInProgress, baseTime.Add(2*time.Hour))
	addTask(t, db, f.project.ID, "edge", domain.StatusOnHold, baseTime.Add(24*time.Hour))
	addTask(t, db, f.project.ID, "done", domain.StatusDone, baseTime.Add(3*time.Hour))
	addTask(t, db, f.project.ID, "cancelled", domain.StatusCancelled, baseTime.Add(3*time.Hour))
	addTask(t, db, f.project.ID, "later", domain.StatusNotStarted, baseTime.Add(25*time.Hour))

	tasks, err := s.ListOpenDueBetween(ctx, baseTime, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"soon", "edge"}, taskNames(tasks))
}

func TestPostgresTaskStore_FieldUpdates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := NewPostgresTaskStore(db)
	ctx := context.Background()
	f := seed(t, db)

	task := &domain.Task{
		ProjectID:     f.project.ID,
		Name:          "Docs",
		Description:   "original",
		CurrentStatus: domain.StatusNotStarted,
		Deadline:      baseTime,
	}
	require.NoError(t, s.Upsert(ctx, task))

	require.NoError(t, s.UpdateCompletePercent(ctx, task.ID, 75))
	got, err := s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, got.CompletePercent)
	assert.Equal(t, domain.StatusNotStarted, got.CurrentStatus)
	assert.Equal(t, "original", got.Description)

	require.NoError(t, s.UpdateStatus(ctx, task.ID, domain.StatusDone))
	got, err = s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.CurrentStatus)
	assert.Equal(t, 75, got.CompletePercent)

	require.NoError(t, s.UpdateDescription(ctx, task.ID, "rewritten"))
	got, err = s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Description)
	assert.Equal(t, domain.StatusDone, got.CurrentStatus)

	missing := uuid.New()
	assert.ErrorIs(t, s.UpdateCompletePercent(ctx, missing, 10), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, missing, domain.StatusDone), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.UpdateDescription(ctx, missing, "x"), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.SetAssignee(ctx, missing, f.user.ID), store.ErrTaskNotFound)

	_, err = s.GetByID(ctx, missing)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStore_WithTxRollback(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	f := seed(t, db)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
		txStore := NewPostgresTaskStore(db).WithTx(tx)
		task := &domain.Task{ProjectID: f.project.ID, Name: "tx", CurrentStatus: domain.StatusNotStarted, Deadline: baseTime}
		require.NoError(t, txStore.Upsert(ctx, task))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	tasks, err := NewPostgresTaskStore(db).ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
