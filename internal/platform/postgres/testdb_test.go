package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// sqliteSchema mirrors migrations/00001_init.sql with SQLite column types.
// TIMESTAMP (not TIMESTAMPTZ) lets the driver decode times.
const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE teams (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE users (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    full_name       TEXT NOT NULL DEFAULT '',
    position        TEXT NOT NULL DEFAULT '',
    team_id         TEXT NULL REFERENCES teams (id),
    created_at      TIMESTAMP NOT NULL,
    updated_at      TIMESTAMP NOT NULL
);

CREATE TABLE projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    team_id    TEXT NOT NULL REFERENCES teams (id),
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE tasks (
    id               TEXT PRIMARY KEY,
    project_id       TEXT NOT NULL REFERENCES projects (id),
    name             TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    current_status   TEXT NOT NULL DEFAULT 'not_started',
    complete_percent INTEGER NOT NULL DEFAULT 0,
    assignee_id      TEXT NULL REFERENCES users (id),
    deadline         TIMESTAMP NOT NULL,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL,
    UNIQUE (project_id, name)
);

CREATE TABLE notifications (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users (id),
    task_id    TEXT NOT NULL REFERENCES tasks (id),
    kind       TEXT NOT NULL,
    message    TEXT NOT NULL,
    deadline   TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// newTestDB opens a fresh in-memory database with the schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)
	return db
}

// baseTime is a second-aligned UTC instant so stored times compare equal.
var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	team    *domain.Team
	project *domain.Project
	user    *domain.User
}

// seed creates one team, one project and one member of that team.
func seed(t *testing.T, db *sqlx.DB) fixture {
	t.Helper()
	ctx := context.Background()

	teams := NewPostgresTeamStore(db)
	team, err := teams.EnsureTeam(ctx, "Platform")
	require.NoError(t, err)
	project, err := teams.EnsureProject(ctx, "Billing", team.ID)
	require.NoError(t, err)

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "dev@example.com",
		HashedPassword: "hash",
		FullName:       "Dev One",
		TeamID:         &team.ID,
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
	}
	require.NoError(t, NewPostgresUserStore(db).Create(ctx, user))

	return fixture{team: team, project: project, user: user}
}

func addTask(
	t *testing.T,
	db *sqlx.DB,
	projectID uuid.UUID,
	name string,
	status domain.Status,
	deadline time.Time,
) *domain.Task {
	t.Helper()
	task := &domain.Task{
		ProjectID:     projectID,
		Name:          name,
		CurrentStatus: status,
		Deadline:      deadline,
	}
	require.NoError(t, NewPostgresTaskStore(db).Upsert(context.Background(), task))
	return task
}
