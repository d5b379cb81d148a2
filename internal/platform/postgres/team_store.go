package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

type teamRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type projectRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	TeamID    uuid.UUID `db:"team_id"`
	TeamName  string    `db:"team_name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *projectRow) toDomain() *domain.Project {
	return &domain.Project{
		ID:        r.ID,
		Name:      r.Name,
		TeamID:    r.TeamID,
		TeamName:  r.TeamName,
		CreatedAt: r.CreatedAt,
	}
}

// dashboardRow is one (project, task) pair of the dashboard join. Task
// columns are NULL for projects without tasks.
type dashboardRow struct {
	ProjectID       uuid.UUID      `db:"project_id"`
	ProjectName     string         `db:"project_name"`
	TeamName        string         `db:"team_name"`
	TaskID          uuid.NullUUID  `db:"task_id"`
	CurrentStatus   sql.NullString `db:"current_status"`
	CompletePercent sql.NullInt64  `db:"complete_percent"`
	Deadline        sql.NullTime   `db:"deadline"`
}

// PostgresTeamStore implements store.TeamStore.
type PostgresTeamStore struct {
	db store.DBTX
}

// NewPostgresTeamStore creates a team store on top of db.
func NewPostgresTeamStore(db store.DBTX) *PostgresTeamStore {
	return &PostgresTeamStore{db: db}
}

var _ store.TeamStore = (*PostgresTeamStore)(nil)

// WithTx implements store.TeamStore.WithTx
func (s *PostgresTeamStore) WithTx(tx store.DBTX) store.TeamStore {
	return &PostgresTeamStore{db: tx}
}

// ListTeams implements store.TeamStore.ListTeams
func (s *PostgresTeamStore) ListTeams(ctx context.Context) ([]domain.Team, error) {
	var rows []teamRow
	if err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT id, name, created_at FROM teams ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", MapError(err))
	}

	teams := make([]domain.Team, 0, len(rows))
	for _, r := range rows {
		teams = append(teams, domain.Team{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt})
	}
	return teams, nil
}

// GetProjectByName implements store.TeamStore.GetProjectByName
func (s *PostgresTeamStore) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	var row projectRow
	err := sqlx.GetContext(ctx, s.db, &row, `
		SELECT p.id, p.name, p.team_id, t.name AS team_name, p.created_at
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		WHERE p.name = $1`, name)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", MapError(err))
	}
	return row.toDomain(), nil
}

// ListDashboards implements store.TeamStore.ListDashboards
func (s *PostgresTeamStore) ListDashboards(ctx context.Context) ([]domain.Dashboard, error) {
	var rows []dashboardRow
	err := sqlx.SelectContext(ctx, s.db, &rows, `
		SELECT p.id AS project_id, p.name AS project_name, t.name AS team_name,
		       k.id AS task_id, k.current_status, k.complete_percent, k.deadline
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		LEFT JOIN tasks k ON k.project_id = p.id
		ORDER BY p.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", MapError(err))
	}

	return summarize(rows), nil
}

// summarize folds the joined rows, already ordered by project, into one
// dashboard per project.
func summarize(rows []dashboardRow) []domain.Dashboard {
	dashboards := make([]domain.Dashboard, 0)
	var (
		cur        *domain.Dashboard
		percentSum int64
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.TaskCount > 0 {
			cur.AverageComplete = float64(percentSum) / float64(cur.TaskCount)
		}
		dashboards = append(dashboards, *cur)
	}

	for _, r := range rows {
		if cur == nil || cur.ProjectID != r.ProjectID {
			flush()
			cur = &domain.Dashboard{
				ProjectID:   r.ProjectID,
				ProjectName: r.ProjectName,
				TeamName:    r.TeamName,
			}
			percentSum = 0
		}
		if !r.TaskID.Valid {
			continue
		}

		cur.TaskCount++
		percentSum += r.CompletePercent.Int64
		status := domain.Status(r.CurrentStatus.String)
		switch status {
		case domain.StatusDone:
			cur.DoneCount++
		case domain.StatusInProgress:
			cur.InProgressCount++
		}
		if !status.IsTerminal() && r.Deadline.Valid {
			if cur.NextDeadline == nil || r.Deadline.Time.Before(*cur.NextDeadline) {
				d := r.Deadline.Time
				cur.NextDeadline = &d
			}
		}
	}
	flush()

	return dashboards
}

// EnsureTeam implements store.TeamStore.EnsureTeam
func (s *PostgresTeamStore) EnsureTeam(ctx context.Context, name string) (*domain.Team, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure team: %w", MapError(err))
	}

	var row teamRow
	if err := sqlx.GetContext(ctx, s.db, &row,
		`SELECT id, name, created_at FROM teams WHERE name = $1`, name); err != nil {
		return nil, fmt.Errorf("failed to read team: %w", MapError(err))
	}
	return &domain.Team{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

// EnsureProject implements store.TeamStore.EnsureProject. An existing
// project keeps its team.
func (s *PostgresTeamStore) EnsureProject(ctx context.Context, name string, teamID uuid.UUID) (*domain.Project, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, team_id, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, teamID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure project: %w", MapError(err))
	}
	return s.GetProjectByName(ctx, name)
}
