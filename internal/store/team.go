package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

// TeamStore defines persistence for teams and their projects.
type TeamStore interface {
	ListTeams(ctx context.Context) ([]domain.Team, error)

	// GetProjectByName returns ErrProjectNotFound if no project has the name.
	GetProjectByName(ctx context.Context, name string) (*domain.Project, error)

	// ListDashboards returns one summary row per project.
	ListDashboards(ctx context.Context) ([]domain.Dashboard, error)

	// EnsureTeam returns the team with the given name, creating it if needed.
	EnsureTeam(ctx context.Context, name string) (*domain.Team, error)

	// EnsureProject returns the project with the given name, creating it under
	// teamID if needed.
	EnsureProject(ctx context.Context, name string, teamID uuid.UUID) (*domain.Project, error)

	WithTx(tx DBTX) TeamStore
}
