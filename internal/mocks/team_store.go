package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/store"
)

// MockTeamStore implements store.TeamStore with in-memory teams and projects.
type MockTeamStore struct {
	ListDashboardsFn func(ctx context.Context) ([]domain.Dashboard, error)

	Err error

	mu       sync.Mutex
	Teams    []domain.Team
	Projects []domain.Project
}

// NewMockTeamStore creates an empty team store.
func NewMockTeamStore() *MockTeamStore {
	return &MockTeamStore{}
}

var _ store.TeamStore = (*MockTeamStore)(nil)

// ListTeams implements store.TeamStore
func (m *MockTeamStore) ListTeams(ctx context.Context) ([]domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]domain.Team(nil), m.Teams...), nil
}

// GetProjectByName implements store.TeamStore
func (m *MockTeamStore) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Projects {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrProjectNotFound
}

// ListDashboards implements store.TeamStore
func (m *MockTeamStore) ListDashboards(ctx context.Context) ([]domain.Dashboard, error) {
	if m.ListDashboardsFn != nil {
		return m.ListDashboardsFn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return []domain.Dashboard{}, nil
}

// EnsureTeam implements store.TeamStore
func (m *MockTeamStore) EnsureTeam(ctx context.Context, name string) (*domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Teams {
		if t.Name == name {
			cp := t
			return &cp, nil
		}
	}
	t := domain.Team{ID: uuid.New(), Name: name}
	m.Teams = append(m.Teams, t)
	return &t, nil
}

// EnsureProject implements store.TeamStore
func (m *MockTeamStore) EnsureProject(ctx context.Context, name string, teamID uuid.UUID) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Projects {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	p := domain.Project{ID: uuid.New(), Name: name, TeamID: teamID}
	m.Projects = append(m.Projects, p)
	return &p, nil
}

// WithTx implements store.TeamStore
func (m *MockTeamStore) WithTx(tx store.DBTX) store.TeamStore {
	return m
}
