package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/mocks"
	"github.com/phrazzld/roadmap-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListNotificationsClampsLimit(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	notifications := &mocks.MockNotificationStore{}
	for i := int64(1); i <= 150; i++ {
		require.NoError(t, notifications.Create(context.Background(), &domain.Notification{ID: i, UserID: userID}))
	}
	svc := service.NewCatalogService(mocks.NewMockTeamStore(), notifications)

	tests := []struct {
		limit int
		want  int
	}{
		{0, service.DefaultNotificationLimit},
		{-5, service.DefaultNotificationLimit},
		{3, 3},
		{1000, service.MaxNotificationLimit},
	}
	for _, tt := range tests {
		got, err := svc.ListNotifications(context.Background(), userID, tt.limit)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "limit %d", tt.limit)
	}

	newest, err := svc.ListNotifications(context.Background(), userID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), newest[0].ID)
}

func TestCatalogService_Listings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	teams := mocks.NewMockTeamStore()
	teams.Teams = []domain.Team{{ID: uuid.New(), Name: "Core"}}
	teams.ListDashboardsFn = func(context.Context) ([]domain.Dashboard, error) {
		return []domain.Dashboard{{ProjectName: "Billing", TaskCount: 2}}, nil
	}
	svc := service.NewCatalogService(teams, &mocks.MockNotificationStore{})

	gotTeams, err := svc.ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Core", gotTeams[0].Name)

	dashboards, err := svc.ListDashboards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboards[0].TaskCount)

	teams.Err = errors.New("db down")
	_, err = svc.ListTeams(ctx)
	assert.Error(t, err)
}
