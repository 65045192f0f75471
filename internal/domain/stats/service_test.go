package stats_test

import (
	"context"
	"testing"

	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Import(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DailyStatsRepository{}
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	svc := stats.NewService(repo, nil)
	n, err := svc.Import(ctx, []stats.DailyRecord{
		{UserID: "a", Date: "2026-02-01", Steps: 100},
		{UserID: "b", Date: "2026-02-01", Distance: 1.5, WorkoutsCount: intPtr(2)},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestStatsService_ImportValidation(t *testing.T) {
	svc := stats.NewService(&mocks.DailyStatsRepository{}, nil)

	cases := []stats.DailyRecord{
		{Date: "2026-02-01"},
		{UserID: "a", Date: "02/01/2026"},
		{UserID: "a", Date: "2026-02-01", Steps: -1},
		{UserID: "a", Date: "2026-02-01", ExerciseMinutes: intPtr(-5)},
	}
	for _, rec := range cases {
		_, err := svc.Import(context.Background(), []stats.DailyRecord{rec})
		require.ErrorIs(t, err, stats.ErrInvalidRecord)
	}
}
