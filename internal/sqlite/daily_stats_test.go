package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/stretchr/testify/require"
)

func TestDailyStatsRepository_UpsertAndRange(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDailyStatsRepository(db)
	ctx := context.Background()
	minutes := 45

	require.NoError(t, repo.Upsert(ctx, []stats.DailyRecord{
		{UserID: "a", Date: "2026-02-01", Steps: 5000, Calories: 200, Distance: 3.5, ExerciseMinutes: &minutes},
		{UserID: "a", Date: "2026-02-02", Steps: 1000},
		{UserID: "b", Date: "2026-02-01", Steps: 3000},
		{UserID: "c", Date: "2026-02-01", Steps: 7000},
		{UserID: "a", Date: "2026-02-05", Steps: 9},
	}))

	records, err := repo.ListRange(ctx, []string{"a", "b"}, "2026-02-01", "2026-02-02")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "a", records[0].UserID)
	require.Equal(t, 45, *records[0].ExerciseMinutes)
	require.Nil(t, records[0].WorkoutsCount)
	require.Equal(t, 3.5, records[0].Distance)

	// Re-importing a day replaces it.
	require.NoError(t, repo.Upsert(ctx, []stats.DailyRecord{{UserID: "a", Date: "2026-02-01", Steps: 6000}}))
	records, err = repo.ListRange(ctx, []string{"a"}, "2026-02-01", "2026-02-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 6000, records[0].Steps)
	require.Nil(t, records[0].ExerciseMinutes)

	records, err = repo.ListRange(ctx, nil, "2026-02-01", "2026-02-28")
	require.NoError(t, err)
	require.Empty(t, records)
}
