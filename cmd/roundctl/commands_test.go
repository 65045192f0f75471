package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/roundup/internal/app"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, clk clock.Clock, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCLI(&out, clk).Run(append([]string{"roundctl"}, args...))
	return out.String(), err
}

// withApp opens the database at path for direct setup and closes it afterwards.
func withApp(t *testing.T, path string, clk clock.Clock, fn func(a *app.App)) {
	t.Helper()
	db, err := sqlite.New(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations())
	fn(app.New(db, app.Options{Location: time.UTC, Clock: clk}))
}

func TestSchedule(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	out, err := run(t, clk, "--timezone", "UTC", "schedule",
		"--start", "2026-03-02", "--end", "2026-03-15", "--cadence", "weekly")
	require.NoError(t, err)
	require.Contains(t, out, "2 rounds")
	require.Contains(t, out, "2026-03-09 00:00:00")
	require.Contains(t, out, "2026-03-15 23:59:59")
	require.Contains(t, out, "pending")

	_, err = run(t, clk, "schedule", "--start", "2026-03-02", "--end", "2026-03-15", "--cadence", "hourly")
	require.ErrorIs(t, err, challenge.ErrInvalidCadence)
}

func TestKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roundup.db")
	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	_, err := run(t, clk, "--db", path, "key", "--member", "ghost")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown member")

	withApp(t, path, clk, func(a *app.App) {
		_, err := a.Members.Add(ctx, group.AddRequest{ID: "alice", GroupID: "g1", DisplayName: "Alice"})
		require.NoError(t, err)
	})

	out, err := run(t, clk, "--db", path, "key", "--member", "alice")
	require.NoError(t, err)
	key := strings.TrimSpace(out)
	_, err = uuid.Parse(key)
	require.NoError(t, err)

	withApp(t, path, clk, func(a *app.App) {
		member, err := a.APIKeys.ResolveMember(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "alice", member)
	})
}

func TestReconcileAndNotify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "roundup.db")
	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	out, err := run(t, clk, "--db", path, "reconcile")
	require.NoError(t, err)
	require.Contains(t, out, "no round-based challenges")

	var challengeID string
	withApp(t, path, clk, func(a *app.App) {
		for _, id := range []string{"alice", "bob"} {
			_, err := a.Members.Add(ctx, group.AddRequest{ID: id, GroupID: "g1", DisplayName: id})
			require.NoError(t, err)
		}
		daily := challenge.CadenceDaily
		end := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)
		ch, err := a.Challenges.Create(ctx, challenge.CreateRequest{
			GroupID:      "g1",
			CreatorID:    "alice",
			Title:        "Two days",
			Kind:         challenge.KindLeaderboard,
			Metric:       challenge.MetricSteps,
			StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      &end,
			RoundCadence: &daily,
		})
		require.NoError(t, err)
		challengeID = ch.ID
	})

	records := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(records, []byte(`[
		{"user_id": "alice", "date": "2026-03-01", "steps": 1200},
		{"user_id": "bob", "date": "2026-03-01", "steps": 800}
	]`), 0o644))
	out, err = run(t, clk, "--db", path, "import", records)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2 records")

	clk.Set(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	out, err = run(t, clk, "--db", path, "reconcile", "--challenge", challengeID)
	require.NoError(t, err)
	require.Contains(t, out, "1/2 rounds completed")
	require.Contains(t, out, "not_ended")

	_, err = run(t, clk, "--db", path, "reconcile", "--challenge", "missing")
	require.Error(t, err)

	clk.Set(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	out, err = run(t, clk, "--db", path, "reconcile")
	require.NoError(t, err)
	require.Contains(t, out, "2/2 rounds completed")
	require.Contains(t, out, "posted")

	out, err = run(t, clk, "--db", path, "notify", "--group", "g1")
	require.NoError(t, err)
	require.Contains(t, out, "already_notified")
}
