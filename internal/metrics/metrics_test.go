package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpggio/roundup/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	rec.EventPosted("round_winner")
	rec.EventPosted("round_winner")
	rec.EventDeduplicated("challenge_won")
	rec.RoundCompleted()
	rec.ReconcileFailure("aggregate")
	rec.ObserveReconcile(150 * time.Millisecond)
	rec.Aggregation("steps", nil)
	rec.Aggregation("steps", errors.New("boom"))

	count, err := testutil.GatherAndCount(reg, "roundup_feed_events_posted_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "roundup_aggregations_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "roundup_reconcile_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *metrics.Recorder
	require.NotPanics(t, func() {
		rec.EventPosted("x")
		rec.EventDeduplicated("x")
		rec.RoundCompleted()
		rec.ReconcileFailure("x")
		rec.ObserveReconcile(time.Second)
		rec.Aggregation("steps", nil)
	})
}
