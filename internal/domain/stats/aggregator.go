package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/metrics"
	"github.com/rpggio/roundup/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// Aggregator sums members' daily records over calendar-day windows.
type Aggregator struct {
	repo    Repository
	clock   clock.Clock
	loc     *time.Location
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewAggregator creates an aggregator that buckets days on the calendar of loc.
func NewAggregator(repo Repository, clk clock.Clock, loc *time.Location, rec *metrics.Recorder, logger *slog.Logger) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{
		repo:    repo,
		clock:   clock.OrSystem(clk),
		loc:     loc,
		metrics: rec,
		logger:  logging.OrDiscard(logger),
	}
}

// Aggregate returns each member's total for metric over the days spanned by
// [start, end]. Members without records total 0. On a fetch error the result
// is nil; a partial result is never returned.
func (a *Aggregator) Aggregate(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error) {
	if !metric.Valid() {
		return nil, ErrInvalidMetric
	}
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	totals := make(map[string]float64, len(memberIDs))
	for _, id := range memberIDs {
		totals[id] = 0
	}
	if len(memberIDs) == 0 {
		return totals, nil
	}

	fromDay := challenge.DayKey(start, a.loc)
	toDay := challenge.DayKey(end, a.loc)
	records, err := a.repo.ListRange(ctx, memberIDs, fromDay, toDay)
	a.metrics.Aggregation(string(metric), err)
	if err != nil {
		a.logger.Error("daily record fetch failed",
			"metric", metric,
			"from", fromDay,
			"to", toDay,
			"members", len(memberIDs),
			"error", err,
		)
		return nil, fmt.Errorf("fetching daily records: %w", err)
	}

	if metric == challenge.MetricDistance {
		for _, rec := range records {
			if _, ok := totals[rec.UserID]; ok {
				totals[rec.UserID] += rec.Distance
			}
		}
		return totals, nil
	}

	sums := make(map[string]int64, len(memberIDs))
	for _, rec := range records {
		if _, ok := totals[rec.UserID]; ok {
			sums[rec.UserID] += int64(rec.Value(metric))
		}
	}
	for id, sum := range sums {
		totals[id] = float64(sum)
	}
	return totals, nil
}

// Current aggregates like Aggregate with end clamped to now. A window that has
// not started yet totals 0 for every member.
func (a *Aggregator) Current(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error) {
	if now := a.clock.Now(); now.Before(end) {
		end = now
	}
	if start.After(end) {
		if !metric.Valid() {
			return nil, ErrInvalidMetric
		}
		totals := make(map[string]float64, len(memberIDs))
		for _, id := range memberIDs {
			totals[id] = 0
		}
		return totals, nil
	}
	return a.Aggregate(ctx, memberIDs, metric, start, end)
}

// Summary returns one member's totals for every metric over [start, end].
// The per-metric reads run concurrently.
func (a *Aggregator) Summary(ctx context.Context, memberID string, start, end time.Time) (*Totals, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	values := make([]float64, len(challenge.Metrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, metric := range challenge.Metrics {
		g.Go(func() error {
			res, err := a.Aggregate(gctx, []string{memberID}, metric, start, end)
			if err != nil {
				return fmt.Errorf("%s: %w", metric, err)
			}
			values[i] = res[memberID]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarizing member %s: %w", memberID, err)
	}

	totals := &Totals{
		MemberID: memberID,
		From:     challenge.DayKey(start, a.loc),
		To:       challenge.DayKey(end, a.loc),
	}
	for i, metric := range challenge.Metrics {
		totals.set(metric, values[i])
	}
	return totals, nil
}
