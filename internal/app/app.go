// Package app wires the SQLite repositories into the domain services.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/completion"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/internal/domain/standings"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/internal/mcp"
	"github.com/rpggio/roundup/internal/metrics"
	"github.com/rpggio/roundup/internal/sqlite"
	"github.com/rpggio/roundup/pkg/logging"
)

// Options configures the services.
type Options struct {
	// Location is the calendar whose days bound rounds and daily records.
	Location *time.Location
	Clock    clock.Clock
	// Registerer receives the engine's Prometheus collectors. Nil disables registration.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// App holds every domain service over one database.
type App struct {
	Challenges *challenge.Service
	Members    *group.Service
	Stats      *stats.Service
	Aggregator *stats.Aggregator
	Feed       *feed.Service
	Rounds     *round.Service
	Completion *completion.Notifier
	Standings  *standings.Service
	APIKeys    *sqlite.APIKeyRepository

	clock  clock.Clock
	logger *slog.Logger
}

// New builds the services on db.
func New(db *sqlite.DB, opts Options) *App {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	clk := clock.OrSystem(opts.Clock)
	logger := logging.OrDiscard(opts.Logger)
	rec := metrics.New(opts.Registerer)

	challengeRepo := sqlite.NewChallengeRepository(db)
	roundRepo := sqlite.NewRoundRepository(db)
	memberRepo := sqlite.NewMemberRepository(db)
	statsRepo := sqlite.NewDailyStatsRepository(db)
	ledger := sqlite.NewLedgerRepository(db, clk)

	feedSvc := feed.NewService(sqlite.NewEventRepository(db), ledger, clk, rec, logger.With("component", "feed"))
	aggregator := stats.NewAggregator(statsRepo, clk, loc, rec, logger.With("component", "aggregator"))

	return &App{
		Challenges: challenge.NewService(challengeRepo, roundRepo, memberRepo, feedSvc, clk, loc, logger.With("component", "challenge")),
		Members:    group.NewService(memberRepo, clk, logger.With("component", "group")),
		Stats:      stats.NewService(statsRepo, logger.With("component", "stats")),
		Aggregator: aggregator,
		Feed:       feedSvc,
		Rounds:     round.NewService(challengeRepo, roundRepo, memberRepo, aggregator, feedSvc, clk, rec, logger.With("component", "round")),
		Completion: completion.NewNotifier(roundRepo, memberRepo, aggregator, ledger, feedSvc, clk, logger.With("component", "completion")),
		Standings:  standings.NewService(challengeRepo, memberRepo, aggregator, clk, logger.With("component", "standings")),
		APIKeys:    sqlite.NewAPIKeyRepository(db),
		clock:      clk,
		logger:     logger,
	}
}

// MCPServices exposes the services to the MCP tool server.
func (a *App) MCPServices() mcp.Services {
	return mcp.Services{
		Challenges: a.Challenges,
		Rounds:     a.Rounds,
		Completion: a.Completion,
		Standings:  a.Standings,
		Stats:      a.Stats,
		Members:    a.Members,
		Feed:       a.Feed,
	}
}

// ReconcileResult reports one challenge's reconciliation pass.
type ReconcileResult struct {
	ChallengeID string
	Overview    *round.Overview
	Completion  completion.Result
	Err         error
}

// ReconcileAll reconciles every round-based challenge, then runs its
// completion check. A failing challenge does not stop the others.
func (a *App) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	list, err := a.Challenges.ListRoundBased(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ReconcileResult, 0, len(list))
	for _, ch := range list {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, a.Reconcile(ctx, ch.ID))
	}
	return results, nil
}

// Reconcile reconciles one challenge and runs its completion check.
func (a *App) Reconcile(ctx context.Context, challengeID string) ReconcileResult {
	res := ReconcileResult{ChallengeID: challengeID}

	overview, err := a.Rounds.Reconcile(ctx, challengeID)
	if err != nil {
		a.logger.Warn("reconcile failed", "challenge_id", challengeID, "error", err)
		res.Err = fmt.Errorf("reconciling %s: %w", challengeID, err)
		return res
	}
	res.Overview = overview

	res.Completion, err = a.Completion.Check(ctx, overview.Challenge)
	if err != nil {
		a.logger.Warn("completion check failed", "challenge_id", challengeID, "error", err)
		res.Err = fmt.Errorf("completion check %s: %w", challengeID, err)
	}
	return res
}

// Notify runs completion checks for every challenge in a group. Active
// round-based challenges are reconciled first so their overall winner is
// decided from completed rounds.
func (a *App) Notify(ctx context.Context, groupID string) ([]completion.Result, error) {
	list, err := a.Challenges.List(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		ch := &list[i]
		if !ch.IsRoundBased() || ch.Status != challenge.StatusActive {
			continue
		}
		overview, err := a.Rounds.Reconcile(ctx, ch.ID)
		if err != nil {
			a.logger.Warn("reconcile before notify failed", "challenge_id", ch.ID, "error", err)
			continue
		}
		list[i] = *overview.Challenge
	}
	return a.Completion.CheckAll(ctx, list), nil
}
