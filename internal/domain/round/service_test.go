package round_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// roundStore is an in-memory RoundRepository that records participant snapshots.
type roundStore struct {
	mu           sync.Mutex
	rounds       []challenge.Round
	participants map[string][]challenge.RoundParticipant
	completeErr  map[string]error
}

func newRoundStore(rounds []challenge.Round) *roundStore {
	return &roundStore{
		rounds:       rounds,
		participants: map[string][]challenge.RoundParticipant{},
		completeErr:  map[string]error{},
	}
}

func (s *roundStore) ListRounds(_ context.Context, challengeID string) ([]challenge.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []challenge.Round
	for _, r := range s.rounds {
		if r.ChallengeID == challengeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *roundStore) UpdateStatus(_ context.Context, roundID string, status challenge.RoundStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rounds {
		if s.rounds[i].ID == roundID {
			s.rounds[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *roundStore) CompleteRound(_ context.Context, roundID string, winnerID *string, participants []challenge.RoundParticipant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.completeErr[roundID]; err != nil {
		return err
	}
	for i := range s.rounds {
		if s.rounds[i].ID == roundID {
			s.rounds[i].Status = challenge.RoundCompleted
			s.rounds[i].WinnerID = winnerID
			s.participants[roundID] = participants
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *roundStore) ListParticipants(_ context.Context, roundID string) ([]challenge.RoundParticipant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.participants[roundID]), nil
}

// statsStore is an in-memory stats.Repository.
type statsStore struct {
	records []stats.DailyRecord
}

func (s *statsStore) ListRange(_ context.Context, userIDs []string, fromDay, toDay string) ([]stats.DailyRecord, error) {
	var out []stats.DailyRecord
	for _, r := range s.records {
		if slices.Contains(userIDs, r.UserID) && r.Date >= fromDay && r.Date <= toDay {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *statsStore) Upsert(_ context.Context, records []stats.DailyRecord) error {
	s.records = append(s.records, records...)
	return nil
}

type harness struct {
	challenge *challenge.Challenge
	store     *roundStore
	stats     *statsStore
	events    *mocks.EventRepository
	ledger    *feed.MemoryLedger
	clock     *clock.Fixed
	repo      *mocks.ChallengeRepository
	svc       *round.Service
}

func ts(d, h int) time.Time {
	return time.Date(2026, 2, d, h, 0, 0, 0, time.UTC)
}

// newHarness builds a daily leaderboard challenge on steps from Feb 1 through
// the end of Feb <days> for members a and b.
func newHarness(t *testing.T, days int, now time.Time) *harness {
	t.Helper()

	end := ts(days, 0).Add(24*time.Hour - time.Second)
	cadence := challenge.CadenceDaily
	ch := &challenge.Challenge{
		ID:           "c1",
		GroupID:      "g1",
		CreatorID:    "a",
		Title:        "February Steps",
		Kind:         challenge.KindLeaderboard,
		Metric:       challenge.MetricSteps,
		StartDate:    ts(1, 0),
		EndDate:      &end,
		Status:       challenge.StatusActive,
		RoundCadence: &cadence,
	}

	windows, err := challenge.GenerateRounds(ch.StartDate, ch.EndDate, cadence, ts(1, 0))
	require.NoError(t, err)
	rounds := make([]challenge.Round, 0, len(windows))
	for _, w := range windows {
		rounds = append(rounds, challenge.Round{
			ID:          "r" + string(rune('0'+w.Number)),
			ChallengeID: ch.ID,
			RoundNumber: w.Number,
			StartDate:   w.Start,
			EndDate:     w.End,
			Status:      w.Status,
		})
	}

	h := &harness{
		challenge: ch,
		store:     newRoundStore(rounds),
		stats:     &statsStore{},
		events:    &mocks.EventRepository{},
		ledger:    feed.NewMemoryLedger(),
		clock:     clock.NewFixed(now),
		repo:      &mocks.ChallengeRepository{},
	}

	members := &mocks.MemberRepository{}
	members.On("List", mock.Anything, "g1").Return([]group.Member{
		{ID: "a", GroupID: "g1", DisplayName: "Alice"},
		{ID: "b", GroupID: "g1", DisplayName: "Bob"},
	}, nil)

	h.repo.On("Get", mock.Anything, "c1").Return(ch, nil)
	h.repo.On("SetCurrentRound", mock.Anything, "c1", mock.AnythingOfType("int")).Return(nil)
	h.events.On("Insert", mock.Anything, mock.Anything).Return(nil)

	agg := stats.NewAggregator(h.stats, h.clock, time.UTC, nil, nil)
	poster := feed.NewService(h.events, h.ledger, h.clock, nil, nil)
	h.svc = round.NewService(h.repo, h.store, members, agg, poster, h.clock, nil, nil)
	return h
}

func (h *harness) steps(member, date string, n int) {
	h.stats.records = append(h.stats.records, stats.DailyRecord{UserID: member, Date: date, Steps: n})
}

func (h *harness) posted(t *testing.T) []*feed.Event {
	t.Helper()
	var out []*feed.Event
	for _, call := range h.events.Calls {
		if call.Method == "Insert" {
			out = append(out, call.Arguments.Get(1).(*feed.Event))
		}
	}
	return out
}

func TestReconcile_EndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, ts(3, 1))
	h.steps("a", "2026-02-01", 5000)
	h.steps("b", "2026-02-01", 3000)
	h.steps("a", "2026-02-02", 1000)
	h.steps("b", "2026-02-02", 9000)

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ov.Rounds, 2)

	require.Equal(t, challenge.RoundCompleted, ov.Rounds[0].Status)
	require.Equal(t, "a", *ov.Rounds[0].WinnerID)
	require.Equal(t, challenge.RoundCompleted, ov.Rounds[1].Status)
	require.Equal(t, "b", *ov.Rounds[1].WinnerID)

	require.Equal(t, []round.WinCount{
		{MemberID: "a", DisplayName: "Alice", Wins: 1},
		{MemberID: "b", DisplayName: "Bob", Wins: 1},
	}, ov.Wins)
	require.Nil(t, ov.ActiveRound)
	require.Empty(t, ov.LiveStandings)

	p := h.store.participants["r1"]
	require.Len(t, p, 2)
	require.Equal(t, challenge.RoundParticipant{RoundID: "r1", UserID: "a", Value: 5000, Rank: 1}, p[0])
	require.Equal(t, challenge.RoundParticipant{RoundID: "r1", UserID: "b", Value: 3000, Rank: 2}, p[1])

	events := h.posted(t)
	require.Len(t, events, 2)
	require.Equal(t, feed.TypeRoundWinner, events[0].Type)
	require.Equal(t, map[string]string{"challenge_title": "February Steps", "round_number": "1", "winner_name": "Alice"}, events[0].Payload)
	require.Equal(t, "2", events[1].Payload["round_number"])
	require.Equal(t, "Bob", events[1].Payload["winner_name"])

	h.repo.AssertCalled(t, "SetCurrentRound", mock.Anything, "c1", 2)
}

func TestReconcile_RepeatedPassesAreStable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, ts(3, 1))
	h.steps("a", "2026-02-01", 5000)
	h.steps("b", "2026-02-02", 9000)

	first, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	second, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)

	require.Equal(t, first.Rounds, second.Rounds)
	require.Equal(t, first.Wins, second.Wins)
	require.Len(t, h.posted(t), 2)
}

func TestReconcile_ActivatesAndShowsLiveStandings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 3, ts(1, 0))
	h.clock.Set(ts(2, 15))
	h.steps("a", "2026-02-02", 200)
	h.steps("b", "2026-02-02", 800)

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)

	require.Equal(t, challenge.RoundCompleted, ov.Rounds[0].Status)
	require.Nil(t, ov.Rounds[0].WinnerID)
	require.Equal(t, challenge.RoundActive, ov.Rounds[1].Status)
	require.Equal(t, challenge.RoundPending, ov.Rounds[2].Status)

	require.NotNil(t, ov.ActiveRound)
	require.Equal(t, 2, ov.ActiveRound.RoundNumber)
	require.Len(t, ov.LiveStandings, 2)
	require.Equal(t, "b", ov.LiveStandings[0].MemberID)
	require.Equal(t, "Bob", ov.LiveStandings[0].DisplayName)
	require.Equal(t, 1.0, ov.LiveStandings[0].Progress)
	require.Equal(t, 0.25, ov.LiveStandings[1].Progress)
	require.Equal(t, 2, *ov.Challenge.CurrentRoundNumber)
}

func TestReconcile_ZeroActivityHasNoWinner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, ts(2, 1))

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundCompleted, ov.Rounds[0].Status)
	require.Nil(t, ov.Rounds[0].WinnerID)
	require.Empty(t, ov.Wins)
	require.Empty(t, h.posted(t))
	require.Len(t, h.store.participants["r1"], 2)
}

func TestReconcile_TiedLeadersEachAnnounced(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, ts(2, 1))
	h.steps("a", "2026-02-01", 4000)
	h.steps("b", "2026-02-01", 4000)

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "a", *ov.Rounds[0].WinnerID)

	events := h.posted(t)
	require.Len(t, events, 2)
	require.Equal(t, "a", events[0].UserID)
	require.Equal(t, "b", events[1].UserID)
	require.True(t, h.ledger.Has(feed.RoundWinnerKey("r1", "a")))
	require.True(t, h.ledger.Has(feed.RoundWinnerKey("r1", "b")))
}

func TestReconcile_RepairsCompletedRoundWithoutWinner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, ts(2, 1))
	h.store.rounds[0].Status = challenge.RoundCompleted
	h.steps("b", "2026-02-01", 10)

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "b", *ov.Rounds[0].WinnerID)
}

func TestReconcile_RoundFailureDoesNotStopPass(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, ts(3, 1))
	h.store.completeErr["r1"] = errors.New("write failed")
	h.steps("a", "2026-02-01", 1)
	h.steps("a", "2026-02-02", 1)

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundActive, ov.Rounds[0].Status)
	require.Equal(t, challenge.RoundCompleted, ov.Rounds[1].Status)
	require.Equal(t, "a", *ov.Rounds[1].WinnerID)

	delete(h.store.completeErr, "r1")
	ov, err = h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundCompleted, ov.Rounds[0].Status)
}

func TestReconcile_NeverMovesBackward(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, ts(3, 1))
	h.steps("a", "2026-02-01", 1)
	h.steps("a", "2026-02-02", 1)
	_, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)

	h.clock.Set(ts(1, 0))
	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	for _, r := range ov.Rounds {
		require.Equal(t, challenge.RoundCompleted, r.Status)
	}
}

func TestReconcile_PendingBeforeStart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, ts(1, 0).Add(-time.Hour))
	h.store.rounds[0].Status = challenge.RoundPending

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundPending, ov.Rounds[0].Status)
	require.Equal(t, challenge.RoundPending, ov.Rounds[1].Status)
	require.Nil(t, ov.ActiveRound)
}

func TestReconcile_SkipsCancelled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, ts(2, 1))
	h.challenge.Status = challenge.StatusCancelled

	ov, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundActive, ov.Rounds[0].Status)
	h.repo.AssertNotCalled(t, "SetCurrentRound", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_Errors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ChallengeRepository{}
	repo.On("Get", ctx, "missing").Return((*challenge.Challenge)(nil), repository.ErrNotFound)
	repo.On("Get", ctx, "plain").Return(&challenge.Challenge{ID: "plain"}, nil)

	svc := round.NewService(repo, newRoundStore(nil), &mocks.MemberRepository{}, &mocks.Aggregator{}, &mocks.EventPoster{}, nil, nil, nil)

	_, err := svc.Reconcile(ctx, "missing")
	require.ErrorIs(t, err, challenge.ErrChallengeNotFound)

	_, err = svc.Reconcile(ctx, "plain")
	require.ErrorIs(t, err, challenge.ErrNotRoundBased)
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, ts(2, 1))
	h.steps("a", "2026-02-01", 100)
	h.steps("b", "2026-02-01", 300)
	_, err := h.svc.Reconcile(ctx, "c1")
	require.NoError(t, err)

	res, err := h.svc.Results(ctx, "c1", 1)
	require.NoError(t, err)
	require.Equal(t, "b", *res.Round.WinnerID)
	require.Len(t, res.Standings, 2)
	require.Equal(t, "Bob", res.Standings[0].DisplayName)
	require.Equal(t, 1, res.Standings[0].Rank)
	require.Equal(t, 100.0, res.Standings[1].Value)

	_, err = h.svc.Results(ctx, "c1", 9)
	require.ErrorIs(t, err, round.ErrRoundNotFound)
}
