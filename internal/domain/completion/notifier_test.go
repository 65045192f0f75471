package completion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/completion"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	after = end.Add(time.Hour)
)

type fixture struct {
	rounds  *mocks.RoundRepository
	members *mocks.MemberRepository
	agg     *mocks.Aggregator
	events  *mocks.EventPoster
	ledger  *feed.MemoryLedger
	clock   *clock.Fixed
	n       *completion.Notifier
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		rounds:  &mocks.RoundRepository{},
		members: &mocks.MemberRepository{},
		agg:     &mocks.Aggregator{},
		events:  &mocks.EventPoster{},
		ledger:  feed.NewMemoryLedger(),
		clock:   clock.NewFixed(now),
	}
	f.members.On("List", mock.Anything, "g1").Return([]group.Member{
		{ID: "a", DisplayName: "Alice"},
		{ID: "b", DisplayName: "Bob"},
	}, nil)
	f.n = completion.NewNotifier(f.rounds, f.members, f.agg, f.ledger, f.events, f.clock, nil)
	return f
}

func leaderboard(id string) *challenge.Challenge {
	e := end
	return &challenge.Challenge{
		ID:        id,
		GroupID:   "g1",
		Title:     "February Steps",
		Kind:      challenge.KindLeaderboard,
		Metric:    challenge.MetricSteps,
		StartDate: start,
		EndDate:   &e,
		Status:    challenge.StatusActive,
	}
}

func roundBased(id string) *challenge.Challenge {
	ch := leaderboard(id)
	cadence := challenge.CadenceWeekly
	ch.RoundCadence = &cadence
	return ch
}

func winnerID(id string) *string { return &id }

func TestCheck_NotEnded(t *testing.T) {
	f := newFixture(end)
	res, err := f.n.Check(context.Background(), leaderboard("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeNotEnded, res.Outcome)
	require.Empty(t, f.ledger.Keys())
}

func TestCheck_OpenEndedNeverEnds(t *testing.T) {
	f := newFixture(after.AddDate(5, 0, 0))
	ch := leaderboard("c1")
	ch.EndDate = nil
	res, err := f.n.Check(context.Background(), ch)
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeNotEnded, res.Outcome)
}

func TestCheck_AggregateWinnerPostsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.agg.On("Aggregate", ctx, []string{"a", "b"}, challenge.MetricSteps, start, end).
		Return(map[string]float64{"a": 120000, "b": 150500}, nil)
	f.events.On("Post", ctx, mock.MatchedBy(func(evt *feed.Event) bool {
		return evt.Type == feed.TypeChallengeWon && evt.UserID == "b"
	})).Return(nil).Once()

	res, err := f.n.Check(ctx, leaderboard("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomePosted, res.Outcome)
	require.Equal(t, "Bob", res.WinnerName)
	require.Equal(t, "150,500 steps", res.Value)

	evt := f.events.Calls[0].Arguments.Get(1).(*feed.Event)
	require.Equal(t, map[string]string{
		"challenge_title": "February Steps",
		"winner_name":     "Bob",
		"metric":          "Steps",
		"value":           "150,500 steps",
	}, evt.Payload)

	res, err = f.n.Check(ctx, leaderboard("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeAlreadyNotified, res.Outcome)
	f.events.AssertNumberOfCalls(t, "Post", 1)
}

func TestCheck_ZeroTopValueMarksWithoutPosting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.agg.On("Aggregate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]float64{"a": 0, "b": 0}, nil)

	res, err := f.n.Check(ctx, leaderboard("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeNoWinner, res.Outcome)
	require.True(t, f.ledger.Has(feed.ChallengeWonKey("c1")))
	f.events.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)
}

func TestCheck_RoundBasedByWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.rounds.On("ListRounds", ctx, "c1").Return([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted, WinnerID: winnerID("b")},
		{RoundNumber: 2, Status: challenge.RoundCompleted, WinnerID: winnerID("a")},
		{RoundNumber: 3, Status: challenge.RoundCompleted, WinnerID: winnerID("b")},
		{RoundNumber: 4, Status: challenge.RoundCompleted},
	}, nil)
	f.events.On("Post", ctx, mock.Anything).Return(nil)

	res, err := f.n.Check(ctx, roundBased("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomePosted, res.Outcome)
	require.Equal(t, "b", res.WinnerID)
	require.Equal(t, "2 rounds", res.Value)
	f.agg.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheck_RoundBasedTieBreaksByMemberID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.rounds.On("ListRounds", ctx, "c1").Return([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted, WinnerID: winnerID("b")},
		{RoundNumber: 2, Status: challenge.RoundCompleted, WinnerID: winnerID("a")},
	}, nil)
	f.events.On("Post", ctx, mock.Anything).Return(nil)

	res, err := f.n.Check(ctx, roundBased("c1"))
	require.NoError(t, err)
	require.Equal(t, "a", res.WinnerID)
	require.Equal(t, "1 round", res.Value)
}

func TestCheck_RoundBasedNoWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.rounds.On("ListRounds", ctx, "c1").Return([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted},
	}, nil)

	res, err := f.n.Check(ctx, roundBased("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeNoWinner, res.Outcome)
	require.True(t, f.ledger.Has(feed.ChallengeWonKey("c1")))
}

func TestCheck_FailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.agg.On("Aggregate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]float64{"a": 10}, nil)
	f.events.On("Post", ctx, mock.Anything).Return(errors.New("feed down")).Once()

	_, err := f.n.Check(ctx, leaderboard("c1"))
	require.Error(t, err)
	require.False(t, f.ledger.Has(feed.ChallengeWonKey("c1")))

	f.events.On("Post", ctx, mock.Anything).Return(nil).Once()
	res, err := f.n.Check(ctx, leaderboard("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomePosted, res.Outcome)
}

func TestCheck_Cancelled(t *testing.T) {
	f := newFixture(after)
	ch := leaderboard("c1")
	ch.Status = challenge.StatusCancelled
	res, err := f.n.Check(context.Background(), ch)
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeCancelled, res.Outcome)
}

func TestCheckAll_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.agg.On("Aggregate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).Once()
	f.agg.On("Aggregate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]float64{"a": 5}, nil).Once()
	f.events.On("Post", ctx, mock.Anything).Return(nil)

	results := f.n.CheckAll(ctx, []challenge.Challenge{*leaderboard("c1"), *leaderboard("c2")})
	require.Len(t, results, 1)
	require.Equal(t, "c2", results[0].ChallengeID)
	require.Equal(t, completion.OutcomePosted, results[0].Outcome)
}

func TestCheck_RoundBasedWaitsForOpenRounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(after)
	f.rounds.On("ListRounds", ctx, "c1").Return([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted, WinnerID: winnerID("b")},
		{RoundNumber: 2, Status: challenge.RoundActive},
	}, nil).Once()

	res, err := f.n.Check(ctx, roundBased("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomeRoundsPending, res.Outcome)
	require.Empty(t, f.ledger.Keys())
	f.events.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)

	f.rounds.On("ListRounds", ctx, "c1").Return([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted, WinnerID: winnerID("b")},
		{RoundNumber: 2, Status: challenge.RoundCompleted, WinnerID: winnerID("a")},
	}, nil).Once()
	f.events.On("Post", ctx, mock.Anything).Return(nil).Once()

	res, err = f.n.Check(ctx, roundBased("c1"))
	require.NoError(t, err)
	require.Equal(t, completion.OutcomePosted, res.Outcome)
	require.Equal(t, "a", res.WinnerID)
}
