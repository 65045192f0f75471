// Package completion announces the overall winner of a finished challenge.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/ranking"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/pkg/logging"
)

// Outcome describes what Check did.
type Outcome string

const (
	OutcomeNotEnded        Outcome = "not_ended"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeAlreadyNotified Outcome = "already_notified"
	OutcomeNoWinner        Outcome = "no_winner"
	OutcomeRoundsPending   Outcome = "rounds_pending"
	OutcomePosted          Outcome = "posted"
)

// Result is the outcome of a completion check.
type Result struct {
	ChallengeID string  `json:"challenge_id"`
	Outcome     Outcome `json:"outcome"`
	WinnerID    string  `json:"winner_id,omitempty"`
	WinnerName  string  `json:"winner_name,omitempty"`
	Value       string  `json:"value,omitempty"`
}

// Notifier emits the one-time challenge_won event for ended challenges.
type Notifier struct {
	rounds     RoundLister
	members    MemberLister
	aggregator Aggregator
	ledger     feed.Ledger
	events     EventPoster
	clock      clock.Clock
	logger     *slog.Logger
}

// NewNotifier creates a new completion notifier.
func NewNotifier(rounds RoundLister, members MemberLister, aggregator Aggregator, ledger feed.Ledger, events EventPoster, clk clock.Clock, logger *slog.Logger) *Notifier {
	return &Notifier{
		rounds:     rounds,
		members:    members,
		aggregator: aggregator,
		ledger:     ledger,
		events:     events,
		clock:      clock.OrSystem(clk),
		logger:     logging.OrDiscard(logger),
	}
}

type winner struct {
	id    string
	name  string
	value string
}

// Check announces ch's winner once ch has ended. The ledger claim is taken
// before any work so concurrent checks announce at most once; it is released
// when the winner cannot be computed or posted so a later check retries.
// A round-based challenge is not decided until every round is completed.
func (n *Notifier) Check(ctx context.Context, ch *challenge.Challenge) (Result, error) {
	res := Result{ChallengeID: ch.ID}
	if ch.Status == challenge.StatusCancelled {
		res.Outcome = OutcomeCancelled
		return res, nil
	}
	if !ch.IsEnded(n.clock.Now()) {
		res.Outcome = OutcomeNotEnded
		return res, nil
	}

	var rounds []challenge.Round
	if ch.IsRoundBased() {
		var err error
		rounds, err = n.rounds.ListRounds(ctx, ch.ID)
		if err != nil {
			return res, fmt.Errorf("listing rounds: %w", err)
		}
		if !allCompleted(rounds) {
			n.logger.Debug("challenge ended with rounds still open", "challenge_id", ch.ID)
			res.Outcome = OutcomeRoundsPending
			return res, nil
		}
	}

	key := feed.ChallengeWonKey(ch.ID)
	claimed, err := n.ledger.Claim(ctx, key)
	if err != nil {
		return res, fmt.Errorf("claiming %q: %w", key, err)
	}
	if !claimed {
		res.Outcome = OutcomeAlreadyNotified
		return res, nil
	}

	w, err := n.determineWinner(ctx, ch, rounds)
	if err != nil {
		return res, n.release(ctx, key, err)
	}
	if w == nil {
		n.logger.Info("challenge ended without a winner", "challenge_id", ch.ID)
		res.Outcome = OutcomeNoWinner
		return res, nil
	}

	evt := &feed.Event{
		GroupID: ch.GroupID,
		UserID:  w.id,
		Type:    feed.TypeChallengeWon,
		Payload: map[string]string{
			"challenge_title": ch.Title,
			"winner_name":     w.name,
			"metric":          ch.Metric.Label(),
			"value":           w.value,
		},
	}
	if err := n.events.Post(ctx, evt); err != nil {
		return res, n.release(ctx, key, err)
	}

	n.logger.Info("challenge winner announced", "challenge_id", ch.ID, "winner_id", w.id)
	res.Outcome = OutcomePosted
	res.WinnerID = w.id
	res.WinnerName = w.name
	res.Value = w.value
	return res, nil
}

// CheckAll checks every challenge, logging failures without stopping.
func (n *Notifier) CheckAll(ctx context.Context, challenges []challenge.Challenge) []Result {
	results := make([]Result, 0, len(challenges))
	for i := range challenges {
		res, err := n.Check(ctx, &challenges[i])
		if err != nil {
			n.logger.Error("completion check failed", "challenge_id", challenges[i].ID, "error", err)
			continue
		}
		results = append(results, res)
	}
	return results
}

func allCompleted(rounds []challenge.Round) bool {
	if len(rounds) == 0 {
		return false
	}
	for i := range rounds {
		if rounds[i].Status != challenge.RoundCompleted {
			return false
		}
	}
	return true
}

func (n *Notifier) determineWinner(ctx context.Context, ch *challenge.Challenge, rounds []challenge.Round) (*winner, error) {
	members, err := n.members.List(ctx, ch.GroupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	names := group.Names(members)

	if ch.IsRoundBased() {
		wins := round.TallyWins(rounds, names)
		if len(wins) == 0 {
			return nil, nil
		}
		top := wins[0]
		return &winner{id: top.MemberID, name: top.DisplayName, value: roundsLabel(top.Wins)}, nil
	}

	values, err := n.aggregator.Aggregate(ctx, group.IDs(members), ch.Metric, ch.StartDate, *ch.EndDate)
	if err != nil {
		return nil, fmt.Errorf("aggregating: %w", err)
	}
	leaders := ranking.Leaders(ranking.Rank(values, ch.Kind, ch.TargetValue))
	if len(leaders) == 0 {
		return nil, nil
	}
	top := leaders[0]
	return &winner{
		id:    top.MemberID,
		name:  group.DisplayName(names, top.MemberID),
		value: ch.Metric.FormatValue(top.Value),
	}, nil
}

func (n *Notifier) release(ctx context.Context, key string, cause error) error {
	if err := n.ledger.Release(ctx, key); err != nil {
		return errors.Join(cause, fmt.Errorf("releasing %q: %w", key, err))
	}
	return cause
}

func roundsLabel(wins int) string {
	if wins == 1 {
		return "1 round"
	}
	return strconv.Itoa(wins) + " rounds"
}
