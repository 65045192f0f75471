package round

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/ranking"
	"github.com/rpggio/roundup/internal/metrics"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/pkg/logging"
)

// Service reconciles round status against the clock.
type Service struct {
	challenges ChallengeRepository
	rounds     RoundRepository
	members    MemberRepository
	aggregator Aggregator
	events     EventPoster
	clock      clock.Clock
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

// NewService creates a new round lifecycle service.
func NewService(
	challenges ChallengeRepository,
	rounds RoundRepository,
	members MemberRepository,
	aggregator Aggregator,
	events EventPoster,
	clk clock.Clock,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		challenges: challenges,
		rounds:     rounds,
		members:    members,
		aggregator: aggregator,
		events:     events,
		clock:      clock.OrSystem(clk),
		metrics:    rec,
		logger:     logging.OrDiscard(logger),
	}
}

// Reconcile moves each round of a challenge forward to the state the clock
// implies, completing elapsed rounds, and returns the refreshed overview.
// A failure on one round is logged and does not stop the others.
func (s *Service) Reconcile(ctx context.Context, challengeID string) (*Overview, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveReconcile(time.Since(started)) }()

	ch, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, ch.GroupID)
	if err != nil {
		s.metrics.ReconcileFailure("members")
		return nil, fmt.Errorf("listing members: %w", err)
	}
	rounds, err := s.listRounds(ctx, ch.ID)
	if err != nil {
		return nil, err
	}

	if ch.Status != challenge.StatusCancelled {
		now := s.clock.Now()
		names := group.Names(members)
		ids := group.IDs(members)
		for i := range rounds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.advance(ctx, ch, &rounds[i], ids, names, now)
		}

		rounds, err = s.listRounds(ctx, ch.ID)
		if err != nil {
			return nil, err
		}

		current := challenge.CurrentRoundNumber(rounds)
		if ch.CurrentRoundNumber == nil || *ch.CurrentRoundNumber != current {
			if err := s.challenges.SetCurrentRound(ctx, ch.ID, current); err != nil {
				s.metrics.ReconcileFailure("current_round")
				s.logger.Warn("failed to update current round", "challenge_id", ch.ID, "error", err)
			} else {
				ch.CurrentRoundNumber = &current
			}
		}
	}

	return s.overview(ctx, ch, rounds, members), nil
}

// Overview returns the challenge's rounds and standings without changing them.
func (s *Service) Overview(ctx context.Context, challengeID string) (*Overview, error) {
	ch, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, ch.GroupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	rounds, err := s.listRounds(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, ch, rounds, members), nil
}

// Results returns the participant snapshot of one round.
func (s *Service) Results(ctx context.Context, challengeID string, number int) (*Results, error) {
	ch, err := s.getChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.listRounds(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(rounds, func(r challenge.Round) bool { return r.RoundNumber == number })
	if idx < 0 {
		return nil, ErrRoundNotFound
	}
	rnd := rounds[idx]

	participants, err := s.rounds.ListParticipants(ctx, rnd.ID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	members, err := s.members.List(ctx, ch.GroupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	names := group.Names(members)

	slices.SortFunc(participants, func(a, b challenge.RoundParticipant) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
	standings := make([]ranking.Standing, 0, len(participants))
	for _, p := range participants {
		standings = append(standings, ranking.Standing{
			MemberID:    p.UserID,
			DisplayName: group.DisplayName(names, p.UserID),
			Value:       p.Value,
			Rank:        p.Rank,
		})
	}
	return &Results{Round: rnd, Standings: standings}, nil
}

// advance applies the pending->active and active->completed transitions to r.
func (s *Service) advance(ctx context.Context, ch *challenge.Challenge, r *challenge.Round, ids []string, names map[string]string, now time.Time) {
	if r.Status == challenge.RoundPending && !now.Before(r.StartDate) {
		if err := s.rounds.UpdateStatus(ctx, r.ID, challenge.RoundActive); err != nil {
			s.metrics.ReconcileFailure("activate")
			s.logger.Error("failed to activate round", "challenge_id", ch.ID, "round", r.RoundNumber, "error", err)
			return
		}
		r.Status = challenge.RoundActive
		s.logger.Debug("round activated", "challenge_id", ch.ID, "round", r.RoundNumber)
	}

	elapsed := r.Status == challenge.RoundActive && now.After(r.EndDate)
	repair := r.Status == challenge.RoundCompleted && r.WinnerID == nil
	if !elapsed && !repair {
		return
	}
	if err := s.complete(ctx, ch, r, ids, names); err != nil {
		s.logger.Error("failed to complete round", "challenge_id", ch.ID, "round", r.RoundNumber, "error", err)
	}
}

// complete snapshots the round's participants and winner, then announces each
// tied leader once.
func (s *Service) complete(ctx context.Context, ch *challenge.Challenge, r *challenge.Round, ids []string, names map[string]string) error {
	values, err := s.aggregator.Aggregate(ctx, ids, ch.Metric, r.StartDate, r.EndDate)
	if err != nil {
		s.metrics.ReconcileFailure("aggregate")
		return fmt.Errorf("aggregating round %d: %w", r.RoundNumber, err)
	}

	standings := ranking.Rank(values, ch.Kind, ch.TargetValue)
	participants := make([]challenge.RoundParticipant, 0, len(standings))
	for _, st := range standings {
		participants = append(participants, challenge.RoundParticipant{
			RoundID: r.ID,
			UserID:  st.MemberID,
			Value:   st.Value,
			Rank:    st.Rank,
		})
	}

	leaders := ranking.Leaders(standings)
	var winnerID *string
	if len(leaders) > 0 {
		id := leaders[0].MemberID
		winnerID = &id
	}

	if err := s.rounds.CompleteRound(ctx, r.ID, winnerID, participants); err != nil {
		s.metrics.ReconcileFailure("complete")
		return fmt.Errorf("completing round %d: %w", r.RoundNumber, err)
	}
	r.Status = challenge.RoundCompleted
	r.WinnerID = winnerID
	s.metrics.RoundCompleted()
	s.logger.Info("round completed",
		"challenge_id", ch.ID,
		"round", r.RoundNumber,
		"participants", len(participants),
		"leaders", len(leaders),
	)

	for _, leader := range leaders {
		evt := &feed.Event{
			GroupID: ch.GroupID,
			UserID:  leader.MemberID,
			Type:    feed.TypeRoundWinner,
			Payload: map[string]string{
				"challenge_title": ch.Title,
				"round_number":    strconv.Itoa(r.RoundNumber),
				"winner_name":     group.DisplayName(names, leader.MemberID),
			},
		}
		if _, err := s.events.PostOnce(ctx, feed.RoundWinnerKey(r.ID, leader.MemberID), evt); err != nil {
			s.metrics.ReconcileFailure("post")
			s.logger.Warn("failed to post round winner", "challenge_id", ch.ID, "round", r.RoundNumber, "member_id", leader.MemberID, "error", err)
		}
	}
	return nil
}

func (s *Service) overview(ctx context.Context, ch *challenge.Challenge, rounds []challenge.Round, members []group.Member) *Overview {
	names := group.Names(members)
	ov := &Overview{
		Challenge:     ch,
		Rounds:        rounds,
		Wins:          TallyWins(rounds, names),
		LiveStandings: []ranking.Standing{},
	}

	idx := slices.IndexFunc(rounds, func(r challenge.Round) bool { return r.Status == challenge.RoundActive })
	if idx < 0 {
		return ov
	}
	active := rounds[idx]
	ov.ActiveRound = &active

	values, err := s.aggregator.Current(ctx, group.IDs(members), ch.Metric, active.StartDate, active.EndDate)
	if err != nil {
		s.logger.Warn("failed to load live standings", "challenge_id", ch.ID, "round", active.RoundNumber, "error", err)
		return ov
	}
	ov.LiveStandings = ranking.WithNames(ranking.Rank(values, ch.Kind, ch.TargetValue), names)
	return ov
}

func (s *Service) getChallenge(ctx context.Context, id string) (*challenge.Challenge, error) {
	ch, err := s.challenges.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, challenge.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("getting challenge: %w", err)
	}
	if !ch.IsRoundBased() {
		return nil, challenge.ErrNotRoundBased
	}
	return ch, nil
}

func (s *Service) listRounds(ctx context.Context, challengeID string) ([]challenge.Round, error) {
	rounds, err := s.rounds.ListRounds(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}
	slices.SortFunc(rounds, func(a, b challenge.Round) int {
		return cmp.Compare(a.RoundNumber, b.RoundNumber)
	})
	return rounds, nil
}
