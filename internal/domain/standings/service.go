// Package standings computes live leaderboards for challenges.
package standings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/ranking"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/pkg/logging"
)

// ErrNotParticipant indicates the member is not in the challenge's group.
var ErrNotParticipant = errors.New("member is not a participant")

// ChallengeGetter reads challenges.
type ChallengeGetter interface {
	Get(ctx context.Context, id string) (*challenge.Challenge, error)
}

// MemberLister lists a group's members.
type MemberLister interface {
	List(ctx context.Context, groupID string) ([]group.Member, error)
}

// Aggregator computes current and per-member totals.
type Aggregator interface {
	Current(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error)
	Summary(ctx context.Context, memberID string, start, end time.Time) (*stats.Totals, error)
}

// Leaderboard is a challenge's ranking as of a point in time.
type Leaderboard struct {
	Challenge *challenge.Challenge `json:"challenge"`
	AsOf      time.Time            `json:"as_of"`
	Standings []ranking.Standing   `json:"standings"`
}

// Service computes challenge leaderboards.
type Service struct {
	challenges ChallengeGetter
	members    MemberLister
	aggregator Aggregator
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService creates a new standings service.
func NewService(challenges ChallengeGetter, members MemberLister, aggregator Aggregator, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		challenges: challenges,
		members:    members,
		aggregator: aggregator,
		clock:      clock.OrSystem(clk),
		logger:     logging.OrDiscard(logger),
	}
}

// Current ranks the challenge's group over [start, min(now, end)].
func (s *Service) Current(ctx context.Context, challengeID string) (*Leaderboard, error) {
	ch, err := s.get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, ch.GroupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	now := s.clock.Now()
	values, err := s.aggregator.Current(ctx, group.IDs(members), ch.Metric, ch.StartDate, windowEnd(ch, now))
	if err != nil {
		return nil, fmt.Errorf("aggregating standings: %w", err)
	}

	return &Leaderboard{
		Challenge: ch,
		AsOf:      now,
		Standings: ranking.WithNames(ranking.Rank(values, ch.Kind, ch.TargetValue), group.Names(members)),
	}, nil
}

// MemberSummary returns a member's totals for every metric over the challenge window.
func (s *Service) MemberSummary(ctx context.Context, challengeID, memberID string) (*stats.Totals, error) {
	ch, err := s.get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, ch.GroupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	if _, ok := group.Names(members)[memberID]; !ok {
		return nil, ErrNotParticipant
	}

	now := s.clock.Now()
	end := windowEnd(ch, now)
	if end.After(now) {
		end = now
	}
	if ch.StartDate.After(end) {
		return &stats.Totals{MemberID: memberID}, nil
	}
	return s.aggregator.Summary(ctx, memberID, ch.StartDate, end)
}

func (s *Service) get(ctx context.Context, id string) (*challenge.Challenge, error) {
	ch, err := s.challenges.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, challenge.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("getting challenge: %w", err)
	}
	return ch, nil
}

// windowEnd is the challenge end, or now for open-ended challenges.
func windowEnd(ch *challenge.Challenge, now time.Time) time.Time {
	if ch.EndDate != nil {
		return *ch.EndDate
	}
	return now
}
