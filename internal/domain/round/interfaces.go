package round

import (
	"context"
	"time"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
)

// ChallengeRepository reads challenges and records their current round.
type ChallengeRepository interface {
	Get(ctx context.Context, id string) (*challenge.Challenge, error)
	SetCurrentRound(ctx context.Context, id string, number int) error
}

// RoundRepository provides persistence for rounds and participant snapshots.
type RoundRepository interface {
	ListRounds(ctx context.Context, challengeID string) ([]challenge.Round, error)
	UpdateStatus(ctx context.Context, roundID string, status challenge.RoundStatus) error
	// CompleteRound upserts participants, sets the winner and marks the round
	// completed in one transaction.
	CompleteRound(ctx context.Context, roundID string, winnerID *string, participants []challenge.RoundParticipant) error
	ListParticipants(ctx context.Context, roundID string) ([]challenge.RoundParticipant, error)
}

// MemberRepository lists a group's members.
type MemberRepository interface {
	List(ctx context.Context, groupID string) ([]group.Member, error)
}

// Aggregator totals member metrics over a window.
type Aggregator interface {
	Aggregate(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error)
	Current(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error)
}

// EventPoster posts one-time feed events.
type EventPoster interface {
	PostOnce(ctx context.Context, key string, evt *feed.Event) (bool, error)
}
