package completion

import (
	"context"
	"time"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
)

// RoundLister reads a challenge's rounds.
type RoundLister interface {
	ListRounds(ctx context.Context, challengeID string) ([]challenge.Round, error)
}

// MemberLister lists a group's members.
type MemberLister interface {
	List(ctx context.Context, groupID string) ([]group.Member, error)
}

// Aggregator totals member metrics over a historical window.
type Aggregator interface {
	Aggregate(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error)
}

// EventPoster posts feed events.
type EventPoster interface {
	Post(ctx context.Context, evt *feed.Event) error
}
