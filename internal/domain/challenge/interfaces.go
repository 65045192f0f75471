package challenge

import (
	"context"

	"github.com/rpggio/roundup/internal/domain/feed"
)

// Repository provides persistence for challenges and their round schedule.
type Repository interface {
	// Create stores ch and its initial rounds atomically.
	Create(ctx context.Context, ch *Challenge, rounds []Round) error
	Get(ctx context.Context, id string) (*Challenge, error)
	ListByGroup(ctx context.Context, groupID string) ([]Challenge, error)
	ListRoundBased(ctx context.Context) ([]Challenge, error)
	// Update stores ch and appends any newly scheduled rounds atomically.
	Update(ctx context.Context, ch *Challenge, appended []Round) error
	SetCurrentRound(ctx context.Context, id string, number int) error
	Delete(ctx context.Context, id string) error
}

// RoundLister reads a challenge's rounds in ascending round number.
type RoundLister interface {
	ListRounds(ctx context.Context, challengeID string) ([]Round, error)
}

// MemberChecker verifies group membership.
type MemberChecker interface {
	IsMember(ctx context.Context, groupID, memberID string) (bool, error)
}

// EventPoster posts social feed events.
type EventPoster interface {
	Post(ctx context.Context, evt *feed.Event) error
}
