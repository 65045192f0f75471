package feed

import "context"

// Repository persists feed events.
type Repository interface {
	Insert(ctx context.Context, evt *Event) error
	List(ctx context.Context, groupID string, limit int) ([]Event, error)
}

// Ledger records one-time side effects by key.
type Ledger interface {
	// Claim atomically records key. It returns false if key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release removes a claim so the side effect can be retried.
	Release(ctx context.Context, key string) error
}
