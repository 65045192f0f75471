package group

import "context"

// Repository provides persistence for group members.
type Repository interface {
	Add(ctx context.Context, m *Member) error
	List(ctx context.Context, groupID string) ([]Member, error)
	IsMember(ctx context.Context, groupID, memberID string) (bool, error)
}
