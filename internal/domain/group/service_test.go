package group_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGroupService_Add(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	repo := &mocks.MemberRepository{}
	repo.On("Add", ctx, mock.AnythingOfType("*group.Member")).Return(nil)

	svc := group.NewService(repo, clock.NewFixed(now), nil)
	m, err := svc.Add(ctx, group.AddRequest{ID: "alice", GroupID: "g1", DisplayName: " Alice "})
	require.NoError(t, err)
	require.Equal(t, "alice", m.ID)
	require.Equal(t, "Alice", m.DisplayName)
	require.Equal(t, now, m.CreatedAt)
}

func TestGroupService_AddValidation(t *testing.T) {
	svc := group.NewService(&mocks.MemberRepository{}, nil, nil)
	_, err := svc.Add(context.Background(), group.AddRequest{GroupID: "g1"})
	require.ErrorIs(t, err, group.ErrInvalidInput)
}

func TestGroupService_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.MemberRepository{}
	repo.On("Add", ctx, mock.Anything).Return(repository.ErrConflict)

	svc := group.NewService(repo, nil, nil)
	_, err := svc.Add(ctx, group.AddRequest{ID: "alice", GroupID: "g1", DisplayName: "Alice"})
	require.ErrorIs(t, err, group.ErrMemberExists)
}

func TestNames(t *testing.T) {
	members := []group.Member{{ID: "a", DisplayName: "Alice"}, {ID: "b", DisplayName: "Bob"}}
	names := group.Names(members)
	require.Equal(t, "Alice", group.DisplayName(names, "a"))
	require.Equal(t, "zed", group.DisplayName(names, "zed"))
	require.Equal(t, []string{"a", "b"}, group.IDs(members))
}
