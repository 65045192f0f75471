package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestRoundRepository_StatusAndCompletion(t *testing.T) {
	db := NewTestDB(t)
	challenges := NewChallengeRepository(db)
	repo := NewRoundRepository(db)
	ctx := context.Background()

	cadence := challenge.CadenceWeekly
	ch := testChallenge("c1", &cadence)
	rounds := testRounds(t, ch)
	require.NoError(t, challenges.Create(ctx, ch, rounds))

	require.NoError(t, repo.UpdateStatus(ctx, rounds[1].ID, challenge.RoundActive))
	require.Equal(t, repository.ErrNotFound, repo.UpdateStatus(ctx, "missing", challenge.RoundActive))

	winner := "bob"
	err := repo.CompleteRound(ctx, rounds[0].ID, &winner, []challenge.RoundParticipant{
		{RoundID: rounds[0].ID, UserID: "bob", Value: 900, Rank: 1},
		{RoundID: rounds[0].ID, UserID: "alice", Value: 300.5, Rank: 2},
	})
	require.NoError(t, err)

	list, err := repo.ListRounds(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, challenge.RoundCompleted, list[0].Status)
	require.Equal(t, "bob", *list[0].WinnerID)
	require.Equal(t, challenge.RoundActive, list[1].Status)
	require.Nil(t, list[1].WinnerID)

	participants, err := repo.ListParticipants(ctx, rounds[0].ID)
	require.NoError(t, err)
	require.Equal(t, []challenge.RoundParticipant{
		{RoundID: rounds[0].ID, UserID: "bob", Value: 900, Rank: 1},
		{RoundID: rounds[0].ID, UserID: "alice", Value: 300.5, Rank: 2},
	}, participants)
}

func TestRoundRepository_CompleteRoundUpserts(t *testing.T) {
	db := NewTestDB(t)
	challenges := NewChallengeRepository(db)
	repo := NewRoundRepository(db)
	ctx := context.Background()

	cadence := challenge.CadenceDaily
	ch := testChallenge("c1", &cadence)
	rounds := testRounds(t, ch)
	require.NoError(t, challenges.Create(ctx, ch, rounds))
	id := rounds[0].ID

	require.NoError(t, repo.CompleteRound(ctx, id, nil, []challenge.RoundParticipant{
		{RoundID: id, UserID: "alice", Value: 0, Rank: 1},
	}))

	winner := "alice"
	require.NoError(t, repo.CompleteRound(ctx, id, &winner, []challenge.RoundParticipant{
		{RoundID: id, UserID: "alice", Value: 50, Rank: 1},
	}))

	participants, err := repo.ListParticipants(ctx, id)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, 50.0, participants[0].Value)

	list, err := repo.ListRounds(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "alice", *list[0].WinnerID)
}

func TestRoundRepository_CompleteMissingRound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewRoundRepository(db)
	ctx := context.Background()

	err := repo.CompleteRound(ctx, "missing", nil, []challenge.RoundParticipant{{RoundID: "missing", UserID: "a", Rank: 1}})
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.CompleteRound(ctx, "missing", nil, nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
