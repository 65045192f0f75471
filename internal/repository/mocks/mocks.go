package mocks

import (
	"context"
	"time"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/stretchr/testify/mock"
)

// ChallengeRepository is a mock for challenge.Repository and the round package's ChallengeRepository.
type ChallengeRepository struct {
	mock.Mock
}

func (m *ChallengeRepository) Create(ctx context.Context, ch *challenge.Challenge, rounds []challenge.Round) error {
	args := m.Called(ctx, ch, rounds)
	return args.Error(0)
}

func (m *ChallengeRepository) Get(ctx context.Context, id string) (*challenge.Challenge, error) {
	args := m.Called(ctx, id)
	if ch, ok := args.Get(0).(*challenge.Challenge); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChallengeRepository) ListByGroup(ctx context.Context, groupID string) ([]challenge.Challenge, error) {
	args := m.Called(ctx, groupID)
	if list, ok := args.Get(0).([]challenge.Challenge); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChallengeRepository) ListRoundBased(ctx context.Context) ([]challenge.Challenge, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]challenge.Challenge); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChallengeRepository) Update(ctx context.Context, ch *challenge.Challenge, appended []challenge.Round) error {
	args := m.Called(ctx, ch, appended)
	return args.Error(0)
}

func (m *ChallengeRepository) SetCurrentRound(ctx context.Context, id string, number int) error {
	args := m.Called(ctx, id, number)
	return args.Error(0)
}

func (m *ChallengeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RoundRepository is a mock for round.RoundRepository.
type RoundRepository struct {
	mock.Mock
}

func (m *RoundRepository) ListRounds(ctx context.Context, challengeID string) ([]challenge.Round, error) {
	args := m.Called(ctx, challengeID)
	if list, ok := args.Get(0).([]challenge.Round); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoundRepository) UpdateStatus(ctx context.Context, roundID string, status challenge.RoundStatus) error {
	args := m.Called(ctx, roundID, status)
	return args.Error(0)
}

func (m *RoundRepository) CompleteRound(ctx context.Context, roundID string, winnerID *string, participants []challenge.RoundParticipant) error {
	args := m.Called(ctx, roundID, winnerID, participants)
	return args.Error(0)
}

func (m *RoundRepository) ListParticipants(ctx context.Context, roundID string) ([]challenge.RoundParticipant, error) {
	args := m.Called(ctx, roundID)
	if list, ok := args.Get(0).([]challenge.RoundParticipant); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MemberRepository is a mock for group.Repository.
type MemberRepository struct {
	mock.Mock
}

func (m *MemberRepository) Add(ctx context.Context, member *group.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MemberRepository) List(ctx context.Context, groupID string) ([]group.Member, error) {
	args := m.Called(ctx, groupID)
	if list, ok := args.Get(0).([]group.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	args := m.Called(ctx, groupID, memberID)
	return args.Bool(0), args.Error(1)
}

// DailyStatsRepository is a mock for stats.Repository.
type DailyStatsRepository struct {
	mock.Mock
}

func (m *DailyStatsRepository) ListRange(ctx context.Context, userIDs []string, fromDay, toDay string) ([]stats.DailyRecord, error) {
	args := m.Called(ctx, userIDs, fromDay, toDay)
	if list, ok := args.Get(0).([]stats.DailyRecord); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DailyStatsRepository) Upsert(ctx context.Context, records []stats.DailyRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// EventRepository is a mock for feed.Repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Insert(ctx context.Context, evt *feed.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *EventRepository) List(ctx context.Context, groupID string, limit int) ([]feed.Event, error) {
	args := m.Called(ctx, groupID, limit)
	if list, ok := args.Get(0).([]feed.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// LedgerRepository is a mock for feed.Ledger.
type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *LedgerRepository) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// APIKeyRepository is a mock for the MCP auth key resolver.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Add(ctx context.Context, memberID, rawKey string, createdAt time.Time) error {
	args := m.Called(ctx, memberID, rawKey, createdAt)
	return args.Error(0)
}

func (m *APIKeyRepository) ResolveMember(ctx context.Context, rawKey string) (string, error) {
	args := m.Called(ctx, rawKey)
	return args.String(0), args.Error(1)
}

// EventPoster is a mock for the feed posting surface used by domain services.
type EventPoster struct {
	mock.Mock
}

func (m *EventPoster) Post(ctx context.Context, evt *feed.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *EventPoster) PostOnce(ctx context.Context, key string, evt *feed.Event) (bool, error) {
	args := m.Called(ctx, key, evt)
	return args.Bool(0), args.Error(1)
}

// Aggregator is a mock for the stats aggregation surface.
type Aggregator struct {
	mock.Mock
}

func (m *Aggregator) Aggregate(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error) {
	args := m.Called(ctx, memberIDs, metric, start, end)
	if values, ok := args.Get(0).(map[string]float64); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Aggregator) Current(ctx context.Context, memberIDs []string, metric challenge.Metric, start, end time.Time) (map[string]float64, error) {
	args := m.Called(ctx, memberIDs, metric, start, end)
	if values, ok := args.Get(0).(map[string]float64); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Aggregator) Summary(ctx context.Context, memberID string, start, end time.Time) (*stats.Totals, error) {
	args := m.Called(ctx, memberID, start, end)
	if totals, ok := args.Get(0).(*stats.Totals); ok {
		return totals, args.Error(1)
	}
	return nil, args.Error(1)
}
