package challenge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/pkg/logging"
)

// Service handles challenge operations.
type Service struct {
	repo    Repository
	rounds  RoundLister
	members MemberChecker
	events  EventPoster
	clock   clock.Clock
	loc     *time.Location
	logger  *slog.Logger
}

// NewService creates a new challenge service. Round boundaries are computed
// on the calendar of loc.
func NewService(repo Repository, rounds RoundLister, members MemberChecker, events EventPoster, clk clock.Clock, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:    repo,
		rounds:  rounds,
		members: members,
		events:  events,
		clock:   clock.OrSystem(clk),
		loc:     loc,
		logger:  logging.OrDiscard(logger),
	}
}

// CreateRequest defines challenge creation inputs.
type CreateRequest struct {
	GroupID      string
	CreatorID    string
	Title        string
	Description  string
	Kind         Kind
	Metric       Metric
	TargetValue  int
	StartDate    time.Time
	EndDate      *time.Time
	RoundCadence *Cadence
}

// UpdateRequest defines mutable challenge fields. Nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string
	Description *string
	TargetValue *int
	EndDate     *time.Time
}

// Create validates and stores a challenge. Round-based challenges get their
// full round schedule materialized in the same write.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Challenge, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, req.GroupID, req.CreatorID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ch := &Challenge{
		ID:           uuid.NewString(),
		GroupID:      req.GroupID,
		CreatorID:    req.CreatorID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Kind:         req.Kind,
		Metric:       req.Metric,
		TargetValue:  req.TargetValue,
		StartDate:    req.StartDate.In(s.loc),
		EndDate:      s.inLoc(req.EndDate),
		Status:       StatusActive,
		RoundCadence: req.RoundCadence,
		CreatedAt:    now,
	}

	var rounds []Round
	if ch.IsRoundBased() {
		windows, err := GenerateRounds(ch.StartDate, ch.EndDate, *ch.RoundCadence, now)
		if err != nil {
			return nil, err
		}
		rounds = s.materialize(ch.ID, windows, now)
		total := len(rounds)
		current := CurrentRoundNumber(rounds)
		ch.TotalRounds = &total
		ch.CurrentRoundNumber = &current
	}

	if err := s.repo.Create(ctx, ch, rounds); err != nil {
		return nil, fmt.Errorf("creating challenge: %w", err)
	}

	s.logger.Info("challenge created",
		"challenge_id", ch.ID,
		"group_id", ch.GroupID,
		"kind", ch.Kind,
		"metric", ch.Metric,
		"rounds", len(rounds),
	)
	s.announce(ctx, ch, feed.TypeChallengeCreated)
	return ch, nil
}

// Update applies a creator's edits. Moving the end date of a round-based
// challenge later schedules the additional rounds.
func (s *Service) Update(ctx context.Context, actorID, id string, req UpdateRequest) (*Challenge, error) {
	ch, err := s.getOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		ch.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		ch.Description = *req.Description
	}
	if req.TargetValue != nil {
		if err := validateTarget(ch.Kind, *req.TargetValue); err != nil {
			return nil, err
		}
		ch.TargetValue = *req.TargetValue
	}

	var appended []Round
	if req.EndDate != nil {
		newEnd := req.EndDate.In(s.loc)
		if err := validateEnd(ch.StartDate, &newEnd); err != nil {
			return nil, err
		}
		if ch.IsRoundBased() {
			appended, err = s.extend(ctx, ch, newEnd)
			if err != nil {
				return nil, err
			}
		}
		ch.EndDate = &newEnd
	}

	if err := s.repo.Update(ctx, ch, appended); err != nil {
		return nil, fmt.Errorf("updating challenge: %w", err)
	}

	s.logger.Info("challenge updated", "challenge_id", ch.ID, "rounds_added", len(appended))
	s.announce(ctx, ch, feed.TypeChallengeUpdated)
	return ch, nil
}

// extend schedules rounds for an end date moved later. Shortening a round-based
// challenge would rewrite materialized rounds and is rejected.
func (s *Service) extend(ctx context.Context, ch *Challenge, newEnd time.Time) ([]Round, error) {
	if ch.EndDate != nil && newEnd.Before(*ch.EndDate) {
		return nil, fmt.Errorf("%w: end date of a round-based challenge can only move later", ErrInvalidInput)
	}

	existing, err := s.rounds.ListRounds(ctx, ch.ID)
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	last := existing[len(existing)-1].Window()
	last.End = last.End.In(s.loc)
	windows, err := ExtendRounds(last, ch.EndDate, newEnd, *ch.RoundCadence, s.clock.Now())
	if err != nil {
		return nil, err
	}

	appended := s.materialize(ch.ID, windows, s.clock.Now())
	total := len(existing) + len(appended)
	ch.TotalRounds = &total
	return appended, nil
}

// Cancel marks a challenge cancelled. Reconciliation skips cancelled challenges.
func (s *Service) Cancel(ctx context.Context, actorID, id string) (*Challenge, error) {
	ch, err := s.getOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	ch.Status = StatusCancelled
	if err := s.repo.Update(ctx, ch, nil); err != nil {
		return nil, fmt.Errorf("cancelling challenge: %w", err)
	}
	s.logger.Info("challenge cancelled", "challenge_id", ch.ID)
	return ch, nil
}

// Delete removes a challenge along with its rounds and participant snapshots.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.getOwned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("deleting challenge: %w", err)
	}
	s.logger.Info("challenge deleted", "challenge_id", id)
	return nil
}

// Get fetches a challenge by ID.
func (s *Service) Get(ctx context.Context, id string) (*Challenge, error) {
	ch, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("getting challenge: %w", err)
	}
	return ch, nil
}

// List returns a group's challenges, newest first.
func (s *Service) List(ctx context.Context, groupID string) ([]Challenge, error) {
	list, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing challenges: %w", err)
	}
	return list, nil
}

// ListRoundBased returns every round-based challenge that is not cancelled.
func (s *Service) ListRoundBased(ctx context.Context) ([]Challenge, error) {
	list, err := s.repo.ListRoundBased(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing round-based challenges: %w", err)
	}
	return list, nil
}

// Preview computes the round schedule a challenge would get without storing it.
func (s *Service) Preview(start time.Time, end *time.Time, cadence Cadence) ([]RoundWindow, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}
	if err := validateEnd(start, end); err != nil {
		return nil, err
	}
	return GenerateRounds(start.In(s.loc), s.inLoc(end), cadence, s.clock.Now())
}

func (s *Service) getOwned(ctx context.Context, actorID, id string) (*Challenge, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.CreatorID != actorID {
		return nil, ErrNotCreator
	}
	return ch, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, memberID string) error {
	ok, err := s.members.IsMember(ctx, groupID, memberID)
	if err != nil {
		return fmt.Errorf("checking membership: %w", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func (s *Service) materialize(challengeID string, windows []RoundWindow, now time.Time) []Round {
	rounds := make([]Round, 0, len(windows))
	for _, w := range windows {
		rounds = append(rounds, Round{
			ID:          uuid.NewString(),
			ChallengeID: challengeID,
			RoundNumber: w.Number,
			StartDate:   w.Start,
			EndDate:     w.End,
			Status:      w.Status,
			CreatedAt:   now,
		})
	}
	return rounds
}

// announce posts a created/updated event. Feed failures never fail the write.
func (s *Service) announce(ctx context.Context, ch *Challenge, typ feed.EventType) {
	evt := &feed.Event{
		GroupID: ch.GroupID,
		UserID:  ch.CreatorID,
		Type:    typ,
		Payload: map[string]string{
			"title":  ch.Title,
			"metric": ch.Metric.Label(),
			"goal":   Goal(ch),
		},
	}
	if err := s.events.Post(ctx, evt); err != nil {
		s.logger.Warn("failed to post challenge event", "challenge_id", ch.ID, "type", typ, "error", err)
	}
}

func (s *Service) inLoc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(s.loc)
	return &v
}

// Goal describes what a challenge asks of its members, e.g. "10,000 steps".
func Goal(ch *Challenge) string {
	if ch.Kind.UsesTarget() {
		return ch.Metric.FormatValue(float64(ch.TargetValue))
	}
	return "Most " + ch.Metric.Label()
}
