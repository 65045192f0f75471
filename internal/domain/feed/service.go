package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/metrics"
	"github.com/rpggio/roundup/pkg/logging"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service posts and lists feed events.
type Service struct {
	repo    Repository
	ledger  Ledger
	clock   clock.Clock
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService creates a new feed service.
func NewService(repo Repository, ledger Ledger, clk clock.Clock, rec *metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		ledger:  ledger,
		clock:   clock.OrSystem(clk),
		metrics: rec,
		logger:  logging.OrDiscard(logger),
	}
}

// Post inserts evt, assigning its ID and timestamp.
func (s *Service) Post(ctx context.Context, evt *Event) error {
	if evt == nil || strings.TrimSpace(evt.GroupID) == "" || strings.TrimSpace(evt.UserID) == "" || evt.Type == "" {
		return ErrInvalidEvent
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = s.clock.Now()
	}
	if evt.Payload == nil {
		evt.Payload = map[string]string{}
	}

	if err := s.repo.Insert(ctx, evt); err != nil {
		return fmt.Errorf("posting %s event: %w", evt.Type, err)
	}
	s.metrics.EventPosted(string(evt.Type))
	s.logger.Debug("feed event posted", "type", evt.Type, "group_id", evt.GroupID, "user_id", evt.UserID)
	return nil
}

// PostOnce posts evt unless key has already been claimed. It reports whether the
// event was posted. A failed post releases the claim so a later pass can retry.
func (s *Service) PostOnce(ctx context.Context, key string, evt *Event) (bool, error) {
	claimed, err := s.ledger.Claim(ctx, key)
	if err != nil {
		return false, fmt.Errorf("claiming %q: %w", key, err)
	}
	if !claimed {
		s.metrics.EventDeduplicated(string(evt.Type))
		return false, nil
	}

	if err := s.Post(ctx, evt); err != nil {
		if relErr := s.ledger.Release(ctx, key); relErr != nil {
			return false, errors.Join(err, fmt.Errorf("releasing %q: %w", key, relErr))
		}
		return false, err
	}
	return true, nil
}

// List returns the most recent events for a group, newest first.
func (s *Service) List(ctx context.Context, groupID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	events, err := s.repo.List(ctx, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing feed: %w", err)
	}
	return events, nil
}
