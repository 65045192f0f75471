package stats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/pkg/logging"
)

// Service imports daily records.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new stats service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrDiscard(logger)}
}

// Import validates and upserts records keyed by (user, date). It returns the
// number of records written.
func (s *Service) Import(ctx context.Context, records []DailyRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for i, rec := range records {
		if err := ValidateRecord(rec); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upserting daily records: %w", err)
	}
	s.logger.Info("daily records imported", "count", len(records))
	return len(records), nil
}

// ValidateRecord checks a record's key and counters.
func ValidateRecord(rec DailyRecord) error {
	if strings.TrimSpace(rec.UserID) == "" {
		return ErrInvalidRecord
	}
	if _, err := time.Parse(challenge.DayLayout, rec.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, rec.Date)
	}
	if rec.Steps < 0 || rec.Calories < 0 || rec.Flights < 0 || rec.Distance < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidRecord)
	}
	if intOrZero(rec.ExerciseMinutes) < 0 || intOrZero(rec.WorkoutsCount) < 0 {
		return fmt.Errorf("%w: negative counter", ErrInvalidRecord)
	}
	return nil
}
