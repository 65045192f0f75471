package stats

import "context"

// Repository reads and writes daily records. Days are YYYY-MM-DD and inclusive.
type Repository interface {
	ListRange(ctx context.Context, userIDs []string, fromDay, toDay string) ([]DailyRecord, error)
	Upsert(ctx context.Context, records []DailyRecord) error
}
