package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/roundup/internal/domain/stats"
)

// DailyStatsRepository implements stats.Repository for SQLite
type DailyStatsRepository struct {
	db *DB
}

// NewDailyStatsRepository creates a new DailyStatsRepository
func NewDailyStatsRepository(db *DB) *DailyStatsRepository {
	return &DailyStatsRepository{db: db}
}

// ListRange returns records for the given users between two inclusive days
func (r *DailyStatsRepository) ListRange(ctx context.Context, userIDs []string, fromDay, toDay string) ([]stats.DailyRecord, error) {
	if len(userIDs) == 0 {
		return []stats.DailyRecord{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")
	query := `
		SELECT user_id, date, steps, calories, flights, distance, exercise_minutes, workouts_count
		FROM daily_stats
		WHERE user_id IN (` + placeholders + `) AND date >= ? AND date <= ?
		ORDER BY date, user_id
	`
	args := make([]any, 0, len(userIDs)+2)
	for _, id := range userIDs {
		args = append(args, id)
	}
	args = append(args, fromDay, toDay)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	defer rows.Close()

	records := []stats.DailyRecord{}
	for rows.Next() {
		var (
			rec      stats.DailyRecord
			exercise sql.NullInt64
			workouts sql.NullInt64
		)
		err := rows.Scan(&rec.UserID, &rec.Date, &rec.Steps, &rec.Calories, &rec.Flights, &rec.Distance, &exercise, &workouts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		rec.ExerciseMinutes = intPtr(exercise)
		rec.WorkoutsCount = intPtr(workouts)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats rows: %w", err)
	}
	return records, nil
}

// Upsert writes records keyed by (user_id, date) in one transaction
func (r *DailyStatsRepository) Upsert(ctx context.Context, records []stats.DailyRecord) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_stats (user_id, date, steps, calories, flights, distance, exercise_minutes, workouts_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, date) DO UPDATE SET
				steps = excluded.steps,
				calories = excluded.calories,
				flights = excluded.flights,
				distance = excluded.distance,
				exercise_minutes = excluded.exercise_minutes,
				workouts_count = excluded.workouts_count
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare daily stats upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			_, err := stmt.ExecContext(ctx,
				rec.UserID,
				rec.Date,
				rec.Steps,
				rec.Calories,
				rec.Flights,
				rec.Distance,
				nullInt(rec.ExerciseMinutes),
				nullInt(rec.WorkoutsCount),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert daily stats for %s on %s: %w", rec.UserID, rec.Date, err)
			}
		}
		return nil
	})
}
