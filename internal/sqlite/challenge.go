package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/repository"
)

// ChallengeRepository implements challenge.Repository for SQLite
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new ChallengeRepository
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

const challengeColumns = `
	id, group_id, creator_id, title, description, kind, metric, target_value,
	start_date, end_date, status, round_cadence, current_round_number, total_rounds, created_at
`

// Create inserts a challenge and its initial rounds in one transaction
func (r *ChallengeRepository) Create(ctx context.Context, ch *challenge.Challenge, rounds []challenge.Round) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO challenges (` + challengeColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			ch.ID,
			ch.GroupID,
			ch.CreatorID,
			ch.Title,
			ch.Description,
			string(ch.Kind),
			string(ch.Metric),
			ch.TargetValue,
			formatTime(ch.StartDate),
			formatTimePtr(ch.EndDate),
			string(ch.Status),
			cadenceValue(ch.RoundCadence),
			nullInt(ch.CurrentRoundNumber),
			nullInt(ch.TotalRounds),
			formatTime(ch.CreatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		return insertRounds(ctx, tx, rounds)
	})
}

// Get retrieves a challenge by ID
func (r *ChallengeRepository) Get(ctx context.Context, id string) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = ?`

	ch, err := scanChallenge(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return ch, nil
}

// ListByGroup returns a group's challenges, newest first
func (r *ChallengeRepository) ListByGroup(ctx context.Context, groupID string) ([]challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE group_id = ? ORDER BY created_at DESC, id`
	return r.list(ctx, query, groupID)
}

// ListRoundBased returns every round-based challenge that is not cancelled
func (r *ChallengeRepository) ListRoundBased(ctx context.Context) ([]challenge.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + ` FROM challenges
		WHERE round_cadence IS NOT NULL AND status != 'cancelled'
		ORDER BY created_at, id
	`
	return r.list(ctx, query)
}

// Update stores mutable challenge fields and appends rounds in one transaction
func (r *ChallengeRepository) Update(ctx context.Context, ch *challenge.Challenge, appended []challenge.Round) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE challenges
			SET title = ?, description = ?, target_value = ?, end_date = ?, status = ?,
				current_round_number = ?, total_rounds = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			ch.Title,
			ch.Description,
			ch.TargetValue,
			formatTimePtr(ch.EndDate),
			string(ch.Status),
			nullInt(ch.CurrentRoundNumber),
			nullInt(ch.TotalRounds),
			ch.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update challenge: %w", err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}
		return insertRounds(ctx, tx, appended)
	})
}

// SetCurrentRound records the challenge's current round number
func (r *ChallengeRepository) SetCurrentRound(ctx context.Context, id string, number int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE challenges SET current_round_number = ? WHERE id = ?`, number, id)
	if err != nil {
		return fmt.Errorf("failed to set current round: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a challenge; rounds and participant snapshots cascade
func (r *ChallengeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return requireAffected(result)
}

func (r *ChallengeRepository) list(ctx context.Context, query string, args ...any) ([]challenge.Challenge, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	list := []challenge.Challenge{}
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		list = append(list, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenge rows: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row scanner) (*challenge.Challenge, error) {
	var (
		ch          challenge.Challenge
		description sql.NullString
		kind        string
		metric      string
		status      string
		start       string
		end         sql.NullString
		cadence     sql.NullString
		current     sql.NullInt64
		total       sql.NullInt64
		createdAt   string
	)
	err := row.Scan(
		&ch.ID,
		&ch.GroupID,
		&ch.CreatorID,
		&ch.Title,
		&description,
		&kind,
		&metric,
		&ch.TargetValue,
		&start,
		&end,
		&status,
		&cadence,
		&current,
		&total,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	ch.Description = description.String
	ch.Kind = challenge.Kind(kind)
	ch.Metric = challenge.Metric(metric)
	ch.Status = challenge.Status(status)
	if cadence.Valid {
		c := challenge.Cadence(cadence.String)
		ch.RoundCadence = &c
	}
	ch.CurrentRoundNumber = intPtr(current)
	ch.TotalRounds = intPtr(total)

	if ch.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if ch.EndDate, err = parseTimePtr(end); err != nil {
		return nil, err
	}
	if ch.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &ch, nil
}

func cadenceValue(c *challenge.Cadence) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
