package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/repository"
)

// RoundRepository implements round persistence for SQLite
type RoundRepository struct {
	db *DB
}

// NewRoundRepository creates a new RoundRepository
func NewRoundRepository(db *DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func insertRounds(ctx context.Context, tx *sql.Tx, rounds []challenge.Round) error {
	if len(rounds) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO challenge_rounds (id, challenge_id, round_number, start_date, end_date, winner_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare round insert: %w", err)
	}
	defer stmt.Close()

	for _, rnd := range rounds {
		_, err := stmt.ExecContext(ctx,
			rnd.ID,
			rnd.ChallengeID,
			rnd.RoundNumber,
			formatTime(rnd.StartDate),
			formatTime(rnd.EndDate),
			nullString(rnd.WinnerID),
			string(rnd.Status),
			formatTime(rnd.CreatedAt),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to insert round %d: %w", rnd.RoundNumber, err)
		}
	}
	return nil
}

// ListRounds returns a challenge's rounds in ascending round number
func (r *RoundRepository) ListRounds(ctx context.Context, challengeID string) ([]challenge.Round, error) {
	query := `
		SELECT id, challenge_id, round_number, start_date, end_date, winner_id, status, created_at
		FROM challenge_rounds
		WHERE challenge_id = ?
		ORDER BY round_number
	`
	rows, err := r.db.QueryContext(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []challenge.Round{}
	for rows.Next() {
		var (
			rnd       challenge.Round
			start     string
			end       string
			winner    sql.NullString
			status    string
			createdAt string
		)
		if err := rows.Scan(&rnd.ID, &rnd.ChallengeID, &rnd.RoundNumber, &start, &end, &winner, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rnd.WinnerID = stringPtr(winner)
		rnd.Status = challenge.RoundStatus(status)
		if rnd.StartDate, err = parseTime(start); err != nil {
			return nil, err
		}
		if rnd.EndDate, err = parseTime(end); err != nil {
			return nil, err
		}
		if rnd.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, rnd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

// UpdateStatus sets a round's status
func (r *RoundRepository) UpdateStatus(ctx context.Context, roundID string, status challenge.RoundStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE challenge_rounds SET status = ? WHERE id = ?`, string(status), roundID)
	if err != nil {
		return fmt.Errorf("failed to update round status: %w", err)
	}
	return requireAffected(result)
}

// CompleteRound upserts participant snapshots, sets the winner and marks the
// round completed in one transaction
func (r *RoundRepository) CompleteRound(ctx context.Context, roundID string, winnerID *string, participants []challenge.RoundParticipant) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO round_participants (round_id, user_id, value, rank)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (round_id, user_id) DO UPDATE SET value = excluded.value, rank = excluded.rank
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare participant upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range participants {
			if _, err := stmt.ExecContext(ctx, roundID, p.UserID, p.Value, p.Rank); err != nil {
				if isForeignKeyViolation(err) {
					return repository.ErrNotFound
				}
				return fmt.Errorf("failed to upsert participant: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE challenge_rounds SET winner_id = ?, status = ? WHERE id = ?`,
			nullString(winnerID), string(challenge.RoundCompleted), roundID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete round: %w", err)
		}
		return requireAffected(result)
	})
}

// ListParticipants returns a round's participant snapshots ordered by rank
func (r *RoundRepository) ListParticipants(ctx context.Context, roundID string) ([]challenge.RoundParticipant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT round_id, user_id, value, rank
		FROM round_participants
		WHERE round_id = ?
		ORDER BY rank, user_id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []challenge.RoundParticipant{}
	for rows.Next() {
		var p challenge.RoundParticipant
		if err := rows.Scan(&p.RoundID, &p.UserID, &p.Value, &p.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
