package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rpggio/roundup/internal/repository"
)

// APIKeyRepository maps hashed API keys to members
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add stores the hash of rawKey for memberID
func (r *APIKeyRepository) Add(ctx context.Context, memberID, rawKey string, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, member_id, created_at) VALUES (?, ?, ?)`,
		HashToken(rawKey), memberID, formatTime(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveMember returns the member that owns rawKey and records its use
func (r *APIKeyRepository) ResolveMember(ctx context.Context, rawKey string) (string, error) {
	hash := HashToken(rawKey)

	var memberID string
	err := r.db.QueryRowContext(ctx, `SELECT member_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&memberID)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`,
		formatTime(time.Now()), hash,
	); err != nil {
		return "", fmt.Errorf("failed to record api key use: %w", err)
	}
	return memberID, nil
}

// HashToken returns the hex SHA-256 of a raw key
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
