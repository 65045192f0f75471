package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/repository"
)

// MemberRepository implements group.Repository for SQLite
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Add inserts a member
func (r *MemberRepository) Add(ctx context.Context, m *group.Member) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, group_id, display_name, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.GroupID, m.DisplayName, formatTime(m.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// List returns a group's members ordered by ID
func (r *MemberRepository) List(ctx context.Context, groupID string) ([]group.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, display_name, created_at FROM members WHERE group_id = ? ORDER BY id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []group.Member{}
	for rows.Next() {
		var (
			m         group.Member
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.GroupID, &m.DisplayName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// IsMember reports whether memberID belongs to groupID
func (r *MemberRepository) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE group_id = ? AND id = ?`,
		groupID, memberID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}
