package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/pkg/logging"
)

// Service handles group membership.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a new group service.
func NewService(repo Repository, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, clock: clock.OrSystem(clk), logger: logging.OrDiscard(logger)}
}

// AddRequest defines member creation inputs.
type AddRequest struct {
	ID          string
	GroupID     string
	DisplayName string
}

// Add adds a member to a group.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Member, error) {
	if strings.TrimSpace(req.GroupID) == "" || strings.TrimSpace(req.DisplayName) == "" {
		return nil, ErrInvalidInput
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	m := &Member{
		ID:          id,
		GroupID:     req.GroupID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Add(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMemberExists
		}
		return nil, fmt.Errorf("adding member: %w", err)
	}

	s.logger.Info("member added", "member_id", m.ID, "group_id", m.GroupID)
	return m, nil
}

// List returns a group's members ordered by ID.
func (s *Service) List(ctx context.Context, groupID string) ([]Member, error) {
	members, err := s.repo.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// IsMember reports whether memberID belongs to groupID.
func (s *Service) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	return s.repo.IsMember(ctx, groupID, memberID)
}
