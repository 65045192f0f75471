package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/internal/domain/standings"
	"github.com/rpggio/roundup/internal/domain/stats"
)

var (
	// ErrUnauthorized indicates a call without a resolved member.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidParams indicates tool arguments that could not be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "no member bound to this call", RecoveryHint: "Send a valid bearer API key, or set ROUNDUP_DEFAULT_MEMBER for stdio"}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check argument names and types"}
	case errors.Is(err, challenge.ErrChallengeNotFound):
		return &APIError{Code: "CHALLENGE_NOT_FOUND", Message: "challenge not found", RecoveryHint: "Use list_challenges to find IDs"}
	case errors.Is(err, challenge.ErrNotCreator):
		return &APIError{Code: "NOT_CREATOR", Message: "only the challenge creator can modify it"}
	case errors.Is(err, challenge.ErrNotMember):
		return &APIError{Code: "NOT_MEMBER", Message: "not a member of the group", RecoveryHint: "Join the group with add_member first"}
	case errors.Is(err, challenge.ErrEndDateRequired):
		return &APIError{Code: "END_DATE_REQUIRED", Message: "round-based challenges require an end date", RecoveryHint: "Pass end_date"}
	case errors.Is(err, challenge.ErrInvalidCadence):
		return &APIError{Code: "INVALID_CADENCE", Message: "round cadence must be daily, weekly or monthly"}
	case errors.Is(err, challenge.ErrTooManyRounds):
		return &APIError{Code: "TOO_MANY_ROUNDS", Message: fmt.Sprintf("schedule exceeds %d rounds", challenge.MaxRounds), RecoveryHint: "Use a longer cadence or a shorter window"}
	case errors.Is(err, challenge.ErrNotRoundBased):
		return &APIError{Code: "NOT_ROUND_BASED", Message: "challenge has no rounds"}
	case errors.Is(err, round.ErrRoundNotFound):
		return &APIError{Code: "ROUND_NOT_FOUND", Message: "round not found", RecoveryHint: "Round numbers start at 1"}
	case errors.Is(err, group.ErrMemberExists):
		return &APIError{Code: "MEMBER_EXISTS", Message: "member already exists"}
	case errors.Is(err, standings.ErrNotParticipant):
		return &APIError{Code: "NOT_PARTICIPANT", Message: "member is not in the challenge's group"}
	case errors.Is(err, stats.ErrInvalidRange):
		return &APIError{Code: "INVALID_RANGE", Message: "start is after end"}
	case errors.Is(err, challenge.ErrInvalidInput),
		errors.Is(err, group.ErrInvalidInput),
		errors.Is(err, stats.ErrInvalidRecord),
		errors.Is(err, stats.ErrInvalidMetric):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
