package mcp

import (
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/completion"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/internal/domain/stats"
)

type CreateChallengeParams struct {
	GroupID      string           `json:"group_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Kind         challenge.Kind   `json:"kind"`
	Metric       challenge.Metric `json:"metric"`
	TargetValue  int              `json:"target_value,omitempty"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date,omitempty"`
	RoundCadence string           `json:"round_cadence,omitempty"`
}

type UpdateChallengeParams struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	TargetValue *int    `json:"target_value,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

type ChallengeIDParams struct {
	ID string `json:"id"`
}

type ListChallengesParams struct {
	GroupID string `json:"group_id"`
}

type PreviewRoundsParams struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	RoundCadence string `json:"round_cadence"`
}

type RoundResultsParams struct {
	ChallengeID string `json:"challenge_id"`
	RoundNumber int    `json:"round_number"`
}

type MemberSummaryParams struct {
	ChallengeID string `json:"challenge_id"`
	MemberID    string `json:"member_id,omitempty"`
}

type ImportDailyStatsParams struct {
	Records []stats.DailyRecord `json:"records"`
}

type AddMemberParams struct {
	ID          string `json:"id,omitempty"`
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
}

type ListFeedParams struct {
	GroupID string `json:"group_id"`
	Limit   int    `json:"limit,omitempty"`
}

// ChallengeResponse is a challenge with its display goal.
type ChallengeResponse struct {
	challenge.Challenge
	Goal  string `json:"goal"`
	Ended bool   `json:"ended"`
}

type ListChallengesResponse struct {
	Challenges  []ChallengeResponse `json:"challenges"`
	Completions []completion.Result `json:"completions"`
}

type PreviewRoundsResponse struct {
	TotalRounds int                     `json:"total_rounds"`
	Rounds      []challenge.RoundWindow `json:"rounds"`
}

type RefreshRoundsResponse struct {
	*round.Overview
	Completion completion.Result `json:"completion"`
}

type ImportDailyStatsResponse struct {
	Imported int `json:"imported"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
