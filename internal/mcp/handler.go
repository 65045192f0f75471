package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/completion"
	"github.com/rpggio/roundup/internal/domain/feed"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/round"
	"github.com/rpggio/roundup/internal/domain/standings"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/pkg/logging"
)

// ChallengeService defines challenge operations needed by MCP.
type ChallengeService interface {
	Create(ctx context.Context, req challenge.CreateRequest) (*challenge.Challenge, error)
	Update(ctx context.Context, actorID, id string, req challenge.UpdateRequest) (*challenge.Challenge, error)
	Cancel(ctx context.Context, actorID, id string) (*challenge.Challenge, error)
	Delete(ctx context.Context, actorID, id string) error
	Get(ctx context.Context, id string) (*challenge.Challenge, error)
	List(ctx context.Context, groupID string) ([]challenge.Challenge, error)
	Preview(start time.Time, end *time.Time, cadence challenge.Cadence) ([]challenge.RoundWindow, error)
}

// RoundService defines round lifecycle operations needed by MCP.
type RoundService interface {
	Reconcile(ctx context.Context, challengeID string) (*round.Overview, error)
	Results(ctx context.Context, challengeID string, number int) (*round.Results, error)
}

// CompletionChecker emits challenge_won events for ended challenges.
type CompletionChecker interface {
	Check(ctx context.Context, ch *challenge.Challenge) (completion.Result, error)
	CheckAll(ctx context.Context, challenges []challenge.Challenge) []completion.Result
}

// StandingsService defines leaderboard operations needed by MCP.
type StandingsService interface {
	Current(ctx context.Context, challengeID string) (*standings.Leaderboard, error)
	MemberSummary(ctx context.Context, challengeID, memberID string) (*stats.Totals, error)
}

// StatsService imports daily records.
type StatsService interface {
	Import(ctx context.Context, records []stats.DailyRecord) (int, error)
}

// MemberService defines group membership operations needed by MCP.
type MemberService interface {
	Add(ctx context.Context, req group.AddRequest) (*group.Member, error)
	IsMember(ctx context.Context, groupID, memberID string) (bool, error)
}

// FeedService reads the social feed.
type FeedService interface {
	List(ctx context.Context, groupID string, limit int) ([]feed.Event, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Challenges ChallengeService
	Rounds     RoundService
	Completion CompletionChecker
	Standings  StandingsService
	Stats      StatsService
	Members    MemberService
	Feed       FeedService
}

// Handler dispatches MCP tool calls to domain services.
type Handler struct {
	services Services
	loc      *time.Location
	clock    clock.Clock
	logger   *slog.Logger
}

// NewHandler creates a new MCP handler. Date-only arguments are read as
// midnight in loc.
func NewHandler(services Services, loc *time.Location, clk clock.Clock, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		services: services,
		loc:      loc,
		clock:    clock.OrSystem(clk),
		logger:   logging.OrDiscard(logger),
	}
}

// Handle dispatches a tool call on behalf of memberID.
func (h *Handler) Handle(ctx context.Context, memberID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_challenge":
		var req CreateChallengeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		start, err := h.parseDate("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := h.parseOptionalEnd(req.EndDate)
		if err != nil {
			return nil, err
		}
		ch, err := h.services.Challenges.Create(ctx, challenge.CreateRequest{
			GroupID:      req.GroupID,
			CreatorID:    memberID,
			Title:        req.Title,
			Description:  req.Description,
			Kind:         req.Kind,
			Metric:       req.Metric,
			TargetValue:  req.TargetValue,
			StartDate:    start,
			EndDate:      end,
			RoundCadence: cadencePtr(req.RoundCadence),
		})
		if err != nil {
			return nil, mapError(err)
		}
		return h.challengeResponse(ch), nil
	case "update_challenge":
		var req UpdateChallengeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		update := challenge.UpdateRequest{
			Title:       req.Title,
			Description: req.Description,
			TargetValue: req.TargetValue,
		}
		if req.EndDate != nil {
			end, err := h.parseOptionalEnd(*req.EndDate)
			if err != nil {
				return nil, err
			}
			if end == nil {
				return nil, mapError(fmt.Errorf("%w: end_date cannot be cleared", ErrInvalidParams))
			}
			update.EndDate = end
		}
		ch, err := h.services.Challenges.Update(ctx, memberID, req.ID, update)
		if err != nil {
			return nil, mapError(err)
		}
		return h.challengeResponse(ch), nil
	case "cancel_challenge":
		var req ChallengeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		ch, err := h.services.Challenges.Cancel(ctx, memberID, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return h.challengeResponse(ch), nil
	case "delete_challenge":
		var req ChallengeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		if err := h.services.Challenges.Delete(ctx, memberID, req.ID); err != nil {
			return nil, mapError(err)
		}
		return StatusResponse{Status: "deleted"}, nil
	case "get_challenge":
		var req ChallengeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		ch, err := h.services.Challenges.Get(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return h.challengeResponse(ch), nil
	case "list_challenges":
		var req ListChallengesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		list, err := h.services.Challenges.List(ctx, req.GroupID)
		if err != nil {
			return nil, mapError(err)
		}
		resp := ListChallengesResponse{
			Challenges:  make([]ChallengeResponse, 0, len(list)),
			Completions: h.services.Completion.CheckAll(ctx, list),
		}
		for i := range list {
			resp.Challenges = append(resp.Challenges, h.challengeResponse(&list[i]))
		}
		return resp, nil
	case "preview_rounds":
		var req PreviewRoundsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		start, err := h.parseDate("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := h.parseOptionalEnd(req.EndDate)
		if err != nil {
			return nil, err
		}
		windows, err := h.services.Challenges.Preview(start, end, challenge.Cadence(req.RoundCadence))
		if err != nil {
			return nil, mapError(err)
		}
		return PreviewRoundsResponse{TotalRounds: len(windows), Rounds: windows}, nil
	case "refresh_rounds":
		var req ChallengeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		overview, err := h.services.Rounds.Reconcile(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		result, err := h.services.Completion.Check(ctx, overview.Challenge)
		if err != nil {
			h.logger.Warn("completion check failed", "challenge_id", req.ID, "error", err)
		}
		return RefreshRoundsResponse{Overview: overview, Completion: result}, nil
	case "get_round_results":
		var req RoundResultsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		results, err := h.services.Rounds.Results(ctx, req.ChallengeID, req.RoundNumber)
		if err != nil {
			return nil, mapError(err)
		}
		return results, nil
	case "get_standings":
		var req ChallengeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		board, err := h.services.Standings.Current(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return board, nil
	case "get_member_summary":
		var req MemberSummaryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		target := req.MemberID
		if target == "" {
			target = memberID
		}
		totals, err := h.services.Standings.MemberSummary(ctx, req.ChallengeID, target)
		if err != nil {
			return nil, mapError(err)
		}
		return totals, nil
	case "import_daily_stats":
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		var req ImportDailyStatsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		n, err := h.services.Stats.Import(ctx, req.Records)
		if err != nil {
			return nil, mapError(err)
		}
		return ImportDailyStatsResponse{Imported: n}, nil
	case "add_member":
		if memberID == "" {
			return nil, mapError(ErrUnauthorized)
		}
		var req AddMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		// Anyone may join a group themselves; adding someone else takes membership.
		if req.ID != memberID {
			ok, err := h.services.Members.IsMember(ctx, req.GroupID, memberID)
			if err != nil {
				return nil, mapError(err)
			}
			if !ok {
				return nil, mapError(challenge.ErrNotMember)
			}
		}
		m, err := h.services.Members.Add(ctx, group.AddRequest{
			ID:          req.ID,
			GroupID:     req.GroupID,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return m, nil
	case "list_feed":
		var req ListFeedParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		events, err := h.services.Feed.List(ctx, req.GroupID, req.Limit)
		if err != nil {
			return nil, mapError(err)
		}
		return events, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %v", ErrInvalidParams, err))
	}
	return nil
}

// parseDate accepts YYYY-MM-DD (midnight in the handler's location) or RFC 3339.
func (h *Handler) parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, mapError(fmt.Errorf("%w: %s is required", ErrInvalidParams, field))
	}
	if t, err := time.ParseInLocation(challenge.DayLayout, value, h.loc); err == nil {
		return t, nil
	}
	t, err := challenge.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, mapError(fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", ErrInvalidParams, field))
	}
	return t, nil
}

// parseOptionalEnd reads an end date. A bare day means the last second of
// that day, so the day itself is part of the challenge.
func (h *Handler) parseOptionalEnd(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if day, err := time.ParseInLocation(challenge.DayLayout, value, h.loc); err == nil {
		end := day.AddDate(0, 0, 1).Add(-time.Second)
		return &end, nil
	}
	t, err := h.parseDate("end_date", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) challengeResponse(ch *challenge.Challenge) ChallengeResponse {
	return ChallengeResponse{
		Challenge: *ch,
		Goal:      challenge.Goal(ch),
		Ended:     ch.IsEnded(h.clock.Now()),
	}
}

func cadencePtr(value string) *challenge.Cadence {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	c := challenge.Cadence(value)
	return &c
}
