package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var (
	kindNames    = []string{"race", "streak", "leaderboard"}
	metricNames  = []string{"steps", "calories", "distance", "exercise_minutes", "flights", "workouts"}
	cadenceNames = []string{"daily", "weekly", "monthly"}
)

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Challenges
		{
			Name:        "create_challenge",
			Description: "Create a challenge in a group. Round-based challenges (round_cadence set) need an end_date and get their rounds scheduled immediately",
			InputSchema: objectSchema(map[string]any{
				"group_id":      stringProp("Group the challenge belongs to; the caller must be a member"),
				"title":         stringProp("Challenge title"),
				"description":   stringProp("Optional description"),
				"kind":          enumProp("How progress is measured", kindNames...),
				"metric":        enumProp("Daily counter to compete on", metricNames...),
				"target_value":  intProp("Goal for race and streak challenges"),
				"start_date":    stringProp("Start, YYYY-MM-DD or RFC 3339"),
				"end_date":      stringProp("End, YYYY-MM-DD or RFC 3339 (omit for open-ended)"),
				"round_cadence": enumProp("Slice the challenge into rounds", cadenceNames...),
			}, "group_id", "title", "kind", "metric", "start_date"),
		},
		{
			Name:        "update_challenge",
			Description: "Edit a challenge you created. Moving the end date later on a round-based challenge schedules the extra rounds",
			InputSchema: objectSchema(map[string]any{
				"id":           stringProp("Challenge ID"),
				"title":        stringProp("New title"),
				"description":  stringProp("New description"),
				"target_value": intProp("New target"),
				"end_date":     stringProp("New end, YYYY-MM-DD or RFC 3339"),
			}, "id"),
		},
		{
			Name:        "cancel_challenge",
			Description: "Cancel a challenge you created; its rounds stop advancing",
			InputSchema: objectSchema(map[string]any{"id": stringProp("Challenge ID")}, "id"),
		},
		{
			Name:        "delete_challenge",
			Description: "Delete a challenge you created together with its rounds",
			InputSchema: objectSchema(map[string]any{"id": stringProp("Challenge ID")}, "id"),
		},
		{
			Name:        "get_challenge",
			Description: "Get a challenge by ID",
			InputSchema: objectSchema(map[string]any{"id": stringProp("Challenge ID")}, "id"),
		},
		{
			Name:        "list_challenges",
			Description: "List a group's challenges, newest first. Ended challenges get their winner announced",
			InputSchema: objectSchema(map[string]any{"group_id": stringProp("Group ID")}, "group_id"),
		},

		// Rounds
		{
			Name:        "preview_rounds",
			Description: "Compute the round schedule for a window without creating anything",
			InputSchema: objectSchema(map[string]any{
				"start_date":    stringProp("Start, YYYY-MM-DD or RFC 3339"),
				"end_date":      stringProp("End, YYYY-MM-DD or RFC 3339 (omit for a single day)"),
				"round_cadence": enumProp("Round length", cadenceNames...),
			}, "start_date", "round_cadence"),
		},
		{
			Name:        "refresh_rounds",
			Description: "Advance a round-based challenge's rounds to the current time, decide elapsed rounds and return win counts and live standings",
			InputSchema: objectSchema(map[string]any{"id": stringProp("Challenge ID")}, "id"),
		},
		{
			Name:        "get_round_results",
			Description: "Get the participant snapshot of a round",
			InputSchema: objectSchema(map[string]any{
				"challenge_id": stringProp("Challenge ID"),
				"round_number": intProp("Round number, starting at 1"),
			}, "challenge_id", "round_number"),
		},

		// Standings
		{
			Name:        "get_standings",
			Description: "Rank the challenge's group on its metric from the start up to now",
			InputSchema: objectSchema(map[string]any{"id": stringProp("Challenge ID")}, "id"),
		},
		{
			Name:        "get_member_summary",
			Description: "Totals for every metric over the challenge window for one member",
			InputSchema: objectSchema(map[string]any{
				"challenge_id": stringProp("Challenge ID"),
				"member_id":    stringProp("Member ID (omit for yourself)"),
			}, "challenge_id"),
		},

		// Data
		{
			Name:        "import_daily_stats",
			Description: "Upsert daily activity records keyed by user and date. Requires an authenticated member; records are trusted as synced from that member's device",
			InputSchema: objectSchema(map[string]any{
				"records": map[string]any{
					"type":        "array",
					"description": "Daily records",
					"items": objectSchema(map[string]any{
						"user_id":          stringProp("Member ID"),
						"date":             stringProp("Day, YYYY-MM-DD"),
						"steps":            intProp("Steps"),
						"calories":         intProp("Active calories"),
						"flights":          intProp("Flights climbed"),
						"distance":         map[string]any{"type": "number", "description": "Distance in km"},
						"exercise_minutes": intProp("Exercise minutes"),
						"workouts_count":   intProp("Workouts"),
					}, "user_id", "date"),
				},
			}, "records"),
		},
		{
			Name:        "add_member",
			Description: "Add a member to a group. Callers may add themselves to any group; adding someone else requires membership in that group",
			InputSchema: objectSchema(map[string]any{
				"id":           stringProp("Member ID (generated if omitted)"),
				"group_id":     stringProp("Group ID"),
				"display_name": stringProp("Name shown in standings and the feed"),
			}, "group_id", "display_name"),
		},
		{
			Name:        "list_feed",
			Description: "List a group's most recent social feed events",
			InputSchema: objectSchema(map[string]any{
				"group_id": stringProp("Group ID"),
				"limit":    intProp("Maximum number of events (default 50, max 200)"),
			}, "group_id"),
		},
	}
}

// registerTools adds every catalog tool to server, dispatching through handler.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, getMemberID(ctx), name, args)
			if err != nil {
				logger.Debug("tool call failed", "tool", name, "member_id", getMemberID(ctx), "error", err)
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
