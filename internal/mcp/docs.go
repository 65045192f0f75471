package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `roundup runs fitness challenges for groups of members.

Core concepts:
- Challenge: a contest on one daily metric (steps, calories, distance, exercise_minutes, flights, workouts).
  kind leaderboard ranks by total; race and streak measure progress against target_value.
- Round: a daily, weekly or monthly slice of a round-based challenge. Each elapsed round is ranked on its own
  and won by the top member, provided they recorded any activity.
- Feed: challenge_created, challenge_updated, round_winner and challenge_won events per group.

Default workflow:
1) add_member to join a group, then create_challenge (round-based ones need end_date).
2) import_daily_stats to load activity.
3) refresh_rounds on round-based challenges to decide elapsed rounds and see win counts and live standings.
   get_standings works for every challenge.
4) list_challenges announces winners of ended challenges once; list_feed shows the results.

Dates are calendar days in the server's configured time zone. Pass YYYY-MM-DD or RFC 3339.

Docs:
- roundup://docs/index
- roundup://docs/rounds
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "roundup://docs/index",
		Name:        "docs_index",
		Title:       "roundup docs index",
		Description: "Entry point: tools by task.",
		Content: `# roundup: Docs Index

## Tools by task

| task | tools |
|---|---|
| membership | add_member |
| challenges | create_challenge, update_challenge, cancel_challenge, delete_challenge, get_challenge, list_challenges |
| rounds | preview_rounds, refresh_rounds, get_round_results |
| standings | get_standings, get_member_summary |
| data | import_daily_stats |
| feed | list_feed |

## Errors

Failed tool calls return isError with a JSON body: code, message and sometimes recovery_hint.
Only the creator may update, cancel or delete a challenge (NOT_CREATOR).
`,
	},
	{
		URI:         "roundup://docs/rounds",
		Name:        "docs_rounds",
		Title:       "How rounds work",
		Description: "Round scheduling, completion and winners.",
		Content: `# Rounds

## Scheduling

Rounds start at midnight of the challenge's start day and advance one cadence unit at a time. Each round ends
one second before the next one starts; the last round is clipped to the challenge end. A schedule may not
exceed 1000 rounds. preview_rounds shows the schedule without creating anything.

Moving the end date later appends rounds numbered after the last one. Moving it earlier is rejected.

## Lifecycle

pending -> active -> completed, never backwards. refresh_rounds:
- activates rounds whose start has passed,
- completes rounds whose end has passed: every group member is ranked on the round window, the snapshot is
  stored and the top member wins when their total is above zero,
- posts one round_winner event per tied winner, once.

## Challenge winner

When a challenge has ended, list_challenges and refresh_rounds post a single challenge_won event.
Round-based challenges are won by most round wins (ties by member ID); others by the highest total.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
