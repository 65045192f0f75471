package feed

import "time"

// EventType identifies a social feed event. Payload keys per type are a stable contract.
type EventType string

const (
	// TypeChallengeCreated payload: title, metric, goal.
	TypeChallengeCreated EventType = "challenge_created"
	// TypeChallengeUpdated payload: title, metric, goal.
	TypeChallengeUpdated EventType = "challenge_updated"
	// TypeChallengeWon payload: challenge_title, winner_name, metric, value.
	TypeChallengeWon EventType = "challenge_won"
	// TypeRoundWinner payload: challenge_title, round_number, winner_name.
	TypeRoundWinner EventType = "round_winner"
)

// Event is an entry in a group's social feed.
type Event struct {
	ID        string            `json:"id"`
	GroupID   string            `json:"group_id"`
	UserID    string            `json:"user_id"`
	Type      EventType         `json:"type"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// ChallengeWonKey is the ledger key guarding a challenge's completion event.
func ChallengeWonKey(challengeID string) string {
	return "challenge_won:" + challengeID
}

// RoundWinnerKey is the ledger key guarding a round winner event for one member.
func RoundWinnerKey(roundID, memberID string) string {
	return "round_winner:" + roundID + ":" + memberID
}
