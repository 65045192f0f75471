package round

import (
	"cmp"
	"slices"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/group"
	"github.com/rpggio/roundup/internal/domain/ranking"
)

// WinCount is a member's number of won rounds.
type WinCount struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
}

// Overview is the state of a round-based challenge after reconciliation.
type Overview struct {
	Challenge     *challenge.Challenge `json:"challenge"`
	Rounds        []challenge.Round    `json:"rounds"`
	Wins          []WinCount           `json:"wins"`
	ActiveRound   *challenge.Round     `json:"active_round,omitempty"`
	LiveStandings []ranking.Standing   `json:"live_standings"`
}

// Results is a completed round's participant snapshot.
type Results struct {
	Round     challenge.Round    `json:"round"`
	Standings []ranking.Standing `json:"standings"`
}

// TallyWins counts round wins per member, most wins first, ties by member ID.
func TallyWins(rounds []challenge.Round, names map[string]string) []WinCount {
	counts := challenge.CountWins(rounds)
	wins := make([]WinCount, 0, len(counts))
	for id, n := range counts {
		wins = append(wins, WinCount{MemberID: id, DisplayName: group.DisplayName(names, id), Wins: n})
	}
	slices.SortFunc(wins, func(a, b WinCount) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(a.MemberID, b.MemberID)
	})
	return wins
}
