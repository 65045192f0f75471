// Package ranking orders aggregated member values into standings.
package ranking

import (
	"cmp"
	"slices"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/group"
)

// Standing is one member's computed position. It is never persisted.
type Standing struct {
	MemberID    string  `json:"member_id"`
	DisplayName string  `json:"display_name,omitempty"`
	Value       float64 `json:"value"`
	Progress    float64 `json:"progress"`
	Rank        int     `json:"rank"`
}

// Rank sorts values descending, breaking ties by member ID, and assigns
// sequential ranks starting at 1. Progress is value/target for race and streak
// challenges and value/leader for leaderboards; a non-positive denominator
// yields 0.
func Rank(values map[string]float64, kind challenge.Kind, target int) []Standing {
	standings := make([]Standing, 0, len(values))
	for id, v := range values {
		standings = append(standings, Standing{MemberID: id, Value: v})
	}

	slices.SortFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.MemberID, b.MemberID)
	})

	denominator := float64(target)
	if !kind.UsesTarget() {
		denominator = 0
		if len(standings) > 0 {
			denominator = standings[0].Value
		}
	}

	for i := range standings {
		standings[i].Rank = i + 1
		if denominator > 0 {
			standings[i].Progress = standings[i].Value / denominator
		}
	}
	return standings
}

// Leaders returns every standing that shares the top value. A top value of
// zero or less means nobody leads.
func Leaders(standings []Standing) []Standing {
	if len(standings) == 0 || standings[0].Value <= 0 {
		return nil
	}
	top := standings[0].Value
	end := 1
	for end < len(standings) && standings[end].Value == top {
		end++
	}
	return standings[:end]
}

// WithNames fills display names from the member directory.
func WithNames(standings []Standing, names map[string]string) []Standing {
	for i := range standings {
		standings[i].DisplayName = group.DisplayName(names, standings[i].MemberID)
	}
	return standings
}
