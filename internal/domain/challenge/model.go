package challenge

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Kind determines how progress is measured.
type Kind string

const (
	KindRace        Kind = "race"
	KindStreak      Kind = "streak"
	KindLeaderboard Kind = "leaderboard"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindRace, KindStreak, KindLeaderboard:
		return true
	default:
		return false
	}
}

// UsesTarget reports whether progress is measured against the target value.
func (k Kind) UsesTarget() bool {
	return k == KindRace || k == KindStreak
}

// Metric is the daily counter a challenge competes on.
type Metric string

const (
	MetricSteps           Metric = "steps"
	MetricCalories        Metric = "calories"
	MetricDistance        Metric = "distance"
	MetricExerciseMinutes Metric = "exercise_minutes"
	MetricFlights         Metric = "flights"
	MetricWorkouts        Metric = "workouts"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricSteps,
	MetricCalories,
	MetricDistance,
	MetricExerciseMinutes,
	MetricFlights,
	MetricWorkouts,
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricSteps, MetricCalories, MetricDistance, MetricExerciseMinutes, MetricFlights, MetricWorkouts:
		return true
	default:
		return false
	}
}

// Label is the human-readable metric name used in feed payloads.
func (m Metric) Label() string {
	switch m {
	case MetricSteps:
		return "Steps"
	case MetricCalories:
		return "Calories"
	case MetricDistance:
		return "Distance"
	case MetricExerciseMinutes:
		return "Exercise Minutes"
	case MetricFlights:
		return "Flights Climbed"
	case MetricWorkouts:
		return "Workouts"
	default:
		return string(m)
	}
}

// Unit is the storage unit of the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricCalories:
		return "kcal"
	case MetricDistance:
		return "km"
	case MetricExerciseMinutes:
		return "min"
	default:
		return string(m)
	}
}

// FormatValue renders an aggregate for display, e.g. "12,345 steps" or "8.4 km".
func (m Metric) FormatValue(v float64) string {
	if m == MetricDistance {
		return fmt.Sprintf("%.1f %s", v, m.Unit())
	}
	return fmt.Sprintf("%s %s", humanize.Comma(int64(v)), m.Unit())
}

// Status is the stored lifecycle status of a challenge.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Cadence slices a challenge into rounds.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	default:
		return false
	}
}

// Offset returns the start of the n-th cadence unit after anchor in anchor's
// calendar. Monthly offsets keep anchor's day of month, clamped to the last
// day of shorter months, so a schedule anchored on the 31st does not drift.
func (c Cadence) Offset(anchor time.Time, n int) time.Time {
	switch c {
	case CadenceWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case CadenceMonthly:
		return addMonths(anchor, n)
	default:
		return anchor.AddDate(0, 0, n)
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Challenge is a time-boxed, metric-based contest among members of a group.
type Challenge struct {
	ID                 string     `json:"id"`
	GroupID            string     `json:"group_id"`
	CreatorID          string     `json:"creator_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Kind               Kind       `json:"kind"`
	Metric             Metric     `json:"metric"`
	TargetValue        int        `json:"target_value"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Status             Status     `json:"status"`
	RoundCadence       *Cadence   `json:"round_cadence,omitempty"`
	CurrentRoundNumber *int       `json:"current_round_number,omitempty"`
	TotalRounds        *int       `json:"total_rounds,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsRoundBased reports whether the challenge is sliced into rounds.
func (c *Challenge) IsRoundBased() bool {
	return c.RoundCadence != nil
}

// IsEnded reports whether the end date has passed. Open-ended challenges never end.
func (c *Challenge) IsEnded(now time.Time) bool {
	return c.EndDate != nil && now.After(*c.EndDate)
}

// RoundStatus is the lifecycle state of a round.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

// Round is one independently ranked sub-period of a round-based challenge.
type Round struct {
	ID          string      `json:"id"`
	ChallengeID string      `json:"challenge_id"`
	RoundNumber int         `json:"round_number"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	WinnerID    *string     `json:"winner_id,omitempty"`
	Status      RoundStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// RoundParticipant is the snapshot of one member's result in a completed round.
type RoundParticipant struct {
	RoundID string  `json:"round_id"`
	UserID  string  `json:"user_id"`
	Value   float64 `json:"value"`
	Rank    int     `json:"rank"`
}

// CountWins tallies completed rounds with a winner per member.
func CountWins(rounds []Round) map[string]int {
	wins := make(map[string]int)
	for _, r := range rounds {
		if r.Status == RoundCompleted && r.WinnerID != nil {
			wins[*r.WinnerID]++
		}
	}
	return wins
}

// CurrentRoundNumber returns the active round's number, else the latest
// completed round, else 1. Zero when there are no rounds.
func CurrentRoundNumber(rounds []Round) int {
	if len(rounds) == 0 {
		return 0
	}
	latestCompleted := 0
	for _, r := range rounds {
		if r.Status == RoundActive {
			return r.RoundNumber
		}
		if r.Status == RoundCompleted && r.RoundNumber > latestCompleted {
			latestCompleted = r.RoundNumber
		}
	}
	if latestCompleted > 0 {
		return latestCompleted
	}
	return 1
}
