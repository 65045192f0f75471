package stats

import "github.com/rpggio/roundup/internal/domain/challenge"

// DailyRecord holds one member's raw counters for one calendar day.
// ExerciseMinutes and WorkoutsCount are absent on older records.
type DailyRecord struct {
	UserID          string  `json:"user_id"`
	Date            string  `json:"date"`
	Steps           int     `json:"steps"`
	Calories        int     `json:"calories"`
	Flights         int     `json:"flights"`
	Distance        float64 `json:"distance"`
	ExerciseMinutes *int    `json:"exercise_minutes,omitempty"`
	WorkoutsCount   *int    `json:"workouts_count,omitempty"`
}

// Value returns the record's contribution to metric.
func (r DailyRecord) Value(metric challenge.Metric) float64 {
	switch metric {
	case challenge.MetricSteps:
		return float64(r.Steps)
	case challenge.MetricCalories:
		return float64(r.Calories)
	case challenge.MetricFlights:
		return float64(r.Flights)
	case challenge.MetricDistance:
		return r.Distance
	case challenge.MetricExerciseMinutes:
		return float64(intOrZero(r.ExerciseMinutes))
	case challenge.MetricWorkouts:
		return float64(intOrZero(r.WorkoutsCount))
	default:
		return 0
	}
}

// Totals holds every metric's aggregate for one member over a window.
type Totals struct {
	MemberID        string  `json:"member_id"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Steps           float64 `json:"steps"`
	Calories        float64 `json:"calories"`
	Distance        float64 `json:"distance"`
	ExerciseMinutes float64 `json:"exercise_minutes"`
	Flights         float64 `json:"flights"`
	Workouts        float64 `json:"workouts"`
}

func (t *Totals) set(metric challenge.Metric, v float64) {
	switch metric {
	case challenge.MetricSteps:
		t.Steps = v
	case challenge.MetricCalories:
		t.Calories = v
	case challenge.MetricDistance:
		t.Distance = v
	case challenge.MetricExerciseMinutes:
		t.ExerciseMinutes = v
	case challenge.MetricFlights:
		t.Flights = v
	case challenge.MetricWorkouts:
		t.Workouts = v
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
