package challenge_test

import (
	"testing"
	"time"

	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/stretchr/testify/require"
)

func TestMetricFormatValue(t *testing.T) {
	require.Equal(t, "12,345 steps", challenge.MetricSteps.FormatValue(12345))
	require.Equal(t, "8.4 km", challenge.MetricDistance.FormatValue(8.43))
	require.Equal(t, "1,200 kcal", challenge.MetricCalories.FormatValue(1200))
	require.Equal(t, "Flights Climbed", challenge.MetricFlights.Label())
}

func TestChallengeIsEnded(t *testing.T) {
	end := date(2026, 2, 2, 23, 59, 59)
	ch := &challenge.Challenge{EndDate: &end}
	require.False(t, ch.IsEnded(end))
	require.True(t, ch.IsEnded(end.Add(time.Second)))

	open := &challenge.Challenge{}
	require.False(t, open.IsEnded(end.AddDate(10, 0, 0)))
}

func TestCountWins(t *testing.T) {
	rounds := []challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted, WinnerID: ptr("a")},
		{RoundNumber: 2, Status: challenge.RoundCompleted, WinnerID: ptr("b")},
		{RoundNumber: 3, Status: challenge.RoundCompleted, WinnerID: ptr("a")},
		{RoundNumber: 4, Status: challenge.RoundCompleted},
		{RoundNumber: 5, Status: challenge.RoundActive, WinnerID: ptr("b")},
	}
	require.Equal(t, map[string]int{"a": 2, "b": 1}, challenge.CountWins(rounds))
}

func TestCurrentRoundNumber(t *testing.T) {
	require.Equal(t, 0, challenge.CurrentRoundNumber(nil))
	require.Equal(t, 1, challenge.CurrentRoundNumber([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundPending},
		{RoundNumber: 2, Status: challenge.RoundPending},
	}))
	require.Equal(t, 2, challenge.CurrentRoundNumber([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted},
		{RoundNumber: 2, Status: challenge.RoundActive},
		{RoundNumber: 3, Status: challenge.RoundPending},
	}))
	require.Equal(t, 3, challenge.CurrentRoundNumber([]challenge.Round{
		{RoundNumber: 1, Status: challenge.RoundCompleted},
		{RoundNumber: 2, Status: challenge.RoundCompleted},
		{RoundNumber: 3, Status: challenge.RoundCompleted},
	}))
}
