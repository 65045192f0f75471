package challenge

import "time"

// MaxRounds bounds a single schedule so a bad cadence or end date cannot loop forever.
const MaxRounds = 1000

// RoundWindow is one scheduled round before it is persisted.
type RoundWindow struct {
	Number int         `json:"round_number"`
	Start  time.Time   `json:"start_date"`
	End    time.Time   `json:"end_date"`
	Status RoundStatus `json:"status"`
}

// GenerateRounds slices [start, end] into contiguous rounds of the given cadence.
// The first round begins at the start of start's calendar day and the last round
// is clamped to end. A nil end materializes a single day.
func GenerateRounds(start time.Time, end *time.Time, cadence Cadence, now time.Time) ([]RoundWindow, error) {
	effectiveEnd := start.AddDate(0, 0, 1)
	if end != nil {
		effectiveEnd = *end
	}
	return schedule(StartOfDay(start), effectiveEnd, 1, cadence, now)
}

// ExtendRounds continues a schedule after its end date moved from oldEnd to newEnd.
// Nothing is produced unless newEnd is strictly later than oldEnd.
func ExtendRounds(last RoundWindow, oldEnd *time.Time, newEnd time.Time, cadence Cadence, now time.Time) ([]RoundWindow, error) {
	if oldEnd != nil && !newEnd.After(*oldEnd) {
		return nil, nil
	}
	cursor := StartOfDay(last.End.AddDate(0, 0, 1))
	return schedule(cursor, newEnd, last.Number+1, cadence, now)
}

// schedule lays rounds out from anchor. Each round start is an offset from
// anchor rather than from the previous round, so month-end clamping in one
// round does not shift the rounds after it.
func schedule(anchor, end time.Time, number int, cadence Cadence, now time.Time) ([]RoundWindow, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}

	var rounds []RoundWindow
	cursor := anchor
	for cursor.Before(end) {
		if len(rounds) == MaxRounds {
			return nil, ErrTooManyRounds
		}

		next := cadence.Offset(anchor, len(rounds)+1)
		roundEnd := next.Add(-time.Second)
		if roundEnd.After(end) {
			roundEnd = end
		}

		rounds = append(rounds, RoundWindow{
			Number: number,
			Start:  cursor,
			End:    roundEnd,
			Status: initialStatus(cursor, roundEnd, now),
		})

		cursor = next
		number++
	}
	return rounds, nil
}

func initialStatus(start, end, now time.Time) RoundStatus {
	switch {
	case now.Before(start):
		return RoundPending
	case now.After(end):
		return RoundCompleted
	default:
		return RoundActive
	}
}

// Window returns the schedule view of a persisted round.
func (r Round) Window() RoundWindow {
	return RoundWindow{Number: r.RoundNumber, Start: r.StartDate, End: r.EndDate, Status: r.Status}
}
