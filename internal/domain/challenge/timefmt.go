package challenge

import "time"

const (
	// TimestampLayout is the persisted wire format: ISO-8601, UTC, millisecond fraction.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
	// DayLayout is the calendar-day key used by daily records.
	DayLayout = "2006-01-02"
)

// FormatTimestamp renders t in the persisted wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an RFC 3339 timestamp with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// DayKey returns the calendar day of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
