package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
	"github.com/rpggio/roundup/internal/domain/challenge"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	return w
}()

// parseDate reads YYYY-MM-DD (midnight in loc), RFC 3339, or natural
// language such as "next monday" relative to base.
func parseDate(text string, base time.Time, loc *time.Location) (time.Time, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false, fmt.Errorf("date is empty")
	}
	if t, err := time.ParseInLocation(challenge.DayLayout, text, loc); err == nil {
		return t, true, nil
	}
	if t, err := challenge.ParseTimestamp(text); err == nil {
		return t.In(loc), false, nil
	}

	r, err := dateParser.Parse(strings.ToLower(text), base.In(loc))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, false, fmt.Errorf("could not recognize date %q", text)
	}
	return r.Time.In(loc), true, nil
}

// parseStart returns midnight of the day text names.
func parseStart(text string, base time.Time, loc *time.Location) (time.Time, error) {
	t, _, err := parseDate(text, base, loc)
	if err != nil {
		return time.Time{}, err
	}
	return challenge.StartOfDay(t), nil
}

// parseEnd returns the last second of the day text names, or the exact
// instant when text is a full timestamp.
func parseEnd(text string, base time.Time, loc *time.Location) (time.Time, error) {
	t, dayOnly, err := parseDate(text, base, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !dayOnly {
		return t, nil
	}
	return challenge.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Second), nil
}
