// Package dates handles calendar date keys and display formatting.
//
// Every date key is derived from local calendar fields (year, month, day in
// the calendar's location). Keys are never produced by truncating a UTC
// timestamp: near midnight that reports the wrong day for any zone that is
// not UTC.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// KeyLayout is the canonical YYYY-MM-DD date key layout.
const KeyLayout = "2006-01-02"

const (
	fullLayout      = "Monday, January 2, 2006"
	clockLayout     = "03:04 PM"
	localTimeLayout = "2006-01-02T15:04:05"
	invalidTime     = "Invalid time"
)

// Relative day labels.
const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
	LabelTomorrow  = "Tomorrow"
)

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FormatError reports a string that is not a usable date.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// Calendar resolves "today" and date keys against a clock and a location.
// The zero value uses time.Now and time.Local.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Calendar) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Calendar) loc() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

// Instant returns the current time from the calendar clock.
func (c Calendar) Instant() time.Time {
	return c.now()
}

// Today returns the local calendar date key for the current instant.
func (c Calendar) Today() string {
	return c.KeyOf(c.now())
}

// KeyOf formats t as a date key using its calendar fields in the calendar location.
func (c Calendar) KeyOf(t time.Time) string {
	local := t.In(c.loc())
	y, m, d := local.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseKey parses a canonical YYYY-MM-DD key into local midnight of that day.
func (c Calendar) ParseKey(s string) (time.Time, error) {
	if !keyPattern.MatchString(s) {
		return time.Time{}, &FormatError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	t, err := time.ParseInLocation(KeyLayout, s, c.loc())
	if err != nil {
		return time.Time{}, &FormatError{Input: s, Reason: err.Error()}
	}
	return t, nil
}

// NormalizeKey accepts a date key or a timestamp and returns the canonical key.
// Canonical keys are returned unchanged.
func (c Calendar) NormalizeKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if keyPattern.MatchString(s) {
		if _, err := c.ParseKey(s); err != nil {
			return "", err
		}
		return s, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return c.KeyOf(t), nil
		}
	}
	if t, err := time.ParseInLocation(localTimeLayout, s, c.loc()); err == nil {
		return c.KeyOf(t), nil
	}
	return "", &FormatError{Input: s, Reason: "not a date key or timestamp"}
}

// Shift moves a date key by the given number of calendar days.
func (c Calendar) Shift(key string, days int) (string, error) {
	t, err := c.ParseKey(key)
	if err != nil {
		return "", err
	}
	return c.KeyOf(t.AddDate(0, 0, days)), nil
}

// DaysFromToday returns the calendar-day delta between today and key.
// Negative values are in the past.
func (c Calendar) DaysFromToday(key string) (int, error) {
	t, err := c.ParseKey(key)
	if err != nil {
		return 0, err
	}
	return dayNumber(t) - dayNumber(c.now().In(c.loc())), nil
}

// RelativeLabel names key relative to today: Today, Yesterday, Tomorrow,
// or the weekday name. Unparseable keys are returned as given.
func (c Calendar) RelativeLabel(key string) string {
	t, err := c.ParseKey(key)
	if err != nil {
		return key
	}
	switch dayNumber(t) - dayNumber(c.now().In(c.loc())) {
	case 0:
		return LabelToday
	case -1:
		return LabelYesterday
	case 1:
		return LabelTomorrow
	default:
		return t.Weekday().String()
	}
}

// FormatFull renders a key as a long date, e.g. "Monday, January 1, 2024".
func (c Calendar) FormatFull(key string) string {
	t, err := c.ParseKey(key)
	if err != nil {
		return key
	}
	return t.Format(fullLayout)
}

// FormatClockTime renders an ISO-8601 timestamp as a short local clock time.
// Unparseable input yields "Invalid time".
func (c Calendar) FormatClockTime(iso string) string {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return invalidTime
	}
	return t.In(c.loc()).Format(clockLayout)
}

// PastDays returns n date keys ending today, most recent first.
func (c Calendar) PastDays(n int) []string {
	if n <= 0 {
		return []string{}
	}
	local := c.now().In(c.loc())
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, c.loc())
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, c.KeyOf(midnight.AddDate(0, 0, -i)))
	}
	return keys
}

// FormatDuration renders seconds as MM:SS. Minutes do not roll over into hours.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseTimestamp parses an ISO-8601 timestamp as written by the ledger.
func ParseTimestamp(iso string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(iso))
	if err != nil {
		return time.Time{}, &FormatError{Input: iso, Reason: "expected ISO-8601 timestamp"}
	}
	return t, nil
}

// dayNumber counts days since the epoch for the calendar fields of t,
// independent of the zone offset and of DST transitions.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
