// Package datekey is the single notion of "calendar day" shared by the API range
// filters and the calendar grid.
//
// A day crosses every boundary as YYYY-MM-DD text. Converting text to an instant always
// builds midnight from the text's own components in the target location; it never
// parses as UTC and reuses the parts elsewhere, which shifts the day for hosts west of
// the meridian.
package datekey

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the canonical key layout.
const Layout = "2006-01-02"

const monthLayout = "2006-01"

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var (
	ErrMalformed = errors.New("date must use the YYYY-MM-DD format")
	ErrNotADay   = errors.New("date is not a real calendar day")
)

// Range is an inclusive pair of day keys.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Format returns the key of t, reading the components in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FromText returns the canonical key for either a key or an RFC 3339 timestamp. The
// timestamp's components are taken as written, without moving it to another zone.
func FromText(s string) (string, error) {
	if keyPattern.MatchString(s) {
		if _, err := time.Parse(Layout, s); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotADay, s)
		}
		return s, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformed, s)
	}
	return Format(t), nil
}

// Valid reports whether s is a well-formed key naming a real day. Overflowing values
// such as 2024-02-30 or 2024-13-01 are rejected rather than rolled over.
func Valid(s string) bool {
	if !keyPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Parse returns local midnight of the day named by key.
func Parse(key string) (time.Time, error) {
	return ParseIn(key, time.Local)
}

// ParseIn returns midnight in loc of the day named by key.
func ParseIn(key string, loc *time.Location) (time.Time, error) {
	if !keyPattern.MatchString(key) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, key)
	}
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNotADay, key)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// Normalize maps t to local midnight of the day it is meant to represent.
func Normalize(t time.Time) time.Time {
	return NormalizeIn(t, time.Local)
}

// NormalizeIn maps t to midnight in loc of the day it is meant to represent.
//
// An instant sitting exactly on UTC midnight is what a date-only ISO value decodes to,
// so its day is read in UTC. Any other instant is read in its own location. Both rules
// agree on instants that are already midnight in loc, which makes the result stable
// under repeated normalization for every offset.
//
// t must stand for a whole day. A time-of-day instant that happens to fall on UTC
// midnight, such as 19:00 in New York, is read as the following UTC day.
func NormalizeIn(t time.Time, loc *time.Location) time.Time {
	day := t
	if u := t.UTC(); u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		day = u
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

// NormalizeKey is the text form of NormalizeIn. Text already names a day, so it goes
// straight to ParseIn.
func NormalizeKey(key string, loc *time.Location) (time.Time, error) {
	return ParseIn(key, loc)
}

// InRange reports start <= day <= end after normalizing all three to local midnight.
// All three must be whole days, see NormalizeIn.
func InRange(day, start, end time.Time) bool {
	loc := day.Location()
	d := NormalizeIn(day, loc)
	return !d.Before(NormalizeIn(start, loc)) && !d.After(NormalizeIn(end, loc))
}

// RangeBack returns the range ending today (host zone) and starting days earlier.
func RangeBack(days int) Range {
	return RangeBackFrom(time.Now(), days)
}

// RangeBackFrom is RangeBack anchored at now, in now's location.
func RangeBackFrom(now time.Time, days int) Range {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := time.Date(to.Year(), to.Month(), to.Day()-days, 0, 0, 0, 0, to.Location())
	return Range{From: Format(from), To: Format(to)}
}

// AddDays shifts key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := ParseIn(key, time.UTC)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// Days lists every key from from to to inclusive. An inverted range is empty.
func Days(from, to string) ([]string, error) {
	start, err := ParseIn(from, time.UTC)
	if err != nil {
		return nil, err
	}
	end, err := ParseIn(to, time.UTC)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, Format(d))
	}
	return days, nil
}

// MonthKey returns the YYYY-MM key of t's month.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseMonth returns midnight in loc on the first day of the YYYY-MM month.
func ParseMonth(month string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must use the YYYY-MM format: %w", err)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc), nil
}
