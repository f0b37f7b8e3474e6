// Package dates provides layered due-date parsing.
//
// Parsing is attempted in order:
//  1. ISO date / RFC3339 timestamp ("2025-09-01")
//  2. Compact duration ("+2w", "3d")
//  3. Natural language ("tomorrow", "next friday") via olebedev/when
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([dwmy])
// Examples: +2w, -1d, 3m, 1y
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([dwmy])$`)

var nlParser = func() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}()

// Parse resolves a due-date expression relative to now. It accepts ISO
// dates, compact durations, and English natural language. The result is
// truncated to a date (no time component).
func Parse(s string, now time.Time) (time.Time, error) {
	if t, err := parseISO(s); err == nil {
		return t, nil
	}
	if t, err := parseCompactDuration(s, now); err == nil {
		return t, nil
	}
	if t, err := parseNatural(s, now); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

// Valid reports whether s parses as a due date.
func Valid(s string, now time.Time) bool {
	_, err := Parse(s, now)
	return err == nil
}

// FormatISO renders a time as an ISO date (YYYY-MM-DD).
func FormatISO(t time.Time) string {
	return t.Format("2006-01-02")
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO date: %q", s)
}

func parseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}

	switch matches[3] {
	case "d":
		return now.AddDate(0, 0, amount), nil
	case "w":
		return now.AddDate(0, 0, amount*7), nil
	case "m":
		return now.AddDate(0, amount, 0), nil
	case "y":
		return now.AddDate(amount, 0, 0), nil
	}
	return now, nil
}

func parseNatural(s string, now time.Time) (time.Time, error) {
	result, err := nlParser.Parse(s, now)
	if err != nil {
		return time.Time{}, err
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("no date found in %q", s)
	}
	return result.Time, nil
}
