package domain

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar-day format used in stored documents.
const DateLayout = "2006-01-02"

var dayLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006.01.02",
	"2006.1.2",
	"2006/1/2",
}

// ParseDay parses s as a calendar day and normalizes it to UTC midnight.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Midnight(t), true
		}
	}
	return time.Time{}, false
}

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDay rewrites s in DateLayout when it parses; otherwise s is
// returned unchanged with ok == false.
func NormalizeDay(s string) (string, bool) {
	t, ok := ParseDay(s)
	if !ok {
		return s, false
	}
	return FormatDay(t), true
}

// Today returns the current calendar day in UTC.
func Today() time.Time {
	return Midnight(time.Now().UTC())
}
