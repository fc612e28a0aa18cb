// Package timeparse converts the free-form date strings found in CRM
// exports into instants. Export tools disagree on format and locale, so
// parsing degrades through successively looser strategies instead of
// failing on the first bad row.
package timeparse

import (
	"regexp"
	"strings"
	"time"
)

// explicitFormats is the ordered fast path. Day-first layouts come before
// ISO ones; the source locale writes day before month. Two-digit years are
// rejected: every layout demands four digits.
var explicitFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2-1-2006 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

// generalFormats back the separator-normalized retry.
var generalFormats = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

var dateOnlyFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
}

// extractPattern finds the first date/time-shaped substring inside noisy
// values: either DD/MM/YYYY or YYYY-MM-DD, optionally followed by a time.
var extractPattern = regexp.MustCompile(
	`\d{1,2}[/-]\d{1,2}[/-]\d{4}(?:[ T]\d{1,2}:\d{2}(?::\d{2})?)?` +
		`|\d{4}-\d{2}-\d{2}(?:[ T]\d{1,2}:\d{2}(?::\d{2})?)?`)

// Parse converts a raw date string into an instant. The second return is
// false when no strategy succeeds; this is a routine condition, not an
// error. Interpretation is always day-first.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}

	if t, ok := parseFormats(s, explicitFormats); ok {
		return t, true
	}
	if t, ok := parseGeneral(s); ok {
		return t, true
	}

	if m := extractPattern.FindString(s); m != "" {
		if t, ok := parseFormats(m, explicitFormats); ok {
			return t, true
		}
		if t, ok := parseGeneral(m); ok {
			return t, true
		}
	}

	// Last resort: the date portion alone, discarding any time component.
	if tok := strings.Fields(s); len(tok) > 0 {
		if t, ok := parseFormats(tok[0], dateOnlyFormats); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseFormats(s string, formats []string) (time.Time, bool) {
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseGeneral retries after normalizing separators: dots and dashes become
// slashes, T becomes a space, runs of whitespace collapse. The general
// layouts cover both day-first and year-first orderings of the result.
func parseGeneral(s string) (time.Time, bool) {
	s = strings.ReplaceAll(s, "T", " ")
	s = strings.ReplaceAll(s, ".", "/")
	s = strings.ReplaceAll(s, "-", "/")
	s = strings.Join(strings.Fields(s), " ")
	return parseFormats(s, generalFormats)
}
