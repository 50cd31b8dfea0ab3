package normalize

import (
	"regexp"
	"strings"
	"time"
)

// tsPrecision says how much of a date-time a raw shape carries.
type tsPrecision int

const (
	tsNone tsPrecision = iota
	tsTimeOnly
	tsDateOnly
	tsFull
)

// tsRule pairs a layout with the precision it yields. Rules are tried in
// order; the first parse wins.
type tsRule struct {
	layout    string
	precision tsPrecision
}

// tsRules covers the raw timestamp shapes seen across the source files.
var tsRules = []tsRule{
	{"2006-01-02 15:04:05", tsFull},
	{"2006-01-02T15:04:05", tsFull},
	{"2006-01-02T15:04:05.999999", tsFull},
	{"2006/01/02 15:04:05", tsFull},
	{"2006/01/02 15:04", tsFull},
	{"2006-01-02", tsDateOnly},
	{"2006/01/02", tsDateOnly},
	{"15:04:05", tsTimeOnly},
	{"15:04", tsTimeOnly},
}

var (
	tsDateFragRe = regexp.MustCompile(`(\d{4}[-/]\d{2}[-/]\d{2})`)
	tsTimeFragRe = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}|\d{2}:\d{2})`)
)

// parseTimestamp parses raw timestamp text into a date-time plus the
// precision that was actually present. It never fails: an unparseable
// value returns tsNone and the zero time, and the caller substitutes
// context.
func parseTimestamp(raw string) (time.Time, tsPrecision) {
	s := strings.TrimSpace(raw)
	// Strip [HH:MM:SS] brackets.
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return time.Time{}, tsNone
	}

	for _, rule := range tsRules {
		if t, err := time.Parse(rule.layout, s); err == nil {
			return t, rule.precision
		}
	}

	// Salvage pass: pair any date-looking and time-looking fragments
	// inside mixed text.
	dateFrag := tsDateFragRe.FindString(s)
	timeFrag := tsTimeFragRe.FindString(s)
	switch {
	case dateFrag != "" && timeFrag != "":
		combined := strings.ReplaceAll(dateFrag, "/", "-") + " " + timeFrag
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
			if t, err := time.Parse(layout, combined); err == nil {
				return t, tsFull
			}
		}
	case dateFrag != "":
		if t, err := time.Parse("2006-01-02", strings.ReplaceAll(dateFrag, "/", "-")); err == nil {
			return t, tsDateOnly
		}
	case timeFrag != "":
		for _, layout := range []string{"15:04:05", "15:04"} {
			if t, err := time.Parse(layout, timeFrag); err == nil {
				return t, tsTimeOnly
			}
		}
	}

	return time.Time{}, tsNone
}

// withDate grafts the given date onto a time-only value.
func withDate(t time.Time, date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
