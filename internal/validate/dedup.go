package validate

import (
	"github.com/mechsight/triage/internal/model"
)

// dedupKey groups recurrences of one underlying issue: same joint on the
// same calendar date (the 24-hour recurrence window).
type dedupKey struct {
	Joint string
	Date  string
}

func keyFor(e model.Event) dedupKey {
	return dedupKey{Joint: e.Joint, Date: e.Timestamp.Format("2006-01-02")}
}

// group accumulates events sharing a dedup key.
type group struct {
	kept  model.Event
	count int
}

// Deduplicate collapses events sharing (joint, calendar date) into one
// representative with RecurrenceCount set to the group size. The
// representative is chosen deterministically: highest confidence flag,
// then earliest timestamp, then first encountered. Output preserves
// first-occurrence order; the sum of recurrence counts equals the input
// length.
func Deduplicate(events []model.Event) []model.Event {
	if len(events) == 0 {
		return nil
	}

	var order []dedupKey
	groups := make(map[dedupKey]*group)

	for _, e := range events {
		key := keyFor(e)
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{kept: e, count: 1}
			order = append(order, key)
			continue
		}
		g.count++
		if betterRepresentative(e, g.kept) {
			g.kept = e
		}
	}

	result := make([]model.Event, 0, len(order))
	for _, key := range order {
		g := groups[key]
		e := g.kept
		e.RecurrenceCount = g.count
		result = append(result, e)
	}
	return result
}

// betterRepresentative reports whether candidate should replace current
// as the kept event for its group.
func betterRepresentative(candidate, current model.Event) bool {
	if candidate.ConfidenceFlag.Stronger(current.ConfidenceFlag) {
		return true
	}
	if current.ConfidenceFlag.Stronger(candidate.ConfidenceFlag) {
		return false
	}
	return candidate.Timestamp.Before(current.Timestamp)
}

// DedupStats summarizes how much a batch collapsed.
type DedupStats struct {
	TotalEvents     int            `json:"total_events"`
	UniqueEvents    int            `json:"unique_events"`
	Duplicates      int            `json:"duplicates"`
	DuplicationRate float64        `json:"duplication_rate"` // percent
	Recurrences     map[string]int `json:"recurrence_stats"` // key -> count, groups with >1 only
}

// Stats computes deduplication statistics without modifying events.
func Stats(events []model.Event) DedupStats {
	stats := DedupStats{Recurrences: map[string]int{}}
	stats.TotalEvents = len(events)
	if len(events) == 0 {
		return stats
	}

	counts := make(map[dedupKey]int)
	for _, e := range events {
		counts[keyFor(e)]++
	}
	stats.UniqueEvents = len(counts)
	stats.Duplicates = stats.TotalEvents - stats.UniqueEvents
	stats.DuplicationRate = round2(float64(stats.Duplicates) / float64(stats.TotalEvents) * 100)

	for key, c := range counts {
		if c > 1 {
			stats.Recurrences[key.Joint+"_"+key.Date] = c
		}
	}
	return stats
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
