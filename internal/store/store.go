// Package store holds the process-wide event corpus. The corpus is
// append-only: events are immutable once added, so readers get copies and
// never block each other.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/mechsight/triage/internal/model"
)

// ErrNotFound is returned when no event matches a lookup.
var ErrNotFound = errors.New("event not found")

// Store is an in-memory, append-only event corpus.
type Store struct {
	mu     sync.RWMutex
	events []model.Event
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Append adds one event to the corpus.
func (s *Store) Append(e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// AppendBatch adds events preserving their order.
func (s *Store) AppendBatch(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

// All returns a copy of the corpus in insertion order.
func (s *Store) All() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// FindByRecordID returns the event with the given record id.
func (s *Store) FindByRecordID(recordID string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.RecordID == recordID {
			return e, nil
		}
	}
	return model.Event{}, ErrNotFound
}

// FindByEventID returns the first event with the given source-local event
// id. Event ids are not unique across files; record ids are the stable key.
func (s *Store) FindByEventID(eventID string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.EventID == eventID {
			return e, nil
		}
	}
	return model.Event{}, ErrNotFound
}

// TypeStats summarizes the stored events of one source kind.
type TypeStats struct {
	Type            model.SourceKind `json:"event_type"`
	Count           int              `json:"count"`
	FirstOccurrence *time.Time       `json:"first_occurrence,omitempty"`
	LastOccurrence  *time.Time       `json:"last_occurrence,omitempty"`
}

// StatsFor computes occurrence statistics for one event type.
func (s *Store) StatsFor(kind model.SourceKind) TypeStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := TypeStats{Type: kind}
	for _, e := range s.events {
		if e.Type != kind {
			continue
		}
		stats.Count++
		ts := e.Timestamp
		if stats.FirstOccurrence == nil || ts.Before(*stats.FirstOccurrence) {
			t := ts
			stats.FirstOccurrence = &t
		}
		if stats.LastOccurrence == nil || ts.After(*stats.LastOccurrence) {
			t := ts
			stats.LastOccurrence = &t
		}
	}
	return stats
}
