package corrections

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Store holds the override records and history for one session.
// Overrides and history live in separate maps, so a key can never be
// mistaken for another key's history.
//
// A Store is not safe for concurrent use; its owning session serializes access.
type Store struct {
	overrides map[string]CorrectionEntry
	history   map[string][]HistoryEvent
	now       Clock
}

// NewStore creates an empty Store. A nil clock uses time.Now.
func NewStore(now Clock) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		overrides: make(map[string]CorrectionEntry),
		history:   make(map[string][]HistoryEvent),
		now:       now,
	}
}

func (s *Store) timestamp() string {
	return s.now().Format(TimestampLayout)
}

// RecordHistory appends a history event for key. Existing events are never
// reordered or removed.
func (s *Store) RecordHistory(key, original, corrected string) {
	s.history[key] = append(s.history[key], HistoryEvent{
		Timestamp:   s.timestamp(),
		Image:       key,
		Original:    original,
		Corrected:   corrected,
		PatternType: PatternUserCorrection,
	})
}

// SaveOverride records history for every call, then replaces the override for
// key when corrected contains non-whitespace text. Blank corrections are logged
// but leave the override untouched.
func (s *Store) SaveOverride(key, original, corrected string) {
	s.RecordHistory(key, original, corrected)

	if strings.TrimSpace(corrected) == "" {
		return
	}

	s.overrides[key] = CorrectionEntry{
		Original:  original,
		Corrected: corrected,
		Timestamp: s.timestamp(),
	}
}

// SaveDemo writes the fixed demo override.
func (s *Store) SaveDemo() {
	s.SaveOverride(DemoKey, DemoOriginal, DemoCorrected)
}

// Override returns the override stored for key.
func (s *Store) Override(key string) (CorrectionEntry, bool) {
	entry, ok := s.overrides[key]
	return entry, ok
}

// ListOverrideKeys returns every key holding an override, sorted.
func (s *Store) ListOverrideKeys() []string {
	keys := make([]string, 0, len(s.overrides))
	keys = slices.AppendSeq(keys, maps.Keys(s.overrides))
	slices.Sort(keys)
	return keys
}

// Len returns the number of overrides.
func (s *Store) Len() int {
	return len(s.overrides)
}

// DeleteOverride removes the override for key and keeps its history.
func (s *Store) DeleteOverride(key string) {
	delete(s.overrides, key)
}

// DeleteOverrideAndHistory removes the override and the history for key.
func (s *Store) DeleteOverrideAndHistory(key string) {
	delete(s.overrides, key)
	delete(s.history, key)
}

// ClearAll discards every override and all history.
func (s *Store) ClearAll() {
	s.overrides = make(map[string]CorrectionEntry)
	s.history = make(map[string][]HistoryEvent)
}

// History returns a copy of the events for key, oldest first.
func (s *Store) History(key string) []HistoryEvent {
	events := make([]HistoryEvent, len(s.history[key]))
	copy(events, s.history[key])
	return events
}

// RecentHistory returns a copy of the events for key, most recent first.
func (s *Store) RecentHistory(key string) []HistoryEvent {
	events := s.History(key)
	slices.Reverse(events)
	return events
}

// Result builds the post-mutation view-model for key.
func (s *Store) Result(key string) Result {
	r := Result{
		Key:     key,
		History: len(s.history[key]),
		Keys:    s.ListOverrideKeys(),
	}
	if entry, ok := s.overrides[key]; ok {
		r.Override = &entry
		r.Overridden = true
	}
	return r
}

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Overrides: maps.Clone(s.overrides),
		History:   make(map[string][]HistoryEvent, len(s.history)),
	}
	for key, events := range s.history {
		snap.History[key] = append([]HistoryEvent{}, events...)
	}
	return snap
}
