// Package corrections implements the session-scoped correction store: per-key
// override records for corrected text plus an append-only history of every
// save attempt.
package corrections

import "time"

const (
	// HistorySuffix marks history entries when a snapshot is flattened into a
	// single key namespace.
	HistorySuffix = "::history"

	// PatternUserCorrection is the pattern type recorded on every history event.
	PatternUserCorrection = "user_correction"

	// TimestampLayout is the ISO-8601 layout used for all stored timestamps.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

	// MaxKeyLength bounds image keys accepted at the HTTP boundary.
	MaxKeyLength = 256
)

// Values written by the "add dummy override" action.
const (
	DemoKey       = "TEST_KEY__DEMO"
	DemoOriginal  = "orig text"
	DemoCorrected = "corrected text"
)

// CorrectionEntry is the override record for an image key.
// Corrected is never blank for a stored entry.
type CorrectionEntry struct {
	Original  string `json:"original" yaml:"original"`
	Corrected string `json:"corrected" yaml:"corrected"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// HistoryEvent records a single save attempt against an image key.
type HistoryEvent struct {
	Timestamp   string `json:"timestamp" yaml:"timestamp"`
	Image       string `json:"image" yaml:"image"`
	Original    string `json:"original" yaml:"original"`
	Corrected   string `json:"corrected" yaml:"corrected"`
	PatternType string `json:"pattern_type" yaml:"pattern_type"`
}

// Snapshot is a detached copy of a Store for debug display.
// It contains only strings, maps, and slices.
type Snapshot struct {
	Overrides map[string]CorrectionEntry `json:"overrides" yaml:"overrides"`
	History   map[string][]HistoryEvent  `json:"history" yaml:"history"`
}

// Flatten renders the snapshot in the single-namespace form, where history for
// key K lives at K + HistorySuffix alongside the override at K.
func (s Snapshot) Flatten() map[string]any {
	flat := make(map[string]any, len(s.Overrides)+len(s.History))
	for key, entry := range s.Overrides {
		flat[key] = entry
	}
	for key, events := range s.History {
		flat[key+HistorySuffix] = events
	}
	return flat
}

// SaveCommand carries the text submitted for an image key.
// Missing fields decode as empty strings.
type SaveCommand struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// Result is the view-model returned after a mutation: the key's current
// override (if any), its history length, and the sorted override keys.
type Result struct {
	Key        string           `json:"key"`
	Override   *CorrectionEntry `json:"override"`
	History    int              `json:"history"`
	Overridden bool             `json:"overridden"`
	Keys       []string         `json:"keys"`
}

// Clock supplies the current time for timestamps.
type Clock func() time.Time
