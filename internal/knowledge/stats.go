// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import "time"

// Stats aggregates the state of the store.
type Stats struct {
	TotalEntries       int            `json:"total_entries" yaml:"total_entries"`
	TotalTopics        int            `json:"total_topics" yaml:"total_topics"`
	TotalRelationships int            `json:"total_relationships" yaml:"total_relationships"`
	AverageConfidence  float64        `json:"average_confidence" yaml:"average_confidence"`
	BySource           map[string]int `json:"entries_by_source" yaml:"entries_by_source"`
	ByCategory         map[string]int `json:"entries_by_category" yaml:"entries_by_category"`
	SyncCount          int            `json:"sync_count" yaml:"sync_count"`
	LastSync           *time.Time     `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
}

// Stats returns entry, topic, and edge totals, per-source and per-category
// counts, and sync history. Average confidence covers non-expired entries
// only.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		TotalEntries:       len(s.entries),
		TotalTopics:        s.graph.Topics(),
		TotalRelationships: s.graph.Edges(),
		BySource:           make(map[string]int),
		ByCategory:         make(map[string]int),
		SyncCount:          len(s.syncLog),
	}

	now := s.now()
	var confidenceSum float64
	live := 0
	for _, entry := range s.entries {
		stats.BySource[entry.Source]++
		stats.ByCategory[string(entry.Category)]++
		if !entry.IsExpired(now) {
			confidenceSum += entry.Confidence
			live++
		}
	}
	if live > 0 {
		stats.AverageConfidence = confidenceSum / float64(live)
	}

	if n := len(s.syncLog); n > 0 {
		last := s.syncLog[n-1].Timestamp
		stats.LastSync = &last
	}

	return stats
}

// SyncLog returns a copy of the recorded sync events, oldest first.
func (s *Store) SyncLog() []SyncEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SyncEvent(nil), s.syncLog...)
}
