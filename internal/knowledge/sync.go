// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/teambrain/knowledgesync/pkg/types"
)

// snapshotVersion is the format version written into exports.
const snapshotVersion = "1.0"

// Snapshot is the serialized state exchanged between two stores. It carries
// every entry, expired ones included, so a merge sees the complete picture.
type Snapshot struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Agent      string        `json:"agent" yaml:"agent"`
	Entries    []types.Entry `json:"entries" yaml:"entries"`
}

// MergeSummary reports what an import did.
type MergeSummary struct {
	// Added counts incoming entries whose ID was absent locally.
	Added int `json:"added" yaml:"added"`

	// Updated counts local entries overwritten by strictly newer incoming ones.
	Updated int `json:"updated" yaml:"updated"`

	// Conflicts counts equal-timestamp entries whose content differs. The
	// local copy wins; the incoming copy is retained under an alternate ID.
	Conflicts int `json:"conflicts" yaml:"conflicts"`

	// Skipped counts malformed incoming records.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// SyncEvent is one line of the sync history.
type SyncEvent struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Direction string    `json:"direction" yaml:"direction"`
	Peer      string    `json:"peer,omitempty" yaml:"peer,omitempty"`
	Entries   int       `json:"entries" yaml:"entries"`
	Added     int       `json:"added,omitempty" yaml:"added,omitempty"`
	Updated   int       `json:"updated,omitempty" yaml:"updated,omitempty"`
	Conflicts int       `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Skipped   int       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// ExportForSync serializes all entries, sorted by creation time then ID so
// exports are deterministic, and records the export in the sync log.
func (s *Store) ExportForSync() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]types.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry.Clone())
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Created.Before(entries[j].Created)
		}
		return entries[i].ID < entries[j].ID
	})

	snap := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: s.now(),
		Agent:      s.cfg.Agent,
		Entries:    entries,
	}

	s.syncLog = append(s.syncLog, SyncEvent{
		Timestamp: snap.ExportedAt,
		Direction: "export",
		Entries:   len(entries),
	})
	s.persistLocked()

	return snap
}

// ImportFromSync merges a snapshot into the store. Per incoming entry:
// an absent ID is inserted; a strictly newer incoming entry overwrites the
// local one; a strictly newer local entry is kept; equal timestamps with
// differing content are a conflict: the local copy wins and the incoming
// copy is retained under a synthesized alternate ID so no content is lost
// silently. Malformed records are skipped and counted, never fatal. The
// topic graph is kept consistent with every insert and overwrite.
func (s *Store) ImportFromSync(snap Snapshot) MergeSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum MergeSummary

	for i := range snap.Entries {
		incoming := snap.Entries[i].Clone()
		if reason := malformed(&incoming); reason != "" {
			log.Warn("skipping malformed sync record", "id", incoming.ID, "reason", reason)
			sum.Skipped++
			continue
		}
		incoming.Topics = types.NormalizeTopics(incoming.Topics)

		local, exists := s.entries[incoming.ID]
		switch {
		case !exists:
			s.insertLocked(&incoming)
			sum.Added++

		case incoming.Updated.After(local.Updated):
			s.graph.RemoveEntry(local.Topics)
			s.graph.AddEntry(incoming.Topics)
			seq := s.seq[incoming.ID]
			s.entries[incoming.ID] = &incoming
			s.seq[incoming.ID] = seq
			sum.Updated++

		case incoming.Updated.Equal(local.Updated) && incoming.Content != local.Content:
			// Local wins; keep the loser under an alternate ID so the
			// content survives for manual reconciliation. Re-importing the
			// same snapshot must not retain a second copy.
			sum.Conflicts++
			if s.hasConflictCopy(incoming.ID, incoming.Content) {
				continue
			}
			alt := incoming
			alt.ID = incoming.ID + "-conflict-" + uuid.NewString()[:8]
			if alt.Metadata == nil {
				alt.Metadata = make(map[string]any, 1)
			}
			alt.Metadata["conflict_of"] = incoming.ID
			s.insertLocked(&alt)
			log.Warn("sync conflict: equal timestamps, differing content",
				"id", incoming.ID, "retained_as", alt.ID)

			// Strictly newer local entry: incoming discarded.
		}
	}

	s.syncLog = append(s.syncLog, SyncEvent{
		Timestamp: s.now(),
		Direction: "import",
		Peer:      snap.Agent,
		Entries:   len(snap.Entries),
		Added:     sum.Added,
		Updated:   sum.Updated,
		Conflicts: sum.Conflicts,
		Skipped:   sum.Skipped,
	})
	s.persistLocked()

	return sum
}

// hasConflictCopy reports whether a retained conflict copy of the given
// entry with identical content already exists.
func (s *Store) hasConflictCopy(id, content string) bool {
	for _, entry := range s.entries {
		if entry.Content == content && entry.Metadata != nil && entry.Metadata["conflict_of"] == id {
			return true
		}
	}
	return false
}

// malformed returns a non-empty reason when a sync record is missing
// required fields or carries out-of-domain values.
func malformed(e *types.Entry) string {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return "missing entry_id"
	case strings.TrimSpace(e.Content) == "":
		return "missing content"
	case !e.Category.Valid():
		return fmt.Sprintf("unknown category %q", e.Category)
	case e.Confidence < 0 || e.Confidence > 1:
		return fmt.Sprintf("confidence %v out of range", e.Confidence)
	case e.Created.IsZero() || e.Updated.IsZero():
		return "missing timestamps"
	}
	return ""
}

// WriteSnapshot writes a snapshot to path as JSON, or as YAML when the
// extension is .yaml or .yml.
func WriteSnapshot(snap Snapshot, path string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(snap)
	default:
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

// ReadSnapshot loads a snapshot from a JSON or YAML file.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, &PersistError{Path: path, Err: err}
	}
	var snap Snapshot
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}
