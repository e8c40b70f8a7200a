// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/teambrain/knowledgesync/pkg/types"
)

const (
	entriesFile = "entries.json"
	graphFile   = "graph.json"
	syncLogFile = "sync_log.json"

	// syncLogKeep bounds the persisted sync history.
	syncLogKeep = 100
)

// entriesDoc is the on-disk shape of the entries document.
type entriesDoc struct {
	Version string        `json:"version"`
	Updated time.Time     `json:"updated"`
	Agent   string        `json:"agent"`
	Entries []types.Entry `json:"entries"`
}

// graphDoc is the on-disk shape of the topic graph document. The graph is
// derived state; the document exists for external consumers, while load
// rebuilds the graph from the entries so the co-occurrence invariant can
// never drift.
type graphDoc struct {
	Nodes []TopicCount `json:"nodes"`
	Edges []GraphEdge  `json:"edges"`
}

// load reads the persisted documents from the storage directory. Missing
// files mean a fresh store. A document that exists but cannot be parsed is
// logged and skipped rather than blocking startup.
func (s *Store) load() error {
	path := filepath.Join(s.cfg.StorageDir, entriesFile)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fresh store.
	case err != nil:
		return &PersistError{Path: path, Err: err}
	default:
		var doc entriesDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Warn("could not parse entries document; starting empty", "path", path, "err", err)
			break
		}
		for i := range doc.Entries {
			entry := doc.Entries[i].Clone()
			if reason := malformed(&entry); reason != "" {
				log.Warn("dropping malformed persisted entry", "id", entry.ID, "reason", reason)
				continue
			}
			entry.Topics = types.NormalizeTopics(entry.Topics)
			s.insertLocked(&entry)
		}
	}

	logPath := filepath.Join(s.cfg.StorageDir, syncLogFile)
	if data, err := os.ReadFile(logPath); err == nil {
		if err := json.Unmarshal(data, &s.syncLog); err != nil {
			log.Warn("could not parse sync log; starting empty", "path", logPath, "err", err)
			s.syncLog = nil
		}
	}

	return nil
}

// saveLocked writes the three documents, each with a write-to-temp-then-
// rename so an interrupted write leaves the previous state intact.
func (s *Store) saveLocked() error {
	now := s.now()

	entries := make([]types.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, *entry)
	}
	// Deterministic file contents: oldest first, ID on ties.
	sortEntries(entries)

	docs := []struct {
		name string
		data any
	}{
		{entriesFile, entriesDoc{
			Version: snapshotVersion,
			Updated: now,
			Agent:   s.cfg.Agent,
			Entries: entries,
		}},
		{graphFile, graphDoc{
			Nodes: s.graph.TopicCounts(),
			Edges: s.graph.EdgeList(),
		}},
		{syncLogFile, tail(s.syncLog, syncLogKeep)},
	}

	for _, doc := range docs {
		if err := writeJSON(filepath.Join(s.cfg.StorageDir, doc.name), doc.data); err != nil {
			return err
		}
	}
	return nil
}

func sortEntries(entries []types.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Created.Before(entries[j].Created)
		}
		return entries[i].ID < entries[j].ID
	})
}

func tail(events []SyncEvent, n int) []SyncEvent {
	if len(events) <= n {
		if events == nil {
			return []SyncEvent{}
		}
		return events
	}
	return events[len(events)-n:]
}

// writeJSON commits data to path atomically: the document is written to a
// temp file in the same directory and renamed into place.
func writeJSON(path string, data any) error {
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: path, Err: err}
	}
	return nil
}
