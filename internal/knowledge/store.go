// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge implements the entry store, the derived topic
// co-occurrence graph, the query engine, and the cross-store merge
// protocol. The Store owns the entry map and the graph exclusively;
// all mutations are serialized behind a store-wide lock.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/teambrain/knowledgesync/pkg/types"
)

// Store holds knowledge entries and keeps the topic graph consistent with
// them. Reads and writes acquire the same lock, so a query never observes
// a partially applied mutation.
type Store struct {
	mu  sync.Mutex
	cfg types.StoreConfig

	// now is the clock; tests substitute a fixed one.
	now func() time.Time

	entries map[string]*types.Entry
	seq     map[string]int // insertion order, for deterministic tie-breaks
	nextSeq int

	graph   *TopicGraph
	subs    map[string][]subscriber
	syncLog []SyncEvent

	lastPersistErr error
}

// NewStore creates a store backed by cfg.StorageDir, loading any previously
// persisted state. Missing documents are not an error; unreadable ones are
// logged and skipped so a corrupt file never blocks startup.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.Agent == "" {
		cfg.Agent = types.DefaultAgent
	}
	cfg.Agent = strings.ToUpper(cfg.Agent)
	if cfg.StorageDir == "" {
		cfg.StorageDir = types.DefaultStorageDir()
	}
	if cfg.DefaultConfidence == 0 {
		cfg.DefaultConfidence = types.DefaultConfidence
	}
	if cfg.DefaultConfidence < 0 || cfg.DefaultConfidence > 1 {
		return nil, &ValidationError{Field: "confidence", Message: fmt.Sprintf("default %v out of range [0,1]", cfg.DefaultConfidence)}
	}

	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	s := &Store{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*types.Entry),
		seq:     make(map[string]int),
		graph:   NewTopicGraph(),
		subs:    make(map[string][]subscriber),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Agent returns the store's configured source identity.
func (s *Store) Agent() string {
	return s.cfg.Agent
}

// AddOptions holds the optional fields of Add. The zero value yields a FACT
// entry from the configured agent at the default confidence.
type AddOptions struct {
	// Source overrides the store's configured agent identity.
	Source string

	// Category defaults to FACT when empty.
	Category types.Category

	// Topics are normalized before storage.
	Topics []string

	// Confidence must be in [0,1] when set; nil uses the configured default.
	Confidence *float64

	// ExpiresInDays, when non-zero, sets the expiry relative to now.
	// Negative values produce an already expired entry.
	ExpiresInDays int

	// References lists related entry IDs. Not checked for existence.
	References []string

	// Metadata is stored opaquely on the entry.
	Metadata map[string]any
}

// Add validates and stores a new entry, updates the topic graph, fires
// topic subscriptions, and persists when auto-sync is on. Validation
// failures leave the store unchanged. A persistence failure does not fail
// the operation; it is logged and remembered (see Save).
func (s *Store) Add(content string, opts AddOptions) (types.Entry, error) {
	entry, cbs, err := s.addLocked(content, opts)
	if err != nil {
		return types.Entry{}, err
	}
	dispatch(cbs, entry)
	return entry, nil
}

func (s *Store) addLocked(content string, opts AddOptions) (types.Entry, []subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" {
		return types.Entry{}, nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}

	category := opts.Category
	if category == "" {
		category = types.CategoryFact
	}
	if !category.Valid() {
		return types.Entry{}, nil, &ValidationError{Field: "category", Message: fmt.Sprintf("%q is not a known category", category)}
	}

	confidence := s.cfg.DefaultConfidence
	if opts.Confidence != nil {
		confidence = *opts.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return types.Entry{}, nil, &ValidationError{Field: "confidence", Message: fmt.Sprintf("%v out of range [0,1]", confidence)}
	}

	source := strings.ToUpper(strings.TrimSpace(opts.Source))
	if source == "" {
		source = s.cfg.Agent
	}

	now := s.now()
	var expires *time.Time
	if opts.ExpiresInDays != 0 {
		exp := now.AddDate(0, 0, opts.ExpiresInDays)
		expires = &exp
	}

	entry := &types.Entry{
		ID:         s.newID(content, source, now),
		Content:    content,
		Source:     source,
		Category:   category,
		Topics:     types.NormalizeTopics(opts.Topics),
		Confidence: confidence,
		Created:    now,
		Updated:    now,
		Expires:    expires,
		References: append([]string(nil), opts.References...),
	}
	if opts.Metadata != nil {
		entry.Metadata = make(map[string]any, len(opts.Metadata))
		for k, v := range opts.Metadata {
			entry.Metadata[k] = v
		}
	}

	s.insertLocked(entry)
	s.persistLocked()

	return entry.Clone(), s.subscribersFor(entry), nil
}

// newID derives an entry ID from content, source, and creation time. On the
// unlikely collision it falls back to a random identifier.
func (s *Store) newID(content, source string, created time.Time) string {
	sum := sha256.Sum256([]byte(content + ":" + source + ":" + created.UTC().Format(time.RFC3339Nano)))
	id := hex.EncodeToString(sum[:])[:16]
	if _, taken := s.entries[id]; taken {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	}
	return id
}

// insertLocked places an entry into the map and adds its graph contribution.
func (s *Store) insertLocked(entry *types.Entry) {
	s.entries[entry.ID] = entry
	s.seq[entry.ID] = s.nextSeq
	s.nextSeq++
	s.graph.AddEntry(entry.Topics)
}

// removeLocked removes an entry and its graph contribution. Other entries'
// references to the removed ID are left dangling on purpose.
func (s *Store) removeLocked(id string) {
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	s.graph.RemoveEntry(entry.Topics)
	delete(s.entries, id)
	delete(s.seq, id)
}

// UpdateOptions selects the fields Update changes. Unset fields are left
// as they are.
type UpdateOptions struct {
	// Content replaces the entry text when non-empty.
	Content string

	// Category replaces the category when non-empty.
	Category types.Category

	// Topics replaces the topic set when non-nil. An empty non-nil slice
	// clears all topics.
	Topics []string

	// Confidence replaces the score when non-nil.
	Confidence *float64

	// Metadata is merged key-by-key into the existing map.
	Metadata map[string]any
}

// Update applies the supplied fields to an existing entry, revalidating
// changed values and adjusting the topic graph by diff when the topic set
// changes. Updated is refreshed. Returns ErrNotFound for an unknown ID.
func (s *Store) Update(id string, opts UpdateOptions) (types.Entry, error) {
	entry, cbs, err := s.updateLocked(id, opts)
	if err != nil {
		return types.Entry{}, err
	}
	dispatch(cbs, entry)
	return entry, nil
}

func (s *Store) updateLocked(id string, opts UpdateOptions) (types.Entry, []subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return types.Entry{}, nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	// Validate everything before touching the entry.
	content := strings.TrimSpace(opts.Content)
	if opts.Content != "" && content == "" {
		return types.Entry{}, nil, &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if opts.Category != "" && !opts.Category.Valid() {
		return types.Entry{}, nil, &ValidationError{Field: "category", Message: fmt.Sprintf("%q is not a known category", opts.Category)}
	}
	if opts.Confidence != nil && (*opts.Confidence < 0 || *opts.Confidence > 1) {
		return types.Entry{}, nil, &ValidationError{Field: "confidence", Message: fmt.Sprintf("%v out of range [0,1]", *opts.Confidence)}
	}

	if content != "" {
		entry.Content = content
	}
	if opts.Category != "" {
		entry.Category = opts.Category
	}
	if opts.Confidence != nil {
		entry.Confidence = *opts.Confidence
	}
	if opts.Topics != nil {
		newTopics := types.NormalizeTopics(opts.Topics)
		s.graph.RemoveEntry(entry.Topics)
		s.graph.AddEntry(newTopics)
		entry.Topics = newTopics
	}
	if opts.Metadata != nil {
		if entry.Metadata == nil {
			entry.Metadata = make(map[string]any, len(opts.Metadata))
		}
		for k, v := range opts.Metadata {
			entry.Metadata[k] = v
		}
	}

	entry.Updated = s.now()
	s.persistLocked()

	return entry.Clone(), s.subscribersFor(entry), nil
}

// Delete removes an entry and its topic-graph contribution. It reports
// whether an entry existed; deleting a missing ID is not an error.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	s.removeLocked(id)
	s.persistLocked()
	return true
}

// Get returns the entry with the given ID, or ErrNotFound.
func (s *Store) Get(id string) (types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return types.Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return entry.Clone(), nil
}

// Resolve looks up an entry's references. References are weak, so missing
// IDs are returned as dangling rather than failing the call.
func (s *Store) Resolve(id string) (found []types.Entry, dangling []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	for _, ref := range entry.References {
		if target, ok := s.entries[ref]; ok {
			found = append(found, target.Clone())
		} else {
			dangling = append(dangling, ref)
		}
	}
	return found, dangling, nil
}

// CleanupExpired removes every entry whose expiry is in the past, keeping
// the graph consistent, and returns the number removed.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []string
	for id, entry := range s.entries {
		if entry.IsExpired(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.removeLocked(id)
	}
	if len(expired) > 0 {
		s.persistLocked()
	}
	return len(expired)
}

// Clear wipes all entries, the graph, and the sync log, then persists the
// empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*types.Entry)
	s.seq = make(map[string]int)
	s.nextSeq = 0
	s.graph = NewTopicGraph()
	s.syncLog = nil
	s.persistLocked()
}

// Len returns the number of entries, including expired ones not yet
// cleaned up.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persistLocked saves the store when auto-sync is on. A failure is logged
// and remembered but does not roll back the in-memory mutation.
func (s *Store) persistLocked() {
	if !s.cfg.AutoSync {
		return
	}
	if err := s.saveLocked(); err != nil {
		s.lastPersistErr = err
		log.Warn("auto-sync persist failed; in-memory state is intact", "dir", s.cfg.StorageDir, "err", err)
	}
}

// Save persists the store's documents and returns any failure. Callers that
// need durability check this; mutating operations only log persist failures.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(); err != nil {
		return err
	}
	s.lastPersistErr = nil
	return nil
}

// PersistErr returns the most recent auto-sync persistence failure, or nil.
// Save clears it on success.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}
