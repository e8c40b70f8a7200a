// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teambrain/knowledgesync/pkg/types"
)

var fixedNow = time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)

// newTestStore returns a store writing to a throwaway directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.StoreConfig{
		Agent:      "atlas",
		StorageDir: t.TempDir(),
		AutoSync:   true,
	})
	require.NoError(t, err)
	return store
}

func conf(v float64) *float64 {
	return &v
}

func TestAddGetRoundTrip(t *testing.T) {
	store := newTestStore(t)

	added, err := store.Add("TokenTracker uses ~$0.50/day on average", AddOptions{
		Category: types.CategoryFinding,
		Topics:   []string{" TokenTracker ", "COSTS", "costs"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "ATLAS", added.Source, "source defaults to the configured agent, uppercased")
	assert.Equal(t, types.CategoryFinding, added.Category)
	assert.Equal(t, []string{"tokentracker", "costs"}, added.Topics, "topics normalized and deduplicated")
	assert.Equal(t, types.DefaultConfidence, added.Confidence)
	assert.Equal(t, added.Created, added.Updated)

	got, err := store.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Content, got.Content)
	assert.Equal(t, added.Category, got.Category)
	assert.Equal(t, added.Topics, got.Topics)
	assert.Equal(t, added.Confidence, got.Confidence)
}

func TestAddRejectsInvalidCategory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("some knowledge", AddOptions{Category: types.ParseCategory("GOSSIP")})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "category", validation.Field)
	assert.Equal(t, 0, store.Len(), "store unchanged after rejected add")
}

func TestAddRejectsOutOfRangeConfidence(t *testing.T) {
	store := newTestStore(t)

	for _, v := range []float64{1.5, -0.1} {
		_, err := store.Add("some knowledge", AddOptions{Confidence: conf(v)})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation, "confidence %v", v)
		assert.Equal(t, "confidence", validation.Field)
	}
	assert.Equal(t, 0, store.Len())
}

func TestAddRejectsEmptyContent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("   \t ", AddOptions{})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Field)
	assert.Equal(t, 0, store.Len())
}

func TestAddAcceptsZeroConfidence(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("uncertain rumor", AddOptions{Confidence: conf(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.Confidence)
}

func TestAddExplicitSource(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("FORGE owns the build pipeline", AddOptions{Source: "forge"})
	require.NoError(t, err)
	assert.Equal(t, "FORGE", entry.Source)
}

func TestAddIdenticalContentYieldsDistinctEntries(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return fixedNow } // force the ID collision path

	first, err := store.Add("duplicate content", AddOptions{})
	require.NoError(t, err)
	second, err := store.Add("duplicate content", AddOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, store.Len())
}

func TestDeleteIdempotent(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("to be removed", AddOptions{Topics: []string{"temp"}})
	require.NoError(t, err)

	assert.True(t, store.Delete(entry.ID))
	_, err = store.Get(entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, store.Delete(entry.ID))
	assert.False(t, store.Delete(entry.ID), "repeated delete stays false")
}

func TestDeleteRemovesGraphContribution(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("paired topics", AddOptions{Topics: []string{"alpha", "beta"}})
	require.NoError(t, err)

	store.Delete(entry.ID)

	assert.Empty(t, store.Topics())
	assert.Empty(t, store.RelatedTopics("alpha", 1))
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return fixedNow }

	entry, err := store.Add("original content", AddOptions{
		Category: types.CategoryFact,
		Topics:   []string{"alpha"},
	})
	require.NoError(t, err)

	store.now = func() time.Time { return fixedNow.Add(time.Hour) }
	updated, err := store.Update(entry.ID, UpdateOptions{
		Content:  "revised content",
		Category: types.CategoryInsight,
	})
	require.NoError(t, err)

	assert.Equal(t, "revised content", updated.Content)
	assert.Equal(t, types.CategoryInsight, updated.Category)
	assert.Equal(t, []string{"alpha"}, updated.Topics, "topics untouched")
	assert.Equal(t, entry.Confidence, updated.Confidence)
	assert.Equal(t, entry.Created, updated.Created)
	assert.True(t, updated.Updated.After(updated.Created))
}

func TestUpdateTopicsAdjustsGraphByDiff(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("entry one", AddOptions{Topics: []string{"alpha", "beta"}})
	require.NoError(t, err)
	_, err = store.Add("entry two", AddOptions{Topics: []string{"beta"}})
	require.NoError(t, err)

	_, err = store.Update(entry.ID, UpdateOptions{Topics: []string{"alpha", "gamma"}})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, tc := range store.Topics() {
		counts[tc.Topic] = tc.Count
	}
	assert.Equal(t, map[string]int{"alpha": 1, "beta": 1, "gamma": 1}, counts)

	related := store.RelatedTopics("alpha", 1)
	assert.True(t, related["gamma"])
	assert.False(t, related["beta"], "old edge removed")
}

func TestUpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update("no-such-id", UpdateOptions{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRejectsBadValuesWithoutMutating(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("stable content", AddOptions{})
	require.NoError(t, err)

	_, err = store.Update(entry.ID, UpdateOptions{
		Content:    "should not land",
		Confidence: conf(2.0),
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	got, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable content", got.Content, "validation failure leaves the entry unchanged")
}

func TestUpdateRejectsWhitespaceOnlyContent(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("content worth keeping", AddOptions{})
	require.NoError(t, err)

	_, err = store.Update(entry.ID, UpdateOptions{Content: "   \t "})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Field)

	got, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "content worth keeping", got.Content, "entry never holds empty content")

	// The entry must also survive a reload; an emptied record would be
	// dropped as malformed.
	reloaded, err := NewStore(store.cfg)
	require.NoError(t, err)
	_, err = reloaded.Get(entry.ID)
	assert.NoError(t, err)
}

func TestUpdateMergesMetadata(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Add("entry", AddOptions{Metadata: map[string]any{"a": 1, "b": 1}})
	require.NoError(t, err)

	updated, err := store.Update(entry.ID, UpdateOptions{Metadata: map[string]any{"b": 2, "c": 3}})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, updated.Metadata)
}

func TestCleanupExpired(t *testing.T) {
	store := newTestStore(t)

	expired, err := store.Add("already stale", AddOptions{
		ExpiresInDays: -1,
		Topics:        []string{"stale"},
	})
	require.NoError(t, err)
	kept, err := store.Add("still fresh", AddOptions{ExpiresInDays: 30})
	require.NoError(t, err)
	forever, err := store.Add("no expiry", AddOptions{})
	require.NoError(t, err)

	removed := store.CleanupExpired()
	assert.Equal(t, 1, removed)

	_, err = store.Get(expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(kept.ID)
	assert.NoError(t, err)
	_, err = store.Get(forever.ID)
	assert.NoError(t, err)

	assert.Empty(t, store.Topics(), "expired entry's graph contribution removed")
	assert.Equal(t, 0, store.CleanupExpired(), "second cleanup finds nothing")
}

func TestResolveToleratesDanglingReferences(t *testing.T) {
	store := newTestStore(t)

	target, err := store.Add("referenced entry", AddOptions{})
	require.NoError(t, err)
	holder, err := store.Add("referencing entry", AddOptions{
		References: []string{target.ID, "dangling-id"},
	})
	require.NoError(t, err)

	// Deleting the target leaves a second dangling reference behind.
	store.Delete(target.ID)

	found, dangling, err := store.Resolve(holder.ID)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []string{target.ID, "dangling-id"}, dangling)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("entry", AddOptions{Topics: []string{"alpha"}})
	require.NoError(t, err)
	store.ExportForSync()

	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Topics())
	assert.Equal(t, 0, store.Stats().SyncCount)
}

func TestStatsAggregates(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add("from atlas", AddOptions{Category: types.CategoryFinding, Topics: []string{"a", "b"}, Confidence: conf(1.0)})
	require.NoError(t, err)
	_, err = store.Add("from forge", AddOptions{Source: "FORGE", Category: types.CategoryFinding, Confidence: conf(0.5)})
	require.NoError(t, err)
	_, err = store.Add("expired one", AddOptions{ExpiresInDays: -1, Confidence: conf(0.1)})
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.TotalTopics)
	assert.Equal(t, 1, stats.TotalRelationships)
	assert.InDelta(t, 0.75, stats.AverageConfidence, 1e-9, "average covers non-expired entries only")
	assert.Equal(t, map[string]int{"ATLAS": 2, "FORGE": 1}, stats.BySource)
	assert.Equal(t, 2, stats.ByCategory["FINDING"])
	assert.Equal(t, 0, stats.SyncCount)
	assert.Nil(t, stats.LastSync)
}

func TestGetNotFoundError(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
