// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddRemoveKeepsCountsConsistent(t *testing.T) {
	g := NewTopicGraph()

	g.AddEntry([]string{"x", "y", "z"})
	g.AddEntry([]string{"x", "y"})

	assert.Equal(t, 2, g.ReferenceCount("x"))
	assert.Equal(t, 2, g.ReferenceCount("y"))
	assert.Equal(t, 1, g.ReferenceCount("z"))
	assert.Equal(t, 2, g.EdgeCount("x", "y"))
	assert.Equal(t, 2, g.EdgeCount("y", "x"), "edges are undirected")
	assert.Equal(t, 1, g.EdgeCount("x", "z"))
	assert.Equal(t, 3, g.Edges())

	g.RemoveEntry([]string{"x", "y", "z"})

	assert.Equal(t, 1, g.ReferenceCount("x"))
	assert.Equal(t, 1, g.EdgeCount("x", "y"))
	assert.Equal(t, 0, g.EdgeCount("x", "z"), "zero-count edge pruned")
	assert.Equal(t, 0, g.ReferenceCount("z"), "zero-count node pruned")
	assert.Equal(t, 2, g.Topics())

	g.RemoveEntry([]string{"x", "y"})
	assert.Equal(t, 0, g.Topics())
	assert.Equal(t, 0, g.Edges())
}

func TestRelatedDepthZeroAndUnknownTopic(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"x", "y"})

	assert.Empty(t, g.Related("x", 0))
	assert.Empty(t, g.Related("nonexistent", 3))
}

func TestRelatedBreadthFirstScenario(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"x", "y"})
	g.AddEntry([]string{"y", "z"})

	depth1 := g.Related("x", 1)
	assert.Equal(t, map[string]bool{"y": true}, depth1)

	depth2 := g.Related("x", 2)
	assert.True(t, depth2["y"])
	assert.True(t, depth2["z"])
	assert.False(t, depth2["x"], "origin excluded")
}

func TestRelatedMonotonicWithDepth(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"a", "b"})
	g.AddEntry([]string{"b", "c"})
	g.AddEntry([]string{"c", "d"})
	g.AddEntry([]string{"d", "a"}) // cycle

	for depth := 0; depth < 5; depth++ {
		smaller := g.Related("a", depth)
		larger := g.Related("a", depth+1)
		for topic := range smaller {
			assert.True(t, larger[topic], "depth %d result missing %q at depth %d", depth, topic, depth+1)
		}
	}
}

func TestRelatedHandlesCycles(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"a", "b"})
	g.AddEntry([]string{"b", "c"})
	g.AddEntry([]string{"c", "a"})

	related := g.Related("a", 10)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, related)
}

func TestTopicCountsOrdering(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"beta"})
	g.AddEntry([]string{"beta"})
	g.AddEntry([]string{"alpha"})
	g.AddEntry([]string{"gamma"})

	counts := g.TopicCounts()
	require.Len(t, counts, 3)
	assert.Equal(t, TopicCount{Topic: "beta", Count: 2}, counts[0])
	assert.Equal(t, TopicCount{Topic: "alpha", Count: 1}, counts[1], "ties break alphabetically")
	assert.Equal(t, TopicCount{Topic: "gamma", Count: 1}, counts[2])
}

func TestEdgeListDeterministic(t *testing.T) {
	g := NewTopicGraph()
	g.AddEntry([]string{"c", "a", "b"})

	edges := g.EdgeList()
	require.Len(t, edges, 3)
	assert.Equal(t, GraphEdge{Source: "a", Target: "b", Count: 1}, edges[0])
	assert.Equal(t, GraphEdge{Source: "a", Target: "c", Count: 1}, edges[1])
	assert.Equal(t, GraphEdge{Source: "b", Target: "c", Count: 1}, edges[2])
}

// Reference counts must track live entries through every store mutation.
func TestGraphInvariantThroughStoreLifecycle(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Add("entry a", AddOptions{Topics: []string{"x", "y"}})
	require.NoError(t, err)
	b, err := store.Add("entry b", AddOptions{Topics: []string{"y", "z"}})
	require.NoError(t, err)

	assertRefCounts := func(want map[string]int) {
		t.Helper()
		got := map[string]int{}
		for _, tc := range store.Topics() {
			got[tc.Topic] = tc.Count
		}
		assert.Equal(t, want, got)
	}

	assertRefCounts(map[string]int{"x": 1, "y": 2, "z": 1})

	_, err = store.Update(a.ID, UpdateOptions{Topics: []string{"x"}})
	require.NoError(t, err)
	assertRefCounts(map[string]int{"x": 1, "y": 1, "z": 1})

	store.Delete(b.ID)
	assertRefCounts(map[string]int{"x": 1})
}
