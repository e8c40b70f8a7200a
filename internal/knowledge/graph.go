// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import "sort"

// TopicGraph is the derived co-occurrence index over entry topics. Nodes
// carry a reference count (live entries containing the topic); undirected
// edges carry a co-occurrence count (live entries containing both topics).
// The graph is maintained incrementally: contributions are added when an
// entry arrives and removed when it leaves, and zero-count nodes and edges
// are pruned so counts never go negative.
type TopicGraph struct {
	nodes map[string]int
	adj   map[string]map[string]int
}

// NewTopicGraph returns an empty graph.
func NewTopicGraph() *TopicGraph {
	return &TopicGraph{
		nodes: make(map[string]int),
		adj:   make(map[string]map[string]int),
	}
}

// AddEntry records one entry's contribution: every topic's reference count
// and every pairwise edge count is incremented. Topics must be normalized
// and duplicate-free.
func (g *TopicGraph) AddEntry(topics []string) {
	for _, t := range topics {
		g.nodes[t]++
	}
	for i, a := range topics {
		for _, b := range topics[i+1:] {
			g.bump(a, b, 1)
		}
	}
}

// RemoveEntry reverses AddEntry for the same topic set.
func (g *TopicGraph) RemoveEntry(topics []string) {
	for _, t := range topics {
		if g.nodes[t]--; g.nodes[t] <= 0 {
			delete(g.nodes, t)
		}
	}
	for i, a := range topics {
		for _, b := range topics[i+1:] {
			g.bump(a, b, -1)
		}
	}
}

func (g *TopicGraph) bump(a, b string, delta int) {
	g.bumpDirected(a, b, delta)
	g.bumpDirected(b, a, delta)
}

func (g *TopicGraph) bumpDirected(from, to string, delta int) {
	m := g.adj[from]
	if m == nil {
		if delta <= 0 {
			return
		}
		m = make(map[string]int)
		g.adj[from] = m
	}
	if m[to] += delta; m[to] <= 0 {
		delete(m, to)
		if len(m) == 0 {
			delete(g.adj, from)
		}
	}
}

// Related returns the set of topics reachable from topic within depth hops,
// breadth-first, excluding the origin itself. Depth zero or an unknown
// topic yields an empty set. Cycles are handled with a visited set.
func (g *TopicGraph) Related(topic string, depth int) map[string]bool {
	related := make(map[string]bool)
	if depth <= 0 {
		return related
	}
	if _, ok := g.nodes[topic]; !ok {
		return related
	}

	visited := map[string]bool{topic: true}
	frontier := []string{topic}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, node := range frontier {
			for neighbor := range g.adj[node] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				related[neighbor] = true
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return related
}

// ReferenceCount returns the number of live entries containing topic.
func (g *TopicGraph) ReferenceCount(topic string) int {
	return g.nodes[topic]
}

// EdgeCount returns the co-occurrence count between two topics.
func (g *TopicGraph) EdgeCount(a, b string) int {
	return g.adj[a][b]
}

// Topics returns the number of live topic nodes.
func (g *TopicGraph) Topics() int {
	return len(g.nodes)
}

// Edges returns the number of undirected edges.
func (g *TopicGraph) Edges() int {
	total := 0
	for _, m := range g.adj {
		total += len(m)
	}
	return total / 2
}

// TopicCount pairs a topic with its reference count.
type TopicCount struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"references" yaml:"references"`
}

// TopicCounts lists all topics sorted by reference count descending,
// ties broken alphabetically.
func (g *TopicGraph) TopicCounts() []TopicCount {
	counts := make([]TopicCount, 0, len(g.nodes))
	for t, n := range g.nodes {
		counts = append(counts, TopicCount{Topic: t, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Topic < counts[j].Topic
	})
	return counts
}

// GraphEdge is the serialized form of one undirected edge.
type GraphEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Count  int    `json:"count" yaml:"count"`
}

// EdgeList returns all undirected edges, each reported once with
// Source < Target, sorted for deterministic output.
func (g *TopicGraph) EdgeList() []GraphEdge {
	var edges []GraphEdge
	for a, m := range g.adj {
		for b, n := range m {
			if a < b {
				edges = append(edges, GraphEdge{Source: a, Target: b, Count: n})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
