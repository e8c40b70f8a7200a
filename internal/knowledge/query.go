// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"sort"
	"strings"

	"github.com/teambrain/knowledgesync/pkg/types"
)

// DefaultQueryLimit caps result sets when the caller supplies no limit.
const DefaultQueryLimit = 50

// relatedExpansionDepth is how far topic filters reach into the graph when
// IncludeRelated is set.
const relatedExpansionDepth = 1

// QueryOptions holds the conjunctive filters of a query. Every set filter
// must match for an entry to be returned.
type QueryOptions struct {
	// Search matches case-insensitively as a substring of the content;
	// topic and category substring matches are accepted too, but rank
	// below content matches.
	Search string

	// Source filters by producing agent.
	Source string

	// Category filters by category.
	Category types.Category

	// Topics matches entries whose topic set intersects this set.
	Topics []string

	// IncludeRelated expands Topics with graph neighbors (one hop)
	// before intersecting.
	IncludeRelated bool

	// MinConfidence excludes entries scored below it.
	MinConfidence float64

	// Limit caps the result count after ranking. Zero means
	// DefaultQueryLimit.
	Limit int

	// IncludeExpired returns expired entries too. Off by default.
	IncludeExpired bool
}

// Query returns entries matching every set filter, ranked by relevance
// (content matches first), then confidence descending, then creation time
// descending, with insertion order as the final tie-break.
func (s *Store) Query(opts QueryOptions) []types.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	filterTopics := make(map[string]bool)
	for _, t := range types.NormalizeTopics(opts.Topics) {
		filterTopics[t] = true
	}
	if opts.IncludeRelated {
		for t := range filterTopics {
			for related := range s.graph.Related(t, relatedExpansionDepth) {
				filterTopics[related] = true
			}
		}
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	source := strings.ToUpper(strings.TrimSpace(opts.Source))
	now := s.now()

	type ranked struct {
		entry        *types.Entry
		contentMatch bool
		seq          int
	}
	var results []ranked

	for id, entry := range s.entries {
		if !opts.IncludeExpired && entry.IsExpired(now) {
			continue
		}
		if source != "" && entry.Source != source {
			continue
		}
		if opts.Category != "" && entry.Category != opts.Category {
			continue
		}
		if entry.Confidence < opts.MinConfidence {
			continue
		}
		if len(filterTopics) > 0 && !intersects(entry.Topics, filterTopics) {
			continue
		}

		contentMatch := false
		if search != "" {
			contentMatch = strings.Contains(strings.ToLower(entry.Content), search)
			if !contentMatch && !matchesSearch(entry, search) {
				continue
			}
		}

		results = append(results, ranked{entry: entry, contentMatch: contentMatch, seq: s.seq[id]})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.contentMatch != b.contentMatch {
			return a.contentMatch
		}
		if a.entry.Confidence != b.entry.Confidence {
			return a.entry.Confidence > b.entry.Confidence
		}
		if !a.entry.Created.Equal(b.entry.Created) {
			return a.entry.Created.After(b.entry.Created)
		}
		return a.seq < b.seq
	})

	if len(results) > limit {
		results = results[:limit]
	}

	out := make([]types.Entry, len(results))
	for i, r := range results {
		out[i] = r.entry.Clone()
	}
	return out
}

// matchesSearch reports whether the search term appears in a topic or the
// category. Content matching is handled by the caller since it affects rank.
func matchesSearch(entry *types.Entry, search string) bool {
	for _, t := range entry.Topics {
		if strings.Contains(t, search) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(entry.Category)), search)
}

func intersects(topics []string, filter map[string]bool) bool {
	for _, t := range topics {
		if filter[t] {
			return true
		}
	}
	return false
}

// QueryAgent returns what a given agent knows, optionally narrowed to one
// topic. Sugar over Query.
func (s *Store) QueryAgent(agent, topic string) []types.Entry {
	opts := QueryOptions{Source: agent}
	if topic != "" {
		opts.Topics = []string{topic}
	}
	return s.Query(opts)
}

// Topics lists every live topic with its reference count, most referenced
// first, alphabetical on ties.
func (s *Store) Topics() []TopicCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.TopicCounts()
}

// RelatedTopics returns the topics reachable from topic within depth hops
// of the co-occurrence graph, excluding the topic itself.
func (s *Store) RelatedTopics(topic string, depth int) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Related(types.NormalizeTopic(topic), depth)
}
