// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"strings"
	"time"
)

// Category classifies a knowledge entry.
type Category string

const (
	CategoryDecision     Category = "DECISION"
	CategoryFinding      Category = "FINDING"
	CategoryProblem      Category = "PROBLEM"
	CategorySolution     Category = "SOLUTION"
	CategoryTodo         Category = "TODO"
	CategoryReference    Category = "REFERENCE"
	CategoryConfig       Category = "CONFIG"
	CategoryRelationship Category = "RELATIONSHIP"
	CategoryFact         Category = "FACT"
	CategoryInsight      Category = "INSIGHT"
)

// validCategories is the closed set of accepted Category values.
var validCategories = map[Category]bool{
	CategoryDecision:     true,
	CategoryFinding:      true,
	CategoryProblem:      true,
	CategorySolution:     true,
	CategoryTodo:         true,
	CategoryReference:    true,
	CategoryConfig:       true,
	CategoryRelationship: true,
	CategoryFact:         true,
	CategoryInsight:      true,
}

// Valid reports whether c is one of the accepted categories.
func (c Category) Valid() bool {
	return validCategories[c]
}

// ParseCategory normalizes a raw string to a Category. The empty string
// maps to CategoryFact. Valid reports false for anything unrecognized.
func ParseCategory(s string) Category {
	if s == "" {
		return CategoryFact
	}
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

// Categories returns the accepted category values in a fixed order.
func Categories() []Category {
	cats := make([]Category, 0, len(validCategories))
	for c := range validCategories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Entry is a single knowledge record. The ID is immutable after creation;
// content and metadata may change, with Updated refreshed on every mutation.
type Entry struct {
	// ID uniquely identifies the entry within a store.
	ID string `json:"entry_id" yaml:"entry_id"`

	// Content is the knowledge text. Never empty.
	Content string `json:"content" yaml:"content"`

	// Source identifies the agent that produced the entry.
	Source string `json:"source" yaml:"source"`

	// Category is one of the fixed category set.
	Category Category `json:"category" yaml:"category"`

	// Topics are normalized lowercase labels. Order is preserved for
	// display; identity is set-based.
	Topics []string `json:"topics" yaml:"topics"`

	// Confidence is a certainty score in [0.0, 1.0].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Created is set once at creation time.
	Created time.Time `json:"created" yaml:"created"`

	// Updated is refreshed on every mutation.
	Updated time.Time `json:"updated" yaml:"updated"`

	// Expires, when set and in the past, marks the entry expired.
	Expires *time.Time `json:"expires,omitempty" yaml:"expires,omitempty"`

	// References lists related entry IDs. Weak: dangling IDs are tolerated.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`

	// Metadata is an open map of scalar or nested values, opaque to the core.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsExpired reports whether the entry has an expiry in the past relative to now.
func (e *Entry) IsExpired(now time.Time) bool {
	return e.Expires != nil && !now.Before(*e.Expires)
}

// HasTopic reports whether the entry carries the given normalized topic.
func (e *Entry) HasTopic(topic string) bool {
	for _, t := range e.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (e *Entry) Clone() Entry {
	out := *e
	if e.Expires != nil {
		exp := *e.Expires
		out.Expires = &exp
	}
	out.Topics = append([]string(nil), e.Topics...)
	out.References = append([]string(nil), e.References...)
	if e.Metadata != nil {
		out.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// NormalizeTopic trims and lowercases a topic label so identical topics
// merge in the graph.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// NormalizeTopics normalizes every label, drops empties, and removes
// duplicates while preserving first-seen order.
func NormalizeTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		n := NormalizeTopic(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
