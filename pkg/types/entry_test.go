// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"decision", CategoryDecision},
		{"FINDING", CategoryFinding},
		{"  Insight  ", CategoryInsight},
		{"", CategoryFact},
		{"gossip", Category("GOSSIP")},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseCategory(tc.in), "input %q", tc.in)
	}

	assert.True(t, ParseCategory("config").Valid())
	assert.False(t, ParseCategory("gossip").Valid())
	assert.False(t, Category("fact").Valid(), "categories are uppercase")
}

func TestCategoriesStable(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 10)
	assert.Equal(t, cats, Categories(), "order is fixed across calls")
	for _, c := range cats {
		assert.True(t, c.Valid())
	}
}

func TestNormalizeTopics(t *testing.T) {
	got := NormalizeTopics([]string{" Docker ", "CACHING", "docker", "", "  ", "ports"})
	assert.Equal(t, []string{"docker", "caching", "ports"}, got)

	assert.Empty(t, NormalizeTopics(nil))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Entry{}).IsExpired(now), "no expiry never expires")
	assert.True(t, (&Entry{Expires: &past}).IsExpired(now))
	assert.False(t, (&Entry{Expires: &future}).IsExpired(now))
	assert.True(t, (&Entry{Expires: &now}).IsExpired(now), "expiry boundary is inclusive")
}

func TestHasTopic(t *testing.T) {
	e := &Entry{Topics: []string{"docker", "caching"}}
	assert.True(t, e.HasTopic("docker"))
	assert.False(t, e.HasTopic("Docker"), "lookup expects normalized input")
	assert.False(t, e.HasTopic("ports"))
}

func TestCloneIsIndependent(t *testing.T) {
	exp := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	orig := &Entry{
		ID:         "abc",
		Content:    "original",
		Topics:     []string{"a", "b"},
		References: []string{"ref-1"},
		Expires:    &exp,
		Metadata:   map[string]any{"k": "v"},
	}

	cp := orig.Clone()
	cp.Topics[0] = "mutated"
	cp.References[0] = "mutated"
	*cp.Expires = exp.AddDate(1, 0, 0)
	cp.Metadata["k"] = "mutated"

	assert.Equal(t, []string{"a", "b"}, orig.Topics)
	assert.Equal(t, []string{"ref-1"}, orig.References)
	assert.True(t, orig.Expires.Equal(exp))
	assert.Equal(t, "v", orig.Metadata["k"])
}
