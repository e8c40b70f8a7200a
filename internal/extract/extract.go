// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract scans free text for fixed lexical markers ("Finding:",
// "Decision:", ...) and turns matching lines into knowledge entries. It is
// a boundary producer: every extracted entry goes through the store's Add
// so it participates fully in graph and index updates.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teambrain/knowledgesync/internal/knowledge"
	"github.com/teambrain/knowledgesync/pkg/types"
)

// Adder is the slice of the store the extractor needs.
type Adder interface {
	Add(content string, opts knowledge.AddOptions) (types.Entry, error)
}

// marker maps a line prefix to the category it signals. The table is
// ordered: longer prefixes come before their shorter variants so
// "key finding:" is not consumed by "finding:".
type marker struct {
	prefix   string
	category types.Category
}

var markers = []marker{
	{"key finding:", types.CategoryFinding},
	{"finding:", types.CategoryFinding},
	{"decision:", types.CategoryDecision},
	{"problem:", types.CategoryProblem},
	{"solution:", types.CategorySolution},
	{"todo:", types.CategoryTodo},
	{"note:", types.CategoryFact},
	{"insight:", types.CategoryInsight},
	{"configuration:", types.CategoryConfig},
	{"config:", types.CategoryConfig},
}

const (
	// minContentLen filters out marker lines too short to be knowledge.
	minContentLen = 10

	// extractedConfidence is assigned to extracted entries; scraped text
	// is less trustworthy than a deliberate add.
	extractedConfidence = 0.7
)

// FromText scans text line by line, classifies lines beginning with a known
// marker (case-insensitive, leading bullets and whitespace ignored), and
// adds an entry per match with defaultTopics attached. Unrecognized lines
// are skipped. The returned entries follow the order of appearance.
func FromText(store Adder, text string, defaultTopics []string) ([]types.Entry, error) {
	confidence := extractedConfidence
	var entries []types.Entry

	for _, line := range strings.Split(text, "\n") {
		category, content, ok := classify(line)
		if !ok || len(content) < minContentLen {
			continue
		}

		entry, err := store.Add(content, knowledge.AddOptions{
			Category:   category,
			Topics:     defaultTopics,
			Confidence: &confidence,
			Metadata:   map[string]any{"extracted": true},
		})
		if err != nil {
			return entries, fmt.Errorf("adding extracted entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// classify matches a single line against the marker table and returns the
// category and trimmed remainder.
func classify(line string) (types.Category, string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "-* \t")
	lower := strings.ToLower(trimmed)

	for _, m := range markers {
		if strings.HasPrefix(lower, m.prefix) {
			return m.category, strings.TrimSpace(trimmed[len(m.prefix):]), true
		}
	}
	return "", "", false
}

// sessionDoc is the shape of a JSON session/bookmark file.
type sessionDoc struct {
	Subject string `json:"subject"`
	Body    struct {
		Message string `json:"message"`
	} `json:"body"`
}

// stopWords are file-stem tokens that carry no topical signal.
var stopWords = map[string]bool{
	"session":  true,
	"bookmark": true,
	"notes":    true,
	"2025":     true,
	"2026":     true,
}

// FromFile extracts knowledge from a session log or bookmark file. JSON
// files contribute their body message as the text and their subject as a
// topic hint; for any file, words from the file stem become topic hints
// merged with the supplied topics.
func FromFile(store Adder, path string, topics []string) ([]types.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	text := string(data)
	fileTopics := append([]string(nil), topics...)

	if filepath.Ext(path) == ".json" {
		var doc sessionDoc
		if err := json.Unmarshal(data, &doc); err == nil {
			if doc.Body.Message != "" {
				text = doc.Body.Message
			}
			if doc.Subject != "" {
				hint := strings.ReplaceAll(strings.ToLower(doc.Subject), " ", "_")
				// Truncate on a rune boundary; a byte slice could split a
				// multibyte character and store an invalid topic.
				if r := []rune(hint); len(r) > 20 {
					hint = string(r[:20])
				}
				fileTopics = append(fileTopics, hint)
			}
		}
	}

	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, part := range strings.Split(stem, "_") {
		if len(part) > 3 && !stopWords[part] {
			fileTopics = append(fileTopics, part)
		}
	}

	return FromText(store, text, fileTopics)
}
