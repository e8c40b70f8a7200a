// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teambrain/knowledgesync/internal/knowledge"
	"github.com/teambrain/knowledgesync/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [search]",
	Short: "Query knowledge entries with conjunctive filters",
	Long: `Query returns entries matching every given filter: a case-insensitive
search term, source agent, category, topic set, and minimum confidence.
With --related, topic filters are expanded one hop through the topic
graph before matching. Expired entries are excluded unless --expired.`,
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	search := ""
	if len(args) > 0 {
		search = args[0]
	}
	source, _ := cmd.Flags().GetString("source")
	category, _ := cmd.Flags().GetString("category")
	topics, _ := cmd.Flags().GetStringSlice("topics")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	limit, _ := cmd.Flags().GetInt("limit")
	related, _ := cmd.Flags().GetBool("related")
	expired, _ := cmd.Flags().GetBool("expired")

	var cat types.Category
	if category != "" {
		cat = types.ParseCategory(category)
		if !cat.Valid() {
			return &knowledge.ValidationError{Field: "category", Message: fmt.Sprintf("%q is not a known category", cat)}
		}
	}

	results := store.Query(knowledge.QueryOptions{
		Search:         search,
		Source:         source,
		Category:       cat,
		Topics:         topics,
		MinConfidence:  minConfidence,
		Limit:          limit,
		IncludeRelated: related,
		IncludeExpired: expired,
	})

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return printEntries(results, jsonOutput)
}

func printEntries(entries []types.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No matching entries found.")
		return nil
	}

	fmt.Printf("Found %d entries:\n\n", len(entries))
	for _, e := range entries {
		content := truncate(e.Content, 100)
		fmt.Printf("  [%s] (%s) [%s]\n", e.ID, e.Source, e.Category)
		fmt.Printf("    %s\n", content)
		fmt.Printf("    Topics: %s\n", topicList(e.Topics))
		fmt.Printf("    Confidence: %.0f%% | Updated: %s\n\n",
			e.Confidence*100, e.Updated.Format("2006-01-02 15:04"))
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
// Slicing runes rather than bytes keeps multibyte characters intact.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

var agentCmd = &cobra.Command{
	Use:   "agent <name>",
	Short: "Show what a specific agent knows",
	Long:  `Agent lists the entries produced by one agent, optionally narrowed to a topic.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		topic, _ := cmd.Flags().GetString("topic")
		results := store.QueryAgent(args[0], topic)

		if len(results) == 0 {
			if topic != "" {
				fmt.Printf("%s has no knowledge about %q.\n", args[0], topic)
			} else {
				fmt.Printf("%s has no knowledge.\n", args[0])
			}
			return nil
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		return printEntries(results, jsonOutput)
	},
}

func init() {
	queryCmd.Flags().StringP("source", "s", "", "filter by source agent")
	queryCmd.Flags().StringP("category", "c", "", "filter by category")
	queryCmd.Flags().StringSliceP("topics", "t", nil, "filter by topics (any match)")
	queryCmd.Flags().Float64P("min-confidence", "C", 0, "minimum confidence")
	queryCmd.Flags().IntP("limit", "l", 0, "maximum results (0 = default 50)")
	queryCmd.Flags().BoolP("related", "r", false, "expand topic filters through the topic graph")
	queryCmd.Flags().Bool("expired", false, "include expired entries")
	queryCmd.Flags().Bool("json", false, "output results as JSON")

	agentCmd.Flags().StringP("topic", "t", "", "optional topic filter")
	agentCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(agentCmd)
}
