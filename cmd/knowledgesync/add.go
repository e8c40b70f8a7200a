// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teambrain/knowledgesync/internal/knowledge"
	"github.com/teambrain/knowledgesync/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a knowledge entry",
	Long: `Add stores a new knowledge entry. The category must be one of the fixed
set and the confidence must lie in [0.0, 1.0]; invalid input is rejected
before anything is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	topics, _ := cmd.Flags().GetStringSlice("topics")
	source, _ := cmd.Flags().GetString("source")
	expires, _ := cmd.Flags().GetInt("expires")
	references, _ := cmd.Flags().GetStringSlice("references")

	opts := knowledge.AddOptions{
		Source:        source,
		Category:      types.ParseCategory(category),
		Topics:        topics,
		ExpiresInDays: expires,
		References:    references,
	}
	if cmd.Flags().Changed("confidence") {
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		opts.Confidence = &confidence
	}

	entry, err := store.Add(args[0], opts)
	if err != nil {
		return err
	}

	fmt.Printf("Added entry %s\n", entry.ID)
	fmt.Printf("  Category:   %s\n", entry.Category)
	fmt.Printf("  Topics:     %s\n", topicList(entry.Topics))
	fmt.Printf("  Confidence: %.0f%%\n", entry.Confidence*100)
	return nil
}

func topicList(topics []string) string {
	if len(topics) == 0 {
		return "(none)"
	}
	return strings.Join(topics, ", ")
}

func init() {
	addCmd.Flags().StringP("category", "c", "FACT", "category (DECISION, FINDING, ...)")
	addCmd.Flags().StringSliceP("topics", "t", nil, "related topics")
	addCmd.Flags().StringP("source", "s", "", "source agent (default: configured agent)")
	addCmd.Flags().Float64P("confidence", "C", types.DefaultConfidence, "confidence in [0.0, 1.0]")
	addCmd.Flags().IntP("expires", "e", 0, "expire after N days (negative for already expired)")
	addCmd.Flags().StringSlice("references", nil, "related entry IDs")

	rootCmd.AddCommand(addCmd)
}
