// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics with their reference counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		topics := store.Topics()
		if limit > 0 && len(topics) > limit {
			topics = topics[:limit]
		}

		if len(topics) == 0 {
			fmt.Println("No topics found.")
			return nil
		}

		fmt.Printf("Top %d topics:\n\n", len(topics))
		for _, tc := range topics {
			fmt.Printf("  %-30s %d references\n", tc.Topic, tc.Count)
		}
		return nil
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <topic>",
	Short: "Find topics related via the co-occurrence graph",
	Long: `Related walks the topic graph breadth-first from the given topic and
lists every topic reachable within --depth hops.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		depth, _ := cmd.Flags().GetInt("depth")
		related := store.RelatedTopics(args[0], depth)

		if len(related) == 0 {
			fmt.Printf("No topics related to %q.\n", args[0])
			return nil
		}

		names := make([]string, 0, len(related))
		for t := range related {
			names = append(names, t)
		}
		sort.Strings(names)

		fmt.Printf("Topics related to %q:\n", args[0])
		for _, t := range names {
			fmt.Printf("  - %s\n", t)
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().IntP("limit", "l", 30, "maximum topics to show")
	relatedCmd.Flags().IntP("depth", "d", 2, "traversal depth in hops")

	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(relatedCmd)
}
