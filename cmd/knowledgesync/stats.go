// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		stats := store.Stats()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Printf("Total entries:       %d\n", stats.TotalEntries)
		fmt.Printf("Total topics:        %d\n", stats.TotalTopics)
		fmt.Printf("Total relationships: %d\n", stats.TotalRelationships)
		fmt.Printf("Average confidence:  %.0f%%\n", stats.AverageConfidence*100)
		fmt.Printf("Sync count:          %d\n", stats.SyncCount)
		if stats.LastSync != nil {
			fmt.Printf("Last sync:           %s\n", stats.LastSync.Format("2006-01-02 15:04:05"))
		}

		printGroup("By source:", stats.BySource)
		printGroup("By category:", stats.ByCategory)
		return nil
	},
}

func printGroup(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s\n", title)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func init() {
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}
