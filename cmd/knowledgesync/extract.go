// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teambrain/knowledgesync/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract knowledge entries from a session log or bookmark file",
	Long: `Extract scans a text or JSON session file for marker lines such as
"Finding: ..." or "Decision: ..." and stores each match as a knowledge
entry. Supplied topics are merged with hints taken from the file name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		topics, _ := cmd.Flags().GetStringSlice("topics")
		entries, err := extract.FromFile(store, args[0], topics)
		if err != nil {
			return err
		}

		fmt.Printf("Extracted %d entries from %s\n", len(entries), args[0])
		for _, e := range entries {
			fmt.Printf("  [%s] %s\n", e.Category, truncate(e.Content, 60))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringSliceP("topics", "t", nil, "additional topics for extracted entries")

	rootCmd.AddCommand(extractCmd)
}
