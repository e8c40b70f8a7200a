// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teambrain/knowledgesync/internal/knowledge"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a knowledge entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		if !store.Delete(args[0]) {
			return fmt.Errorf("entry %s: %w", args[0], knowledge.ErrNotFound)
		}
		fmt.Printf("Deleted entry %s\n", args[0])
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		removed := store.CleanupExpired()
		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(cleanupCmd)
}
