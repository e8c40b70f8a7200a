// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teambrain/knowledgesync/internal/knowledge"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Export or import a sync snapshot, or persist the store",
	Long: `Sync exchanges state between two independently maintained stores.
--export writes a snapshot of every entry; --import merges a snapshot with
timestamp-based conflict resolution. Snapshots are JSON, or YAML when the
file extension is .yaml or .yml. Without flags, sync persists the store.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	exportPath, _ := cmd.Flags().GetString("export")
	importPath, _ := cmd.Flags().GetString("import")
	if exportPath != "" && importPath != "" {
		return fmt.Errorf("--export and --import are mutually exclusive")
	}

	switch {
	case exportPath != "":
		snap := store.ExportForSync()
		if err := knowledge.WriteSnapshot(snap, exportPath); err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(snap.Entries), exportPath)

	case importPath != "":
		snap, err := knowledge.ReadSnapshot(importPath)
		if err != nil {
			return err
		}
		sum := store.ImportFromSync(snap)
		fmt.Printf("Imported: %d added, %d updated, %d conflicts, %d skipped\n",
			sum.Added, sum.Updated, sum.Conflicts, sum.Skipped)

	default:
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Println("Knowledge base persisted.")
	}

	return nil
}

func init() {
	syncCmd.Flags().StringP("export", "e", "", "write a snapshot to this file")
	syncCmd.Flags().StringP("import", "i", "", "merge a snapshot from this file")

	rootCmd.AddCommand(syncCmd)
}
