// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the knowledgesync CLI, the
// command-line surface over the local knowledge-entry store: add, query,
// topic graph inspection, extraction from session logs, and cross-store
// sync via export/import snapshots.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teambrain/knowledgesync/internal/knowledge"
	"github.com/teambrain/knowledgesync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes per error kind, so scripts can tell a bad flag from a missing
// entry or a disk failure.
const (
	exitFailure     = 1
	exitValidation  = 2
	exitNotFound    = 3
	exitPersistence = 4
)

// rootCmd is the base command for the knowledgesync CLI.
var rootCmd = &cobra.Command{
	Use:   "knowledgesync",
	Short: "Local knowledge-entry store with topic graph and cross-store sync",
	Long: `knowledgesync records short knowledge entries tagged with a category,
topics, a source agent, and a confidence score. Entries feed a derived
topic co-occurrence graph used for related-topic queries. Two independently
maintained stores exchange state through export/import snapshots with
timestamp-based conflict resolution.

Categories: DECISION, FINDING, PROBLEM, SOLUTION, TODO, REFERENCE, CONFIG,
RELATIONSHIP, FACT, INSIGHT`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./knowledgesync.yaml or ~/.config/knowledgesync/config.yaml)")
	rootCmd.PersistentFlags().String("storage-dir", "", "directory for persisted state (default: ~/.knowledgesync)")
	rootCmd.PersistentFlags().String("agent", "", "source identity for new entries (default: SYSTEM)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	viper.BindPFlag("storage_dir", rootCmd.PersistentFlags().Lookup("storage-dir"))
	viper.BindPFlag("agent", rootCmd.PersistentFlags().Lookup("agent"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("knowledgesync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "knowledgesync"))
		}
	}

	viper.SetDefault("auto_sync", true)
	viper.SetDefault("default_confidence", types.DefaultConfidence)

	viper.SetEnvPrefix("KNOWLEDGESYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// openStore builds a store from the resolved configuration.
func openStore() (*knowledge.Store, error) {
	cfg := types.StoreConfig{
		Agent:             viper.GetString("agent"),
		StorageDir:        viper.GetString("storage_dir"),
		AutoSync:          viper.GetBool("auto_sync"),
		DefaultConfidence: viper.GetFloat64("default_confidence"),
	}
	return knowledge.NewStore(cfg)
}

// exitCode maps the error taxonomy onto distinct process exit codes.
func exitCode(err error) int {
	var validation *knowledge.ValidationError
	var persist *knowledge.PersistError
	switch {
	case errors.As(err, &validation):
		return exitValidation
	case errors.Is(err, knowledge.ErrNotFound):
		return exitNotFound
	case errors.As(err, &persist):
		return exitPersistence
	default:
		return exitFailure
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
