// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared between the knowledge store,
// the extractor, and the CLI.
package types

import (
	"os"
	"path/filepath"
)

const (
	// DefaultAgent is the process-wide source identity used when none is configured.
	DefaultAgent = "SYSTEM"

	// DefaultConfidence is the confidence assigned when the caller supplies none.
	DefaultConfidence = 0.8
)

// StoreConfig configures a knowledge store instance. It is passed explicitly
// to NewStore so independent stores can coexist in one process.
type StoreConfig struct {
	// Agent is the source identity recorded on entries added without an
	// explicit source (default "SYSTEM").
	Agent string `json:"agent" yaml:"agent"`

	// StorageDir is the directory holding the persisted documents
	// (entries.json, graph.json, sync_log.json). Default: ~/.knowledgesync.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// AutoSync persists the store after every mutation when true.
	AutoSync bool `json:"auto_sync" yaml:"auto_sync"`

	// DefaultConfidence is assigned to entries added without an explicit
	// confidence. Zero means use DefaultConfidence.
	DefaultConfidence float64 `json:"default_confidence" yaml:"default_confidence"`
}

// DefaultStorageDir returns the platform-appropriate storage location.
func DefaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".knowledgesync"
	}
	return filepath.Join(home, ".knowledgesync")
}
