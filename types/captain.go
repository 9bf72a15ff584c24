// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package types defines the core data structures for Captain's configuration.
package types

// WatcherConfig configures the mount lifecycle watcher.
type WatcherConfig struct {
	Autostart      bool `json:"autostart"`        // Start the watcher when the daemon boots (default: true)
	PollIntervalMS int  `json:"poll_interval_ms"` // Poll cycle for the reconciliation strategy (default: 2000ms)
}

// LoggingConfig configures the logging system.
type LoggingConfig struct {
	Level   string   `json:"level"`   // debug, info, warn, error (default: info)
	Format  string   `json:"format"`  // text, json (default: text)
	Outputs []string `json:"outputs"` // ["console", "file"] (default: console)
	File    string   `json:"file"`    // Log file path when the file output is enabled
}

// HistoryConfig configures the device event history database.
type HistoryConfig struct {
	Enabled      bool   `json:"enabled"`       // Record events and writes (default: true)
	DatabasePath string `json:"database_path"` // SQLite file path (default: <config dir>/history.db)
	MaxEvents    int    `json:"max_events"`    // Prune beyond this many rows, 0 = unlimited
}

// CaptainConfig is the application's own settings file (captain.json in the
// config directory). Device volumes are matched against Volumes by label,
// case-insensitively.
type CaptainConfig struct {
	Volumes []string       `json:"volumes"` // Known device volume labels
	Watcher *WatcherConfig `json:"watcher,omitempty"`
	Logging *LoggingConfig `json:"logging,omitempty"`
	History *HistoryConfig `json:"history,omitempty"`
	Version string         `json:"version"`
}

// DefaultVolumes are the volume labels the controllers present out of the box:
// CIRCUITPY before the firmware renames the drive, MIDICAPTAIN after.
var DefaultVolumes = []string{"CIRCUITPY", "MIDICAPTAIN"}

// DefaultCaptainConfig returns the configuration used when no captain.json exists.
func DefaultCaptainConfig() *CaptainConfig {
	return &CaptainConfig{
		Volumes: append([]string(nil), DefaultVolumes...),
		Watcher: &WatcherConfig{
			Autostart:      true,
			PollIntervalMS: 2000,
		},
		Logging: &LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
		History: &HistoryConfig{
			Enabled:   true,
			MaxEvents: 1000,
		},
		Version: "1",
	}
}
