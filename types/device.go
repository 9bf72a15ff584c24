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

// DetectedDevice describes a controller volume found during a scan. It is
// ephemeral: a scan or mount event produces a fresh record and nothing keeps
// it alive beyond that. Only the volume name identifies a device across time.
type DetectedDevice struct {
	// Name is the volume label, case preserved as mounted.
	Name string `json:"name"`

	// Path is the mount point of the volume.
	Path string `json:"path"`

	// ConfigPath is Path joined with the fixed config filename.
	ConfigPath string `json:"config_path"`

	// HasConfig reports whether the config file existed at scan time.
	HasConfig bool `json:"has_config"`
}
