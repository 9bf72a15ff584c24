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

//go:build !windows

package volume

import (
	"os"
	"path/filepath"
	"runtime"
)

// defaultStrategy picks the volumes parent directory for the host platform.
// CAPTAIN_VOLUMES_DIR overrides it, which is how tests point the scanner at
// a temporary directory.
func defaultStrategy() RootStrategy {
	if dir := os.Getenv("CAPTAIN_VOLUMES_DIR"); dir != "" {
		return NewMediaRootsStrategy(dir)
	}

	if runtime.GOOS == "darwin" {
		return NewMediaRootsStrategy("/Volumes")
	}

	// Removable media lands in /media/$USER or /run/media/$USER depending
	// on the distribution's automounter.
	if user := os.Getenv("USER"); user != "" {
		for _, base := range []string{"/media", "/run/media"} {
			candidate := filepath.Join(base, user)
			if _, err := os.Stat(candidate); err == nil {
				return NewMediaRootsStrategy(candidate)
			}
		}
	}
	return NewMediaRootsStrategy("/media")
}
