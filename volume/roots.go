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

package volume

import (
	"os"
	"path/filepath"
)

// RootStrategy enumerates candidate volume mount points for one platform
// family. Exactly one strategy is selected at Manager construction; the rest
// of the code never branches on the host OS.
type RootStrategy interface {
	// Candidates returns the mount points to consider in a scan.
	Candidates() []string

	// VolumeName returns the display name for a candidate mount point,
	// or "" when it cannot be determined.
	VolumeName(path string) string

	// VolumeRoot returns the candidate mount point containing the given
	// canonical path, or false when the path sits under none of them.
	VolumeRoot(path string) (string, bool)

	// WatchDir returns the single parent directory under which volumes
	// appear, when one exists. A strategy without one forces the watcher
	// onto its polling mode.
	WatchDir() (string, bool)
}

// mediaRootsStrategy enumerates the children of a single parent directory
// (/Volumes on macOS, /media/$USER or /run/media/$USER on Linux). Volume
// names are the directory names themselves.
type mediaRootsStrategy struct {
	parent string
}

// NewMediaRootsStrategy creates a strategy rooted at the given parent
// directory. The parent is canonicalized once so that volume-root matching
// agrees with canonicalized input paths.
func NewMediaRootsStrategy(parent string) RootStrategy {
	if resolved, err := filepath.EvalSymlinks(parent); err == nil {
		parent = resolved
	}
	return &mediaRootsStrategy{parent: parent}
}

func (s *mediaRootsStrategy) Candidates() []string {
	entries, err := os.ReadDir(s.parent)
	if err != nil {
		return nil
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidates = append(candidates, filepath.Join(s.parent, entry.Name()))
	}
	return candidates
}

func (s *mediaRootsStrategy) VolumeName(path string) string {
	return filepath.Base(path)
}

func (s *mediaRootsStrategy) VolumeRoot(path string) (string, bool) {
	for p := path; ; {
		dir := filepath.Dir(p)
		if dir == s.parent {
			return p, true
		}
		if dir == p {
			return "", false
		}
		p = dir
	}
}

func (s *mediaRootsStrategy) WatchDir() (string, bool) {
	return s.parent, true
}
