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

//go:build windows

package volume

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// defaultStrategy picks drive-letter enumeration on Windows, where removable
// volumes have no common parent directory. CAPTAIN_VOLUMES_DIR still forces
// the parent-directory strategy, which is how tests run on this platform too.
func defaultStrategy() RootStrategy {
	if dir := os.Getenv("CAPTAIN_VOLUMES_DIR"); dir != "" {
		return NewMediaRootsStrategy(dir)
	}
	return &driveRootsStrategy{}
}

// driveRootsStrategy enumerates existing drive roots A:\ through Z:\ and
// resolves volume names through the volume information API.
type driveRootsStrategy struct{}

func (s *driveRootsStrategy) Candidates() []string {
	var candidates []string
	for letter := 'A'; letter <= 'Z'; letter++ {
		root := string(letter) + `:\`
		if _, err := os.Stat(root); err == nil {
			candidates = append(candidates, root)
		}
	}
	return candidates
}

func (s *driveRootsStrategy) VolumeName(path string) string {
	root, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return ""
	}

	name := make([]uint16, windows.MAX_PATH+1)
	err = windows.GetVolumeInformation(root, &name[0], uint32(len(name)), nil, nil, nil, nil, 0)
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(name)
}

func (s *driveRootsStrategy) VolumeRoot(path string) (string, bool) {
	drive := filepath.VolumeName(path)
	if drive == "" {
		return "", false
	}
	return drive + `\`, true
}

// WatchDir returns false: drive roots have no common parent to subscribe to,
// so the watcher falls back to polling.
func (s *driveRootsStrategy) WatchDir() (string, bool) {
	return "", false
}
