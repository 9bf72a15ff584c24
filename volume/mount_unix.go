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

import "golang.org/x/sys/unix"

// mountedOnDistinctFilesystem compares the volume's device identifier against
// the root filesystem's. When a removable volume is unmounted, its former
// mount point silently resolves onto the host root and the identifiers become
// equal; that is the signal the device is gone.
func mountedOnDistinctFilesystem(volumePath string) bool {
	var volStat, rootStat unix.Stat_t
	if err := unix.Stat(volumePath, &volStat); err != nil {
		return false
	}
	if err := unix.Stat("/", &rootStat); err != nil {
		return false
	}
	return volStat.Dev != rootStat.Dev
}
