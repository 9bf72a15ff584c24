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

// Package volume locates controller volumes on the host filesystem. It
// enumerates candidate mount points through a platform strategy, classifies
// them against the known device name set, and authorizes externally supplied
// paths before any read or write touches them.
package volume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/we-are-mono/captain/types"
)

// ConfigFileName is the fixed filename the firmware reads at the volume root.
const ConfigFileName = "config.json"

var (
	// ErrUnresolvable means the path does not exist or could not be
	// canonicalized. Only real, already-mounted locations are accepted,
	// which closes traversal through relative segments or symlinks.
	ErrUnresolvable = errors.New("path could not be resolved")

	// ErrNotDeviceVolume means the resolved path does not sit under a
	// recognized device volume.
	ErrNotDeviceVolume = errors.New("path is not on a recognized device volume")
)

// MountCheckFunc reports whether the volume at the given mount point is still
// backed by a distinct removable filesystem. Swappable for tests.
type MountCheckFunc func(volumePath string) bool

// Manager resolves, classifies, and authorizes device volume paths. All
// methods operate on caller-local data; a Manager holds no mutable state.
type Manager struct {
	names    []string
	strategy RootStrategy
	mounted  MountCheckFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithStrategy overrides the platform root-enumeration strategy.
func WithStrategy(s RootStrategy) Option {
	return func(m *Manager) { m.strategy = s }
}

// WithMountCheck overrides the mount identity check.
func WithMountCheck(fn MountCheckFunc) Option {
	return func(m *Manager) { m.mounted = fn }
}

// NewManager creates a Manager matching volumes against the given label set.
func NewManager(names []string, opts ...Option) *Manager {
	m := &Manager{
		names:    append([]string(nil), names...),
		strategy: defaultStrategy(),
		mounted:  mountedOnDistinctFilesystem,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Strategy returns the active root-enumeration strategy.
func (m *Manager) Strategy() RootStrategy {
	return m.strategy
}

// IsKnownName reports whether a volume label matches the known device name
// set. Matching is exact but case-insensitive.
func (m *Manager) IsKnownName(name string) bool {
	for _, known := range m.names {
		if strings.EqualFold(name, known) {
			return true
		}
	}
	return false
}

// Classify inspects a candidate mount point and, if its label is a known
// device name, returns a DetectedDevice with a config-file existence check.
// The file contents are not read.
func (m *Manager) Classify(path string) (types.DetectedDevice, bool) {
	name := m.strategy.VolumeName(path)
	if name == "" || !m.IsKnownName(name) {
		return types.DetectedDevice{}, false
	}

	configPath := filepath.Join(path, ConfigFileName)
	_, err := os.Stat(configPath)

	return types.DetectedDevice{
		Name:       name,
		Path:       path,
		ConfigPath: configPath,
		HasConfig:  err == nil,
	}, true
}

// Scan enumerates the current candidate mount points and classifies each one.
// Non-device entries are silently dropped; the volumes directory legitimately
// contains unrelated volumes.
func (m *Manager) Scan() []types.DetectedDevice {
	var devices []types.DetectedDevice
	for _, candidate := range m.strategy.Candidates() {
		if device, ok := m.Classify(candidate); ok {
			devices = append(devices, device)
		}
	}
	return devices
}

// Authorize resolves an externally supplied path to its canonical form and
// verifies it sits under a recognized device volume. It is the sole trust
// boundary between UI input and the filesystem and must be invoked before
// every read or write that takes an external path.
func (m *Manager) Authorize(raw string) (string, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnresolvable, raw)
	}

	// EvalSymlinks fails for paths that don't exist. The final component is
	// allowed to be missing (a config file about to be created on a fresh
	// device); everything above it must be real and already mounted.
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		dir, base := filepath.Split(abs)
		resolvedDir, dirErr := filepath.EvalSymlinks(filepath.Clean(dir))
		if dirErr != nil {
			return "", fmt.Errorf("%w: %s", ErrUnresolvable, raw)
		}
		candidate := filepath.Join(resolvedDir, base)
		// A dangling symlink in the final position could redirect the
		// eventual create outside the volume.
		if info, lerr := os.Lstat(candidate); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("%w: %s", ErrUnresolvable, raw)
		}
		canonical = candidate
	}

	root, ok := m.strategy.VolumeRoot(canonical)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotDeviceVolume, canonical)
	}

	if name := m.strategy.VolumeName(root); !m.IsKnownName(name) {
		return "", fmt.Errorf("%w: %s", ErrNotDeviceVolume, canonical)
	}

	return canonical, nil
}

// Mounted reports whether the volume containing the given path is still
// backed by a distinct removable filesystem. Returns false when the volume
// root cannot be determined.
func (m *Manager) Mounted(path string) bool {
	root, ok := m.strategy.VolumeRoot(path)
	if !ok {
		return false
	}
	return m.mounted(root)
}
