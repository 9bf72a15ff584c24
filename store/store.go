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

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/we-are-mono/captain/types"
	"github.com/we-are-mono/captain/volume"
)

var (
	// ErrDeviceDisconnected means the mount check failed immediately before
	// a write: the target volume is no longer backed by a removable
	// filesystem. Never retried silently; a stale write target must not be
	// guessed at.
	ErrDeviceDisconnected = errors.New("device was disconnected")

	// ErrInvalidConfig wraps the validation error list for a rejected write.
	ErrInvalidConfig = errors.New("validation failed")
)

// Store reads and writes device config files on controller volumes. Every
// operation authorizes its path through the volume manager first; writes
// additionally re-verify the mount and sync data to the medium before
// returning, because the user may physically eject the moment we return.
type Store struct {
	volumes *volume.Manager
}

// New creates a Store backed by the given volume manager.
func New(volumes *volume.Manager) *Store {
	return &Store{volumes: volumes}
}

// Volumes returns the underlying volume manager.
func (s *Store) Volumes() *volume.Manager {
	return s.volumes
}

// ReadConfig authorizes the path, reads the file, and parses it into a
// DeviceConfig. The result is not validated; callers decide whether schema
// violations matter for their view.
func (s *Store) ReadConfig(path string) (*types.DeviceConfig, error) {
	canonical, err := s.volumes.Authorize(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config types.DeviceConfig
	if err := UnmarshalJSON(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", canonical, err)
	}

	return &config, nil
}

// ReadRaw authorizes the path, reads the file, and re-serializes the JSON
// with stable indentation and key ordering. Schema validity is not required;
// this feeds the raw text view.
func (s *Store) ReadRaw(path string) (string, error) {
	canonical, err := s.volumes.Authorize(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	var doc interface{}
	if err := UnmarshalJSON(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", canonical, err)
	}

	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format %s: %w", canonical, err)
	}

	return string(pretty), nil
}

// WriteConfig validates the configuration and safe-writes its serialized
// form: authorize, re-verify the volume is still mounted, write, sync.
func (s *Store) WriteConfig(path string, config *types.DeviceConfig) error {
	canonical, err := s.volumes.Authorize(path)
	if err != nil {
		return err
	}

	if !s.volumes.Mounted(canonical) {
		return fmt.Errorf("%w: %s", ErrDeviceDisconnected, canonical)
	}

	if verr := config.Validate(); verr != nil {
		return fmt.Errorf("%w:\n%v", ErrInvalidConfig, verr)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeAndSync(canonical, data)
}

// WriteRaw parses raw JSON text, validates the decoded configuration, and
// safe-writes the canonicalized (pretty-printed) form.
func (s *Store) WriteRaw(path string, raw []byte) error {
	canonical, err := s.volumes.Authorize(path)
	if err != nil {
		return err
	}

	if !s.volumes.Mounted(canonical) {
		return fmt.Errorf("%w: %s", ErrDeviceDisconnected, canonical)
	}

	var config types.DeviceConfig
	if err := UnmarshalJSON(raw, &config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if verr := config.Validate(); verr != nil {
		return fmt.Errorf("%w:\n%v", ErrInvalidConfig, verr)
	}

	data, err := json.MarshalIndent(&config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeAndSync(canonical, data)
}

// writeAndSync writes the file and forces the data onto the physical medium
// before returning. Buffered writes must not be lost to an eject.
func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}

	return f.Close()
}
