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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/captain/types"
	"github.com/we-are-mono/captain/volume"
)

// newTestStore builds a Store over a fake volumes directory with one mounted
// CIRCUITPY volume. The mounted flag is shared with the caller so tests can
// simulate an eject between authorization and write.
func newTestStore(t *testing.T) (*Store, string, *bool) {
	t.Helper()

	parent := t.TempDir()
	volPath := filepath.Join(parent, "CIRCUITPY")
	require.NoError(t, os.MkdirAll(volPath, 0755))

	mounted := true
	m := volume.NewManager(types.DefaultVolumes,
		volume.WithStrategy(volume.NewMediaRootsStrategy(parent)),
		volume.WithMountCheck(func(string) bool { return mounted }))

	canonical, err := filepath.EvalSymlinks(volPath)
	require.NoError(t, err)

	return New(m), canonical, &mounted
}

func validConfigJSON(t *testing.T) []byte {
	t.Helper()
	config := types.DeviceConfig{Device: types.DeviceMini6}
	for i := 0; i < 6; i++ {
		config.Buttons = append(config.Buttons, types.ButtonSpec{
			Label:   "FS",
			CC:      30 + i,
			Color:   types.ColorRed,
			Mode:    types.TriggerToggle,
			OffMode: types.IdleDim,
		})
	}
	data, err := json.Marshal(&config)
	require.NoError(t, err)
	return data
}

func TestReadConfig(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, validConfigJSON(t), 0644))

	config, err := s.ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, types.DeviceMini6, config.Device)
	assert.Len(t, config.Buttons, 6)
}

func TestReadConfig_SyntaxErrorReportsLineAndColumn(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("{\n  \"device\": std10\n}"), 0644))

	_, err := s.ReadConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadConfig_RejectsUnauthorizedPath(t *testing.T) {
	s, _, _ := newTestStore(t)

	outside := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(outside, validConfigJSON(t), 0644))

	_, err := s.ReadConfig(outside)
	require.Error(t, err)
	assert.ErrorIs(t, err, volume.ErrNotDeviceVolume)
}

func TestReadRaw_DoesNotRequireSchemaValidity(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	// Syntactically valid JSON that violates the schema in every way
	require.NoError(t, os.WriteFile(configPath, []byte(`{"device": "std10", "buttons": [], "junk": 1}`), 0644))

	raw, err := s.ReadRaw(configPath)
	require.NoError(t, err)
	assert.Contains(t, raw, `"junk"`)
}

func TestWriteConfig(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	var config types.DeviceConfig
	require.NoError(t, json.Unmarshal(validConfigJSON(t), &config))

	require.NoError(t, s.WriteConfig(configPath, &config))

	// The written file parses back to the same configuration
	readBack, err := s.ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, &config, readBack)
}

func TestWriteConfig_RejectsInvalidConfig(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	var config types.DeviceConfig
	require.NoError(t, json.Unmarshal(validConfigJSON(t), &config))
	config.Buttons = config.Buttons[:3]

	err := s.WriteConfig(configPath, &config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "expected 6 buttons for mini6, found 3")

	// Nothing was written
	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteConfig_RefusesAfterDisconnect(t *testing.T) {
	s, vol, mounted := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	var config types.DeviceConfig
	require.NoError(t, json.Unmarshal(validConfigJSON(t), &config))

	// Device ejected after the path was chosen but before the write
	*mounted = false

	err := s.WriteConfig(configPath, &config)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeviceDisconnected)

	// The stale mount point was not written to
	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteRaw_CanonicalizesFormatting(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	// Minified input is re-serialized pretty-printed
	raw := validConfigJSON(t)
	require.NoError(t, s.WriteRaw(configPath, raw))

	written, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "\n  \"device\"")
}

func TestWriteRaw_RejectsMalformedJSON(t *testing.T) {
	s, vol, _ := newTestStore(t)
	configPath := filepath.Join(vol, volume.ConfigFileName)

	err := s.WriteRaw(configPath, []byte(`{"device": `))
	require.Error(t, err)

	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr))
}
