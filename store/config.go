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

// Package store handles configuration persistence for Captain: the
// application's own settings file and the device config.json files living
// on controller volumes.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/we-are-mono/captain/types"
)

const captainConfigName = "captain.json"

// GetConfigDir returns the application configuration directory.
// Checks CAPTAIN_CONFIG_DIR environment variable, falls back to the
// platform user config directory.
func GetConfigDir() string {
	if dir := os.Getenv("CAPTAIN_CONFIG_DIR"); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "captain")
	}
	return ".captain"
}

// LoadCaptainConfig loads captain.json from the config directory. A missing
// file is not an error; the defaults are returned instead.
func LoadCaptainConfig() (*types.CaptainConfig, error) {
	path := filepath.Join(GetConfigDir(), captainConfigName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.DefaultCaptainConfig(), nil
		}
		return nil, fmt.Errorf("failed to read captain config: %w", err)
	}

	config := types.DefaultCaptainConfig()
	if err := UnmarshalJSON(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse captain config at %s: %w", path, err)
	}

	if len(config.Volumes) == 0 {
		config.Volumes = append([]string(nil), types.DefaultVolumes...)
	}

	return config, nil
}

// SaveCaptainConfig saves captain.json to the config directory.
// Creates a backup of any existing file and writes atomically.
func SaveCaptainConfig(config *types.CaptainConfig) error {
	dir := GetConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, captainConfigName)
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
		if err := copyFile(path, backupPath); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal captain config: %w", err)
	}

	// Write atomically (temp file + rename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}

// UnmarshalJSON unmarshals JSON data with enhanced error reporting
func UnmarshalJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		// Provide more helpful error message for JSON syntax errors
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			line, col := getLineCol(data, syntaxErr.Offset)
			return fmt.Errorf("JSON syntax error at line %d, column %d: %w", line, col, err)
		}
		return err
	}
	return nil
}

// getLineCol calculates the line and column number for a byte offset in JSON data
func getLineCol(data []byte, offset int64) (line, col int) {
	line = 1
	col = 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}
