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

package daemon

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/we-are-mono/captain/daemon/logger"

	_ "modernc.org/sqlite" // Pure-Go SQLite3 driver
)

// History persists device events and config writes to a local SQLite
// database. Recording failures are logged and swallowed; history is an
// audit trail, never a reason to fail the operation that produced it.
type History struct {
	db        *sql.DB
	maxEvents int
}

// NewHistory opens (creating if needed) the event history database.
func NewHistory(databasePath string, maxEvents int) (*History, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(databasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	h := &History{db: db, maxEvents: maxEvents}
	if err := h.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return h, nil
}

// initializeSchema creates the database tables if they don't exist
func (h *History) initializeSchema() error {
	eventsTableSQL := `
		CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			timestamp  TEXT NOT NULL,
			kind       TEXT NOT NULL,
			name       TEXT NOT NULL,
			path       TEXT,
			has_config INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	if _, err := h.db.Exec(eventsTableSQL); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	writesTableSQL := `
		CREATE TABLE IF NOT EXISTS writes (
			id        TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			path      TEXT NOT NULL,
			size      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_writes_timestamp ON writes(timestamp);
	`
	if _, err := h.db.Exec(writesTableSQL); err != nil {
		return fmt.Errorf("failed to create writes table: %w", err)
	}

	return nil
}

// OnDeviceEvent implements Subscriber so History can sit on the notifier.
func (h *History) OnDeviceEvent(event *DeviceEvent) error {
	h.RecordEvent(event)
	return nil
}

// RecordEvent stores a device event. Failures are logged, never returned.
func (h *History) RecordEvent(event *DeviceEvent) {
	path := ""
	hasConfig := 0
	if event.Device != nil {
		path = event.Device.Path
		if event.Device.HasConfig {
			hasConfig = 1
		}
	}

	insertSQL := `INSERT INTO events (id, timestamp, kind, name, path, has_config) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := h.db.Exec(insertSQL,
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Kind,
		event.Name,
		path,
		hasConfig)
	if err != nil {
		logger.Warn("Failed to record device event",
			logger.Field{Key: "event", Value: event.Kind},
			logger.Field{Key: "error", Value: err.Error()})
		return
	}

	h.prune()
}

// RecordWrite stores a successful config write. Failures are logged, never
// returned.
func (h *History) RecordWrite(path string, size int) {
	insertSQL := `INSERT INTO writes (id, timestamp, path, size) VALUES (?, ?, ?, ?)`
	_, err := h.db.Exec(insertSQL,
		uuid.New().String(),
		time.Now().UTC().Format(time.RFC3339),
		path,
		size)
	if err != nil {
		logger.Warn("Failed to record config write",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "error", Value: err.Error()})
	}
}

// prune keeps the events table bounded at maxEvents rows, oldest first out.
func (h *History) prune() {
	if h.maxEvents <= 0 {
		return
	}

	pruneSQL := `DELETE FROM events WHERE id NOT IN (
		SELECT id FROM events ORDER BY timestamp DESC LIMIT ?
	)`
	if _, err := h.db.Exec(pruneSQL, h.maxEvents); err != nil {
		logger.Warn("Failed to prune event history",
			logger.Field{Key: "error", Value: err.Error()})
	}
}

// HistoryEntry is one row of the events table, shaped for IPC responses.
type HistoryEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	HasConfig bool   `json:"has_config"`
}

// RecentEvents returns the most recent device events, newest first.
func (h *History) RecentEvents(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.Query(
		`SELECT id, timestamp, kind, name, path, has_config FROM events ORDER BY timestamp DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var hasConfig int
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Kind, &e.Name, &e.Path, &hasConfig); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.HasConfig = hasConfig != 0
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// HourlyCounts returns event counts per hour over the last n hours, oldest
// first. Hours with no events are zero-filled so the series is continuous.
func (h *History) HourlyCounts(hours int) ([]float64, error) {
	if hours <= 0 {
		hours = 24
	}

	// The final bucket is the current (partial) hour.
	base := time.Now().UTC().Truncate(time.Hour).Add(-time.Duration(hours-1) * time.Hour)
	rows, err := h.db.Query(
		`SELECT strftime('%Y-%m-%dT%H', timestamp) AS hour, COUNT(*)
		 FROM events WHERE timestamp >= ? GROUP BY hour`,
		base.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts: %w", err)
	}
	defer rows.Close()

	byHour := make(map[string]float64)
	for rows.Next() {
		var hour string
		var count float64
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		byHour[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make([]float64, hours)
	for i := 0; i < hours; i++ {
		key := base.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15")
		counts[i] = byHour[key]
	}

	return counts, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
