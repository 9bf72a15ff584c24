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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/captain/types"
)

func newTestHistory(t *testing.T, maxEvents int) *History {
	t.Helper()
	h, err := NewHistory(filepath.Join(t.TempDir(), "history.db"), maxEvents)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func connectEvent(name string, at time.Time) *DeviceEvent {
	return &DeviceEvent{
		ID:   uuid.New().String(),
		Kind: EventDeviceConnected,
		Name: name,
		Device: &types.DetectedDevice{
			Name:      name,
			Path:      "/media/" + name,
			HasConfig: true,
		},
		Timestamp: at,
	}
}

func TestHistory_RecordAndRecall(t *testing.T) {
	h := newTestHistory(t, 100)

	now := time.Now().UTC()
	h.RecordEvent(connectEvent("CIRCUITPY", now.Add(-2*time.Minute)))
	h.RecordEvent(&DeviceEvent{
		ID:        uuid.New().String(),
		Kind:      EventDeviceDisconnected,
		Name:      "CIRCUITPY",
		Timestamp: now.Add(-1 * time.Minute),
	})

	entries, err := h.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, EventDeviceDisconnected, entries[0].Kind)
	assert.Equal(t, "", entries[0].Path)
	assert.False(t, entries[0].HasConfig)

	assert.Equal(t, EventDeviceConnected, entries[1].Kind)
	assert.Equal(t, "/media/CIRCUITPY", entries[1].Path)
	assert.True(t, entries[1].HasConfig)
}

func TestHistory_RecentEventsHonorsLimit(t *testing.T) {
	h := newTestHistory(t, 100)

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		h.RecordEvent(connectEvent(fmt.Sprintf("CIRCUITPY%d", i),
			now.Add(time.Duration(i)*time.Second)))
	}

	entries, err := h.RecentEvents(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "CIRCUITPY4", entries[0].Name)
	assert.Equal(t, "CIRCUITPY2", entries[2].Name)
}

func TestHistory_PrunesToMaxEvents(t *testing.T) {
	h := newTestHistory(t, 3)

	now := time.Now().UTC()
	for i := 0; i < 6; i++ {
		h.RecordEvent(connectEvent(fmt.Sprintf("DEV%d", i),
			now.Add(time.Duration(i)*time.Second)))
	}

	entries, err := h.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Oldest rows are the ones pruned
	assert.Equal(t, "DEV5", entries[0].Name)
	assert.Equal(t, "DEV3", entries[2].Name)
}

func TestHistory_RecordWrite(t *testing.T) {
	h := newTestHistory(t, 100)

	h.RecordWrite("/media/CIRCUITPY/config.json", 512)

	var count int
	var size int
	require.NoError(t, h.db.QueryRow(
		`SELECT COUNT(*), MAX(size) FROM writes`).Scan(&count, &size))
	assert.Equal(t, 1, count)
	assert.Equal(t, 512, size)
}

func TestHistory_HourlyCountsZeroFills(t *testing.T) {
	h := newTestHistory(t, 100)

	now := time.Now().UTC()
	h.RecordEvent(connectEvent("CIRCUITPY", now))
	h.RecordEvent(connectEvent("MIDICAPTAIN", now))

	counts, err := h.HourlyCounts(6)
	require.NoError(t, err)
	require.Len(t, counts, 6)

	var total float64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, float64(2), total)

	// Both events just happened, so they land in the final bucket
	assert.Equal(t, float64(2), counts[5])
}

func TestHistory_OnDeviceEventRecords(t *testing.T) {
	h := newTestHistory(t, 100)

	require.NoError(t, h.OnDeviceEvent(connectEvent("CIRCUITPY", time.Now().UTC())))

	entries, err := h.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CIRCUITPY", entries[0].Name)
}
