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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/captain/types"
	"github.com/we-are-mono/captain/volume"
)

// chanSubscriber forwards events into a channel for test assertions.
type chanSubscriber struct {
	ch chan *DeviceEvent
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan *DeviceEvent, 16)}
}

func (s *chanSubscriber) OnDeviceEvent(event *DeviceEvent) error {
	s.ch <- event
	return nil
}

// waitEvent blocks until an event arrives or the test deadline passes.
func (s *chanSubscriber) waitEvent(t *testing.T) *DeviceEvent {
	t.Helper()
	select {
	case event := <-s.ch:
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for device event")
		return nil
	}
}

// newTestWatcher builds a watcher over a throwaway volumes directory with a
// short poll interval.
func newTestWatcher(t *testing.T) (*Watcher, *chanSubscriber, string) {
	t.Helper()

	parent := t.TempDir()
	m := volume.NewManager(types.DefaultVolumes,
		volume.WithStrategy(volume.NewMediaRootsStrategy(parent)),
		volume.WithMountCheck(func(string) bool { return true }))

	notifier := NewNotifier()
	sub := newChanSubscriber()
	notifier.Subscribe(sub)

	w := NewWatcher(m, notifier, 50*time.Millisecond)
	t.Cleanup(w.Stop)
	return w, sub, parent
}

// waitForCycle blocks until the watch loop has run at least one more
// iteration, which guarantees the initial scan has seeded the known set.
func waitForCycle(t *testing.T, w *Watcher, base int64) {
	t.Helper()
	require.Eventually(t, func() bool { return w.cycles.Load() > base },
		3*time.Second, 10*time.Millisecond)
}

func TestWatcher_EmitsConnectEvent(t *testing.T) {
	w, sub, parent := newTestWatcher(t)
	require.NoError(t, w.Start())
	waitForCycle(t, w, 0)

	require.NoError(t, os.MkdirAll(filepath.Join(parent, "CIRCUITPY"), 0755))

	event := sub.waitEvent(t)
	assert.Equal(t, EventDeviceConnected, event.Kind)
	assert.Equal(t, "CIRCUITPY", event.Name)
	assert.NotEmpty(t, event.ID)
	require.NotNil(t, event.Device)
	assert.False(t, event.Device.HasConfig)
}

func TestWatcher_EmitsDisconnectEvent(t *testing.T) {
	w, sub, parent := newTestWatcher(t)

	// Device present before the watcher starts: seeded as known, no event
	volPath := filepath.Join(parent, "MIDICAPTAIN")
	require.NoError(t, os.MkdirAll(volPath, 0755))

	require.NoError(t, w.Start())

	waitForCycle(t, w, 0)
	require.NoError(t, os.Remove(volPath))

	event := sub.waitEvent(t)
	assert.Equal(t, EventDeviceDisconnected, event.Kind)
	assert.Equal(t, "MIDICAPTAIN", event.Name)
	assert.Nil(t, event.Device)
}

func TestWatcher_IgnoresUnknownVolumes(t *testing.T) {
	w, sub, parent := newTestWatcher(t)
	require.NoError(t, w.Start())
	waitForCycle(t, w, 0)

	require.NoError(t, os.MkdirAll(filepath.Join(parent, "BACKUP"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "CIRCUITPY"), 0755))

	// Only the recognized volume produces an event
	event := sub.waitEvent(t)
	assert.Equal(t, "CIRCUITPY", event.Name)

	select {
	case extra := <-sub.ch:
		t.Fatalf("unexpected event for %s", extra.Name)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	w, _, _ := newTestWatcher(t)

	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	assert.True(t, w.Running())

	// A single Stop halts the single loop
	w.Stop()
	assert.False(t, w.Running())
}

func TestWatcher_StopIsIdempotentAndAcknowledged(t *testing.T) {
	w, _, _ := newTestWatcher(t)

	// Stop before any start is a no-op
	w.Stop()

	require.NoError(t, w.Start())
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, w.Running())

	w.Stop()
}

func TestWatcher_RestartAfterStop(t *testing.T) {
	w, sub, parent := newTestWatcher(t)

	require.NoError(t, w.Start())
	w.Stop()

	base := w.cycles.Load()
	require.NoError(t, w.Start())
	assert.True(t, w.Running())
	waitForCycle(t, w, base)

	require.NoError(t, os.MkdirAll(filepath.Join(parent, "CIRCUITPY"), 0755))
	event := sub.waitEvent(t)
	assert.Equal(t, EventDeviceConnected, event.Kind)
}

func TestReconcile(t *testing.T) {
	devA := types.DetectedDevice{Name: "CIRCUITPY", Path: "/media/CIRCUITPY"}
	devB := types.DetectedDevice{Name: "MIDICAPTAIN", Path: "/media/MIDICAPTAIN"}

	known := map[string]types.DetectedDevice{devA.Name: devA}

	connected, disconnected, next := reconcile(known, []types.DetectedDevice{devB})

	require.Len(t, connected, 1)
	assert.Equal(t, devB, connected[0])
	assert.Equal(t, []string{"CIRCUITPY"}, disconnected)
	assert.Equal(t, map[string]types.DetectedDevice{devB.Name: devB}, next)
}

func TestReconcile_NoChanges(t *testing.T) {
	dev := types.DetectedDevice{Name: "CIRCUITPY"}
	known := map[string]types.DetectedDevice{dev.Name: dev}

	connected, disconnected, next := reconcile(known, []types.DetectedDevice{dev})

	assert.Empty(t, connected)
	assert.Empty(t, disconnected)
	assert.Equal(t, known, next)
}
