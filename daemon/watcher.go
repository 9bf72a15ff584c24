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
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/we-are-mono/captain/daemon/logger"
	"github.com/we-are-mono/captain/types"
	"github.com/we-are-mono/captain/volume"
)

// DefaultPollInterval is the reconciliation period used when the platform
// has no watchable mount directory, and the fallback rescan period when it
// does (filesystem events can be dropped under load).
const DefaultPollInterval = 2 * time.Second

// Watcher monitors device volume mounts and emits connect/disconnect events.
// At most one watch loop runs at a time; Start and Stop are idempotent and
// the watcher can be restarted after a stop.
type Watcher struct {
	volumes  *volume.Manager
	notifier *Notifier
	interval time.Duration

	running atomic.Bool
	mu      sync.Mutex // guards stop/stopped channel swap across restarts
	stop    chan struct{}
	stopped chan struct{}

	// Loop iteration count, read by tests to prove a single loop runs.
	cycles atomic.Int64
}

// NewWatcher creates a watcher over the given volume manager. Events are
// published through the notifier. A non-positive interval falls back to
// DefaultPollInterval.
func NewWatcher(volumes *volume.Manager, notifier *Notifier, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		volumes:  volumes,
		notifier: notifier,
		interval: interval,
	}
}

// Running reports whether a watch loop is currently active.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

// Start begins monitoring. Calling Start on a running watcher is a no-op.
// When the mount directory cannot be subscribed to for filesystem events,
// the loop degrades to interval polling instead of failing.
func (w *Watcher) Start() error {
	if !w.running.CompareAndSwap(false, true) {
		logger.Debug("Watcher already running, start ignored")
		return nil
	}

	w.mu.Lock()
	w.stop = make(chan struct{}, 1)
	w.stopped = make(chan struct{})
	stop, stopped := w.stop, w.stopped
	w.mu.Unlock()

	watchDir, ok := w.volumes.Strategy().WatchDir()
	var fsw *fsnotify.Watcher
	if ok {
		var err error
		fsw, err = fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(watchDir); err != nil {
				fsw.Close()
				fsw = nil
			}
		}
		if err != nil {
			// Fall back to polling rather than failing the start; the
			// directory may be on a filesystem fsnotify cannot watch.
			logger.Warn("Filesystem watch unavailable, polling instead",
				logger.Field{Key: "dir", Value: watchDir},
				logger.Field{Key: "error", Value: err.Error()})
		}
	}

	go w.run(fsw, stop, stopped)
	logger.Info("Watcher started",
		logger.Field{Key: "mode", Value: watchMode(fsw)},
		logger.Field{Key: "interval", Value: w.interval.String()})
	return nil
}

// Stop halts the watch loop and waits for it to acknowledge. Calling Stop
// on a stopped watcher is a no-op.
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}

	w.mu.Lock()
	stop, stopped := w.stop, w.stopped
	w.mu.Unlock()

	// Buffered send: the loop may already be on its way out.
	select {
	case stop <- struct{}{}:
	default:
	}
	<-stopped
	logger.Info("Watcher stopped")
}

func watchMode(fsw *fsnotify.Watcher) string {
	if fsw != nil {
		return "fsnotify"
	}
	return "poll"
}

// run is the single watch loop. The known set is seeded from an initial
// scan so devices present at startup do not produce spurious connect events.
func (w *Watcher) run(fsw *fsnotify.Watcher, stop chan struct{}, stopped chan struct{}) {
	defer func() {
		if fsw != nil {
			fsw.Close()
		}
		w.running.Store(false)
		close(stopped)
	}()

	known := make(map[string]types.DetectedDevice)
	for _, dev := range w.volumes.Scan() {
		known[dev.Name] = dev
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var errs chan error
	if fsw != nil {
		events = fsw.Events
		errs = fsw.Errors
	}

	for {
		select {
		case <-stop:
			return
		case ev := <-events:
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				known = w.rescan(known)
			}
		case err := <-errs:
			if err != nil {
				logger.Warn("Filesystem watch error",
					logger.Field{Key: "error", Value: err.Error()})
			}
		case <-ticker.C:
			known = w.rescan(known)
		}
		w.cycles.Add(1)
	}
}

// rescan diffs the current mounts against the known set and emits events
// for every transition. Scan failures on individual volumes are already
// absorbed inside the manager; a rescan never stops the loop.
func (w *Watcher) rescan(known map[string]types.DetectedDevice) map[string]types.DetectedDevice {
	connected, disconnected, next := reconcile(known, w.volumes.Scan())

	for i := range connected {
		dev := connected[i]
		logger.Info("Device connected",
			logger.Field{Key: "name", Value: dev.Name},
			logger.Field{Key: "path", Value: dev.Path},
			logger.Field{Key: "has_config", Value: dev.HasConfig})
		w.notifier.Emit(&DeviceEvent{
			ID:        uuid.New().String(),
			Kind:      EventDeviceConnected,
			Name:      dev.Name,
			Device:    &dev,
			Timestamp: time.Now().UTC(),
		})
	}

	for _, name := range disconnected {
		logger.Info("Device disconnected",
			logger.Field{Key: "name", Value: name})
		w.notifier.Emit(&DeviceEvent{
			ID:        uuid.New().String(),
			Kind:      EventDeviceDisconnected,
			Name:      name,
			Timestamp: time.Now().UTC(),
		})
	}

	return next
}

// reconcile computes the set difference between the previously known
// devices and the current scan. Devices are identified by volume name.
func reconcile(known map[string]types.DetectedDevice, current []types.DetectedDevice) (connected []types.DetectedDevice, disconnected []string, next map[string]types.DetectedDevice) {
	next = make(map[string]types.DetectedDevice, len(current))
	for _, dev := range current {
		next[dev.Name] = dev
		if _, ok := known[dev.Name]; !ok {
			connected = append(connected, dev)
		}
	}
	for name := range known {
		if _, ok := next[name]; !ok {
			disconnected = append(disconnected, name)
		}
	}
	return connected, disconnected, next
}
