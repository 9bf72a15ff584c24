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
)

// Subscriber is the interface for device event subscribers
type Subscriber interface {
	OnDeviceEvent(event *DeviceEvent) error
}

// Notifier fans device events out to subscribers (streaming IPC clients,
// the event history recorder)
type Notifier struct {
	subscribers []Subscriber
	mu          sync.RWMutex
}

// NewNotifier creates a new device event notifier
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make([]Subscriber, 0),
	}
}

// Subscribe adds a subscriber to receive device events
func (n *Notifier) Subscribe(sub Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, sub)
}

// Unsubscribe removes a subscriber from receiving device events
func (n *Notifier) Unsubscribe(sub Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subscribers {
		if s == sub {
			n.subscribers = append(n.subscribers[:i], n.subscribers[i+1:]...)
			return
		}
	}
}

// Emit sends a device event to all subscribers.
// Errors from subscribers are ignored so a broken client cannot stall the watcher.
func (n *Notifier) Emit(event *DeviceEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, sub := range n.subscribers {
		// Run in goroutine to prevent slow subscribers from blocking the watcher
		go func(s Subscriber) {
			_ = s.OnDeviceEvent(event)
		}(sub)
	}
}
