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

// Package daemon implements the Captain daemon server and IPC protocol.
package daemon

import (
	"time"

	"github.com/we-are-mono/captain/types"
)

// Request represents a command sent to the daemon
type Request struct {
	Value   interface{} `json:"value,omitempty"`
	Command string      `json:"command"` // scan, read-config, read-config-raw, write-config, write-config-raw, validate-config, watcher-start, watcher-stop, status, events, events-graph, events-subscribe
	Path    string      `json:"path,omitempty"`
	Raw     string      `json:"raw,omitempty"`   // Raw JSON text for *-raw commands
	Limit   int         `json:"limit,omitempty"` // Row limit for events queries (0 = default)
	Hours   int         `json:"hours,omitempty"` // Window for events-graph (0 = default)
}

// Response represents the daemon's response
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"` // Per-field validation messages, in schema order
	Success bool        `json:"success"`
}

// Event kinds emitted over the notifier and the events-subscribe stream.
const (
	EventDeviceConnected    = "device-connected"
	EventDeviceDisconnected = "device-disconnected"
)

// DeviceEvent describes a single mount lifecycle transition. Disconnect
// events carry only the volume name; the path stopped meaning anything the
// moment the volume went away.
type DeviceEvent struct {
	ID        string                `json:"id"`
	Kind      string                `json:"kind"`
	Name      string                `json:"name"`
	Device    *types.DetectedDevice `json:"device,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}
