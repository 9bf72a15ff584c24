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
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/captain/types"
)

// newTestServer boots a complete daemon over a throwaway socket, config
// directory, and volumes directory.
func newTestServer(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	volumesDir := filepath.Join(dir, "volumes")
	require.NoError(t, os.MkdirAll(volumesDir, 0755))

	socketPath := filepath.Join(dir, "captain.sock")
	t.Setenv("CAPTAIN_SOCKET_PATH", socketPath)
	t.Setenv("CAPTAIN_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("CAPTAIN_VOLUMES_DIR", volumesDir)

	s, err := NewServer()
	require.NoError(t, err)
	go s.Start()
	t.Cleanup(func() { s.Stop() })

	return socketPath, volumesDir
}

// sendRequest performs one request-response exchange over the daemon socket.
func sendRequest(t *testing.T, socketPath string, req Request) *Response {
	t.Helper()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	data, err := json.Marshal(req)
	require.NoError(t, err)
	data = append(data, '\n')
	_, err = conn.Write(data)
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	return &resp
}

func TestServer_Status(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "status"})
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, socketPath, data["socket"])
	assert.Equal(t, true, data["history_enabled"])
	assert.Equal(t, true, data["watcher_running"])
}

func TestServer_ScanFindsDevices(t *testing.T) {
	socketPath, volumesDir := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(volumesDir, "CIRCUITPY"), 0755))

	resp := sendRequest(t, socketPath, Request{Command: "scan"})
	require.True(t, resp.Success)

	// Data comes back as generic JSON; rebuild the typed slice
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var devices []types.DetectedDevice
	require.NoError(t, json.Unmarshal(raw, &devices))

	require.Len(t, devices, 1)
	assert.Equal(t, "CIRCUITPY", devices[0].Name)
	assert.False(t, devices[0].HasConfig)
}

func TestServer_UnknownCommand(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "self-destruct"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown command")
}

func TestServer_ValidateConfigRaw(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{
		Command: "validate-config",
		Raw:     `{"device": "mini6", "buttons": []}`,
	})
	require.False(t, resp.Success)
	assert.Equal(t, "validation failed", resp.Error)
	require.NotEmpty(t, resp.Details)
	assert.Contains(t, resp.Details[0], "expected 6 buttons for mini6, found 0")
}

func TestServer_ValidateConfigRequiresInput(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "validate-config"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "path or raw config required")
}

func TestServer_ReadConfigRequiresPath(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "read-config"})
	assert.False(t, resp.Success)
	assert.Equal(t, "path required", resp.Error)
}

func TestServer_WatcherStartStop(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "watcher-stop"})
	require.True(t, resp.Success)
	assert.Equal(t, "Watcher stopped", resp.Message)

	status := sendRequest(t, socketPath, Request{Command: "status"})
	data := status.Data.(map[string]interface{})
	assert.Equal(t, false, data["watcher_running"])

	resp = sendRequest(t, socketPath, Request{Command: "watcher-start"})
	require.True(t, resp.Success)
	assert.Equal(t, "Watcher started", resp.Message)

	resp = sendRequest(t, socketPath, Request{Command: "watcher-start"})
	require.True(t, resp.Success)
	assert.Equal(t, "Watcher already running", resp.Message)
}

func TestServer_EventsEmptyHistory(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{Command: "events"})
	require.True(t, resp.Success)
	assert.Equal(t, "0 event(s)", resp.Message)
}

func TestServer_EventsGraph(t *testing.T) {
	socketPath, volumesDir := newTestServer(t)

	// Give the watch loop a moment to seed its known set before the
	// mount event fires
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.MkdirAll(filepath.Join(volumesDir, "CIRCUITPY"), 0755))

	// Wait for the connect event to reach history through the notifier
	require.Eventually(t, func() bool {
		resp := sendRequest(t, socketPath, Request{Command: "events"})
		return resp.Success && resp.Message == "1 event(s)"
	}, 3*time.Second, 50*time.Millisecond)

	resp := sendRequest(t, socketPath, Request{Command: "events-graph", Hours: 6})
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var counts []float64
	require.NoError(t, json.Unmarshal(raw, &counts))

	require.Len(t, counts, 6)
	assert.Equal(t, float64(1), counts[5])
}

func TestServer_EventsSubscribeStreams(t *testing.T) {
	socketPath, volumesDir := newTestServer(t)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	data, err := json.Marshal(Request{Command: "events-subscribe"})
	require.NoError(t, err)
	_, err = conn.Write(append(data, '\n'))
	require.NoError(t, err)

	// Give the server a moment to register the subscription before the
	// mount event fires
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.MkdirAll(filepath.Join(volumesDir, "MIDICAPTAIN"), 0755))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var event DeviceEvent
	require.NoError(t, json.Unmarshal(line, &event))
	assert.Equal(t, EventDeviceConnected, event.Kind)
	assert.Equal(t, "MIDICAPTAIN", event.Name)
}

func TestServer_ReadConfigRejectsUnknownPath(t *testing.T) {
	socketPath, _ := newTestServer(t)

	resp := sendRequest(t, socketPath, Request{
		Command: "read-config",
		Path:    "/etc/passwd",
	})
	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, "not on a recognized device volume")
}
