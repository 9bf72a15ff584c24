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

// Package client provides a client library for communicating with the Captain daemon.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/we-are-mono/captain/daemon"
)

// GetSocketPath returns the socket path, preferring CAPTAIN_SOCKET_PATH env var
func GetSocketPath() string {
	if path := os.Getenv("CAPTAIN_SOCKET_PATH"); path != "" {
		return path
	}
	return "/var/run/captain.sock"
}

// dial connects to the daemon socket and writes one request line. The caller
// owns the returned connection and reads whatever the command produces, a
// single response or an event stream.
func dial(req daemon.Request) (net.Conn, *bufio.Reader, error) {
	conn, err := net.Dial("unix", GetSocketPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to daemon (is it running?): %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if _, err := conn.Write(append(data, '\n')); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}

	return conn, bufio.NewReader(conn), nil
}

// Send performs one request-response exchange with the daemon.
func Send(req daemon.Request) (*daemon.Response, error) {
	conn, reader, err := dial(req)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp daemon.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// Subscribe opens a streaming connection to the daemon and invokes handle for
// every device event until the connection drops or handle returns an error.
func Subscribe(handle func(*daemon.DeviceEvent) error) error {
	conn, reader, err := dial(daemon.Request{Command: "events-subscribe"})
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return fmt.Errorf("event stream closed: %w", err)
		}

		var event daemon.DeviceEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}

		if err := handle(&event); err != nil {
			return err
		}
	}
}
