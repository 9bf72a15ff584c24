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
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/we-are-mono/captain/daemon/logger"
	"github.com/we-are-mono/captain/store"
	"github.com/we-are-mono/captain/types"
	"github.com/we-are-mono/captain/validation"
	"github.com/we-are-mono/captain/volume"
)

// GetSocketPath returns the socket path, preferring CAPTAIN_SOCKET_PATH env var
func GetSocketPath() string {
	if path := os.Getenv("CAPTAIN_SOCKET_PATH"); path != "" {
		return path
	}
	return "/var/run/captain.sock"
}

// handlerFunc is a function that handles a daemon command
type handlerFunc func(Request) Response

type Server struct {
	config   *types.CaptainConfig
	store    *store.Store
	notifier *Notifier
	watcher  *Watcher
	history  *History
	listener net.Listener
	done     chan struct{}
	handlers map[string]handlerFunc
}

func NewServer() (*Server, error) {
	config, err := store.LoadCaptainConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load captain config: %w", err)
	}

	socketPath := GetSocketPath()
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	volumes := volume.NewManager(config.Volumes)
	notifier := NewNotifier()
	var interval time.Duration
	if config.Watcher != nil {
		interval = time.Duration(config.Watcher.PollIntervalMS) * time.Millisecond
	}

	s := &Server{
		config:   config,
		store:    store.New(volumes),
		notifier: notifier,
		watcher:  NewWatcher(volumes, notifier, interval),
		listener: listener,
		done:     make(chan struct{}),
	}

	if config.History != nil && config.History.Enabled {
		dbPath := config.History.DatabasePath
		if dbPath == "" {
			dbPath = filepath.Join(store.GetConfigDir(), "history.db")
		}
		history, err := NewHistory(dbPath, config.History.MaxEvents)
		if err != nil {
			// History is an audit trail; the daemon runs without it.
			logger.Warn("Event history unavailable",
				logger.Field{Key: "error", Value: err.Error()})
		} else {
			s.history = history
			notifier.Subscribe(history)
		}
	}

	// Initialize command handlers
	s.handlers = map[string]handlerFunc{
		"status":           func(req Request) Response { return s.handleStatus() },
		"scan":             func(req Request) Response { return s.handleScan() },
		"read-config":      func(req Request) Response { return s.handleReadConfig(req.Path) },
		"read-config-raw":  func(req Request) Response { return s.handleReadConfigRaw(req.Path) },
		"write-config":     func(req Request) Response { return s.handleWriteConfig(req.Path, req.Value) },
		"write-config-raw": func(req Request) Response { return s.handleWriteConfigRaw(req.Path, req.Raw) },
		"validate-config":  func(req Request) Response { return s.handleValidateConfig(req.Path, req.Raw) },
		"watcher-start":    func(req Request) Response { return s.handleWatcherStart() },
		"watcher-stop":     func(req Request) Response { return s.handleWatcherStop() },
		"events":           func(req Request) Response { return s.handleEvents(req.Limit) },
		"events-graph":     func(req Request) Response { return s.handleEventsGraph(req.Hours) },
	}

	return s, nil
}

func (s *Server) Start() error {
	logger.Info("Captain daemon starting")

	if s.config.Watcher != nil && s.config.Watcher.Autostart {
		if err := s.watcher.Start(); err != nil {
			logger.Warn("Failed to autostart watcher",
				logger.Field{Key: "error", Value: err.Error()})
		}
	}

	logger.Info("Daemon listening", logger.Field{Key: "socket", Value: GetSocketPath()})

	// Accept connections
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if we're shutting down
			select {
			case <-s.done:
				return nil
			default:
				logger.Error("Failed to accept connection",
					logger.Field{Key: "error", Value: err.Error()})
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) Stop() error {
	close(s.done)
	s.watcher.Stop()
	if s.history != nil {
		s.history.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(GetSocketPath())
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		conn.Close()
		return
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendResponse(conn, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
		})
		conn.Close()
		return
	}

	// Handle streaming event subscription specially (keeps connection open)
	if req.Command == "events-subscribe" {
		defer conn.Close()
		s.handleEventsSubscribe(conn)
		return
	}

	// For all other commands, use normal request-response pattern
	defer conn.Close()
	resp := s.handleRequest(req)
	s.sendResponse(conn, resp)
}

func (s *Server) handleRequest(req Request) Response {
	handler, exists := s.handlers[req.Command]
	if !exists {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
	return handler(req)
}

func (s *Server) handleStatus() Response {
	devices := s.store.Volumes().Scan()

	data := map[string]interface{}{
		"watcher_running": s.watcher.Running(),
		"devices":         devices,
		"device_count":    len(devices),
		"history_enabled": s.history != nil,
		"socket":          GetSocketPath(),
	}

	return Response{
		Success: true,
		Data:    data,
		Message: "Daemon status retrieved",
	}
}

func (s *Server) handleScan() Response {
	devices := s.store.Volumes().Scan()
	return Response{
		Success: true,
		Data:    devices,
		Message: fmt.Sprintf("%d device(s) found", len(devices)),
	}
}

func (s *Server) handleReadConfig(path string) Response {
	if path == "" {
		return Response{Success: false, Error: "path required"}
	}

	config, err := s.store.ReadConfig(path)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	return Response{
		Success: true,
		Data:    config,
	}
}

func (s *Server) handleReadConfigRaw(path string) Response {
	if path == "" {
		return Response{Success: false, Error: "path required"}
	}

	raw, err := s.store.ReadRaw(path)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	return Response{
		Success: true,
		Data:    raw,
	}
}

// decodeConfigValue rebuilds a DeviceConfig from the request's generic value,
// going through JSON so enum fields get the same strict parsing as file reads.
func decodeConfigValue(value interface{}) (*types.DeviceConfig, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var config types.DeviceConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid config structure: %w", err)
	}

	return &config, nil
}

func (s *Server) handleWriteConfig(path string, value interface{}) Response {
	if path == "" {
		return Response{Success: false, Error: "path required"}
	}

	config, err := decodeConfigValue(value)
	if err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	if verr := config.Validate(); verr != nil {
		return Response{
			Success: false,
			Error:   "validation failed",
			Details: validation.Messages(verr),
		}
	}

	if err := s.store.WriteConfig(path, config); err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	s.recordWrite(path, config)

	return Response{
		Success: true,
		Message: fmt.Sprintf("Configuration written to %s", path),
	}
}

func (s *Server) handleWriteConfigRaw(path, raw string) Response {
	if path == "" {
		return Response{Success: false, Error: "path required"}
	}
	if raw == "" {
		return Response{Success: false, Error: "raw config required"}
	}

	var config types.DeviceConfig
	if err := store.UnmarshalJSON([]byte(raw), &config); err != nil {
		return Response{Success: false, Error: fmt.Sprintf("failed to parse config: %v", err)}
	}

	if verr := config.Validate(); verr != nil {
		return Response{
			Success: false,
			Error:   "validation failed",
			Details: validation.Messages(verr),
		}
	}

	if err := s.store.WriteRaw(path, []byte(raw)); err != nil {
		return Response{Success: false, Error: err.Error()}
	}

	s.recordWrite(path, &config)

	return Response{
		Success: true,
		Message: fmt.Sprintf("Configuration written to %s", path),
	}
}

// handleValidateConfig validates configuration without writing anything.
// Raw JSON text takes precedence; otherwise the file at path is read.
func (s *Server) handleValidateConfig(path, raw string) Response {
	var config *types.DeviceConfig

	switch {
	case raw != "":
		var parsed types.DeviceConfig
		if err := store.UnmarshalJSON([]byte(raw), &parsed); err != nil {
			return Response{Success: false, Error: fmt.Sprintf("failed to parse config: %v", err)}
		}
		config = &parsed
	case path != "":
		parsed, err := s.store.ReadConfig(path)
		if err != nil {
			return Response{Success: false, Error: err.Error()}
		}
		config = parsed
	default:
		return Response{Success: false, Error: "path or raw config required"}
	}

	if verr := config.Validate(); verr != nil {
		return Response{
			Success: false,
			Error:   "validation failed",
			Details: validation.Messages(verr),
		}
	}

	return Response{
		Success: true,
		Message: "Configuration is valid",
	}
}

func (s *Server) handleWatcherStart() Response {
	alreadyRunning := s.watcher.Running()
	if err := s.watcher.Start(); err != nil {
		return Response{Success: false, Error: fmt.Sprintf("failed to start watcher: %v", err)}
	}

	if alreadyRunning {
		return Response{Success: true, Message: "Watcher already running"}
	}
	return Response{Success: true, Message: "Watcher started"}
}

func (s *Server) handleWatcherStop() Response {
	if !s.watcher.Running() {
		return Response{Success: true, Message: "Watcher not running"}
	}
	s.watcher.Stop()
	return Response{Success: true, Message: "Watcher stopped"}
}

func (s *Server) handleEvents(limit int) Response {
	if s.history == nil {
		return Response{Success: false, Error: "event history is disabled"}
	}

	entries, err := s.history.RecentEvents(limit)
	if err != nil {
		return Response{Success: false, Error: fmt.Sprintf("failed to query events: %v", err)}
	}

	return Response{
		Success: true,
		Data:    entries,
		Message: fmt.Sprintf("%d event(s)", len(entries)),
	}
}

func (s *Server) handleEventsGraph(hours int) Response {
	if s.history == nil {
		return Response{Success: false, Error: "event history is disabled"}
	}

	counts, err := s.history.HourlyCounts(hours)
	if err != nil {
		return Response{Success: false, Error: fmt.Sprintf("failed to query event counts: %v", err)}
	}

	return Response{
		Success: true,
		Data:    counts,
		Message: fmt.Sprintf("event counts for the last %d hour(s)", len(counts)),
	}
}

// recordWrite stores the write in history when enabled. The error path is
// inside History; a failed audit row never fails the write.
func (s *Server) recordWrite(path string, config *types.DeviceConfig) {
	if s.history == nil {
		return
	}
	data, err := json.Marshal(config)
	size := 0
	if err == nil {
		size = len(data)
	}
	s.history.RecordWrite(path, size)
}

// socketSubscriber forwards device events to a connected client as
// newline-delimited JSON.
type socketSubscriber struct {
	conn net.Conn
}

func (ss *socketSubscriber) OnDeviceEvent(event *DeviceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := ss.conn.Write(data); err != nil {
		return err
	}
	return nil
}

// handleEventsSubscribe handles a streaming event subscription.
// This is a special handler that keeps the connection open.
func (s *Server) handleEventsSubscribe(conn net.Conn) {
	subscriber := &socketSubscriber{conn: conn}

	s.notifier.Subscribe(subscriber)
	defer s.notifier.Unsubscribe(subscriber)

	logger.Info("Client subscribed to device events")

	// Keep connection open until client disconnects
	buffer := make([]byte, 1)
	for {
		if _, err := conn.Read(buffer); err != nil {
			logger.Info("Client unsubscribed from device events")
			return
		}
	}
}

func (s *Server) sendResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("Failed to marshal response",
			logger.Field{Key: "error", Value: err.Error()})
		return
	}

	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		logger.Error("Failed to write response",
			logger.Field{Key: "error", Value: err.Error()})
	}
}
