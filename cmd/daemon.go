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

// Package cmd implements the CLI commands for Captain using cobra.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/daemon"
	"github.com/we-are-mono/captain/daemon/logger"
	"github.com/we-are-mono/captain/store"
	"github.com/we-are-mono/captain/types"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run Captain as a daemon",
	Long:  `Starts the Captain daemon which listens for commands on a Unix socket.`,
	Run:   runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) {
	// Check for existing daemon via PID file
	pidFile := os.Getenv("CAPTAIN_PID_FILE")
	if pidFile == "" {
		pidFile = "/var/run/captain.pid"
	}
	if err := checkExistingDaemon(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	// Write our PID to file
	if err := writePIDFile(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to write PID file: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(pidFile)

	// Initialize structured logger
	if err := initializeLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	server, err := daemon.NewServer()
	if err != nil {
		logger.Error("Failed to create server", logger.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down...")
		if err := server.Stop(); err != nil {
			logger.Error("Failed to stop server", logger.Field{Key: "error", Value: err.Error()})
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Error("Server failed", logger.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}

// checkExistingDaemon checks if another daemon is already running
func checkExistingDaemon(pidFile string) error {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			// No PID file exists, we're good to start
			return nil
		}
		return fmt.Errorf("PID file exists but cannot be read: %w (remove %s manually if daemon is not running)", err, pidFile)
	}

	// Parse PID from file
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return fmt.Errorf("invalid PID in %s: %s (remove file manually if daemon is not running)", pidFile, pidStr)
	}

	// Check if process with this PID exists
	process, err := os.FindProcess(pid)
	if err != nil {
		os.Remove(pidFile)
		return nil
	}

	// Try to signal the process to see if it's actually running
	if err := process.Signal(syscall.Signal(0)); err != nil {
		// Process doesn't exist or we can't signal it, remove stale PID file
		os.Remove(pidFile)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d (stop it first or remove %s if it's stale)", pid, pidFile)
}

// writePIDFile writes the current process PID to a file
func writePIDFile(pidFile string) error {
	pid := os.Getpid()
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", pid)), 0600)
}

// initializeLogger sets up the structured logger from the captain config.
func initializeLogger() error {
	captainConfig, err := store.LoadCaptainConfig()
	if err != nil {
		return fmt.Errorf("failed to load captain config: %w", err)
	}

	logging := captainConfig.Logging
	if logging == nil {
		logging = &types.LoggingConfig{}
	}

	config := logger.Config{
		Level:     logging.Level,
		Format:    logging.Format,
		Component: "daemon",
	}
	if config.Level == "" {
		config.Level = "info"
	}
	if config.Format == "" {
		config.Format = "text"
	}

	outputs := logging.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	var backends []logger.Backend
	for _, output := range outputs {
		switch output {
		case "console":
			backends = append(backends, logger.NewConsoleBackend(config.Format))
		case "file":
			logFile := logging.File
			if logFile == "" {
				logFile = filepath.Join(store.GetConfigDir(), "captain.log")
			}
			fileBackend, err := logger.NewFileBackend(logFile, config.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize file backend: %w", err)
			}
			backends = append(backends, fileBackend)
		default:
			return fmt.Errorf("unknown log output: %s", output)
		}
	}

	logger.Init(config, backends)
	logger.Info("Logging initialized",
		logger.Field{Key: "outputs", Value: strings.Join(outputs, ",")},
		logger.Field{Key: "format", Value: config.Format})

	return nil
}
