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

	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/client"
	"github.com/we-are-mono/captain/daemon"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and device status",
	Long:  `Displays daemon status including the mount watcher state and currently connected devices.`,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	resp, err := client.Send(daemon.Request{Command: "status"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		exitWithError()
		return
	}

	if !resp.Success {
		fmt.Fprintf(os.Stderr, "[ERROR] %s\n", resp.Error)
		exitWithError()
		return
	}

	dataMap, ok := resp.Data.(map[string]interface{})
	if !ok {
		fmt.Println("Unable to parse status data")
		return
	}

	fmt.Println("Captain Configuration Daemon")
	fmt.Println("============================")
	fmt.Println()

	if socket, ok := dataMap["socket"].(string); ok {
		fmt.Printf("  Socket:   %s\n", socket)
	}

	if running, ok := dataMap["watcher_running"].(bool); ok && running {
		fmt.Println("[OK] Watcher:   Running")
	} else {
		fmt.Println("[DOWN] Watcher: Not running")
	}

	if enabled, ok := dataMap["history_enabled"].(bool); ok && enabled {
		fmt.Println("[OK] History:   Enabled")
	} else {
		fmt.Println("[INFO] History: Disabled")
	}

	fmt.Println()

	count := 0
	if c, ok := dataMap["device_count"].(float64); ok {
		count = int(c)
	}
	fmt.Printf("Devices: %d connected\n", count)

	if devicesData, ok := dataMap["devices"].([]interface{}); ok {
		for _, devData := range devicesData {
			dev, ok := devData.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := dev["name"].(string)
			path, _ := dev["path"].(string)
			hasConfig, _ := dev["has_config"].(bool)

			marker := "(no config.json)"
			if hasConfig {
				marker = "(config.json)"
			}
			fmt.Printf("  %-14s %s %s\n", name, path, marker)
		}
	}
}
