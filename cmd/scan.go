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
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/client"
	"github.com/we-are-mono/captain/daemon"
	"github.com/we-are-mono/captain/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List connected controller devices",
	Long:  `Scans mounted volumes for known controller devices and shows whether each carries a config file.`,
	Run:   runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	resp, err := client.Send(daemon.Request{Command: "scan"})
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

	devices := decodeDevices(resp.Data)
	if len(devices) == 0 {
		fmt.Println("No controller devices found")
		return
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	for _, dev := range devices {
		if dev.HasConfig {
			green.Printf("[OK]   ")
			fmt.Printf("%-14s %s\n", dev.Name, dev.ConfigPath)
		} else {
			yellow.Printf("[NEW]  ")
			fmt.Printf("%-14s %s (no config.json)\n", dev.Name, dev.Path)
		}
	}
}

// decodeDevices rebuilds the device list from the generic response data.
func decodeDevices(data interface{}) []types.DetectedDevice {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var devices []types.DetectedDevice
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil
	}
	return devices
}
