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

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/client"
	"github.com/we-are-mono/captain/daemon"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream device connect/disconnect events",
	Long:  `Subscribes to the daemon's event stream and prints each device transition as it happens. Press Ctrl-C to stop.`,
	Run:   runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Println("Watching for device events (Ctrl-C to stop)...")

	err := client.Subscribe(func(event *daemon.DeviceEvent) error {
		ts := event.Timestamp.Local().Format("15:04:05")
		switch event.Kind {
		case daemon.EventDeviceConnected:
			green.Printf("%s  + %s", ts, event.Name)
			if event.Device != nil && event.Device.HasConfig {
				fmt.Printf("  (%s)", event.Device.ConfigPath)
			}
			fmt.Println()
		case daemon.EventDeviceDisconnected:
			red.Printf("%s  - %s\n", ts, event.Name)
		default:
			fmt.Printf("%s  ? %s %s\n", ts, event.Kind, event.Name)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		exitWithError()
	}
}
