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

var watcherCmd = &cobra.Command{
	Use:   "watcher",
	Short: "Control the device mount watcher",
}

var watcherStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the mount watcher",
	Run:   func(cmd *cobra.Command, args []string) { runWatcherCommand("watcher-start") },
}

var watcherStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the mount watcher",
	Run:   func(cmd *cobra.Command, args []string) { runWatcherCommand("watcher-stop") },
}

func init() {
	rootCmd.AddCommand(watcherCmd)
	watcherCmd.AddCommand(watcherStartCmd)
	watcherCmd.AddCommand(watcherStopCmd)
}

func runWatcherCommand(command string) {
	resp, err := client.Send(daemon.Request{Command: command})
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

	fmt.Println(resp.Message)
}
