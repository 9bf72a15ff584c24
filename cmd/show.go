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

	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/client"
	"github.com/we-are-mono/captain/daemon"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <config-path>",
	Short: "Show a device configuration file",
	Long:  `Reads and displays the config file at the given path on a controller volume.`,
	Args:  cobra.ExactArgs(1),
	Run:   runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the file text without decoding it against the schema")
}

func runShow(cmd *cobra.Command, args []string) {
	command := "read-config"
	if showRaw {
		command = "read-config-raw"
	}

	resp, err := client.Send(daemon.Request{
		Command: command,
		Path:    args[0],
	})
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

	if showRaw {
		if text, ok := resp.Data.(string); ok {
			fmt.Println(text)
			return
		}
	}

	pretty, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to format config: %v\n", err)
		exitWithError()
		return
	}
	fmt.Println(string(pretty))
}
