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

var writeCmd = &cobra.Command{
	Use:   "write <config-path> <source-file>",
	Short: "Write a configuration file to a device",
	Long: `Validates the JSON in source-file and writes it to the config path on a
controller volume. The write is refused if the file fails validation or the
device is no longer mounted.`,
	Args: cobra.ExactArgs(2),
	Run:  runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) {
	raw, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] failed to read %s: %v\n", args[1], err)
		exitWithError()
		return
	}

	resp, err := client.Send(daemon.Request{
		Command: "write-config-raw",
		Path:    args[0],
		Raw:     string(raw),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		exitWithError()
		return
	}

	if !resp.Success {
		printValidationFailure(resp)
		exitWithError()
		return
	}

	color.New(color.FgGreen).Printf("✓ ")
	fmt.Println(resp.Message)
}

// printValidationFailure prints the error and, when present, the per-field
// validation messages in schema order.
func printValidationFailure(resp *daemon.Response) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "❌ %s\n", resp.Error)
	for _, detail := range resp.Details {
		fmt.Fprintf(os.Stderr, "   - %s\n", detail)
	}
}
