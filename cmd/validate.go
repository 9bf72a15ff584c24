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

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [config-path]",
	Short: "Validate a device configuration without writing it",
	Long: `Checks a config file against the device schema and reports every
violation. With --file, validates a local JSON file instead of one on a
controller volume.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Validate a local JSON file")
}

func runValidate(cmd *cobra.Command, args []string) {
	req := daemon.Request{Command: "validate-config"}

	switch {
	case validateFile != "":
		raw, err := os.ReadFile(validateFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] failed to read %s: %v\n", validateFile, err)
			exitWithError()
			return
		}
		req.Raw = string(raw)
	case len(args) == 1:
		req.Path = args[0]
	default:
		fmt.Fprintln(os.Stderr, "[ERROR] provide a config path or --file")
		exitWithError()
		return
	}

	resp, err := client.Send(req)
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
