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
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/captain/client"
	"github.com/we-are-mono/captain/daemon"
)

var (
	eventsLimit int
	eventsGraph bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recorded device events",
	Long:  `Lists recent device connect/disconnect events from the daemon's event history.`,
	Run:   runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 50, "Maximum number of events to show")
	eventsCmd.Flags().BoolVar(&eventsGraph, "graph", false, "Plot hourly event activity instead of listing events")
}

func runEvents(cmd *cobra.Command, args []string) {
	if eventsGraph {
		runEventsGraph()
		return
	}

	resp, err := client.Send(daemon.Request{
		Command: "events",
		Limit:   eventsLimit,
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

	entries := decodeHistoryEntries(resp.Data)
	if len(entries) == 0 {
		fmt.Println("No recorded events")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, e := range entries {
		switch e.Kind {
		case daemon.EventDeviceConnected:
			green.Printf("+ ")
		case daemon.EventDeviceDisconnected:
			red.Printf("- ")
		default:
			fmt.Printf("? ")
		}
		fmt.Printf("%s  %-14s", e.Timestamp, e.Name)
		if e.Path != "" {
			fmt.Printf("  %s", e.Path)
		}
		fmt.Println()
	}
}

// runEventsGraph plots hourly event counts for the last 24 hours. The
// bucketing happens daemon-side against the full events table, so the plot
// stays accurate no matter how many rows the window holds.
func runEventsGraph() {
	resp, err := client.Send(daemon.Request{Command: "events-graph", Hours: 24})
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

	counts := decodeHourlyCounts(resp.Data)

	graph := asciigraph.Plot(counts,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("device events per hour (last 24h)"))
	fmt.Println(graph)
}

// decodeHistoryEntries rebuilds the entry list from the generic response data.
func decodeHistoryEntries(data interface{}) []daemon.HistoryEntry {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var entries []daemon.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

// decodeHourlyCounts rebuilds the per-hour series from the generic
// response data.
func decodeHourlyCounts(data interface{}) []float64 {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var counts []float64
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil
	}
	return counts
}
