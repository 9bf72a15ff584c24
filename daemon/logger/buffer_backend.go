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

package logger

import (
	"strings"
	"sync"
)

// BufferBackend captures rendered entries in memory so tests can assert on
// log output without touching stderr or the filesystem.
type BufferBackend struct {
	format string
	lines  []string
	mu     sync.Mutex
}

// NewBufferBackend creates a backend that retains every entry it receives.
func NewBufferBackend(format string) *BufferBackend {
	return &BufferBackend{format: format}
}

// Write renders the entry and appends it to the captured lines.
func (b *BufferBackend) Write(entry *Entry) error {
	data, err := entry.Render(b.format)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.lines = append(b.lines, strings.TrimSuffix(string(data), "\n"))
	b.mu.Unlock()
	return nil
}

// Lines returns the captured entries in write order.
func (b *BufferBackend) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// String joins the captured entries into one newline-separated block.
func (b *BufferBackend) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// Close is a no-op for buffer backend
func (b *BufferBackend) Close() error {
	return nil
}
