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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Output formats understood by Render and the backends.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Entry is one structured log record as the daemon emits it.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// newEntry stamps a record with the current time.
func newEntry(level LogLevel, component, message string, fields map[string]interface{}) *Entry {
	return &Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: component,
		Message:   message,
		Fields:    fields,
	}
}

// Render produces the newline-terminated wire form of the entry. Text output
// lists fields in sorted key order so log lines are stable across runs.
func (e *Entry) Render(format string) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal log entry: %w", err)
		}
		return append(data, '\n'), nil
	}

	var b strings.Builder
	b.WriteString(e.Timestamp.Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(e.Level)
	b.WriteString("]")
	if e.Component != "" {
		b.WriteString(" [")
		b.WriteString(e.Component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fieldString(e.Fields[k]))
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}

// fieldString renders a field value for text output. Strings pass through
// unquoted; everything else goes through JSON.
func fieldString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
