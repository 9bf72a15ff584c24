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

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Collector accumulates validation errors so callers can report every
// violated rule at once instead of failing on the first. The editor runs
// disconnected from the physical device, so one complete correction list
// per round trip matters.
type Collector struct {
	errs []error
	ctx  string // Optional context prefix (e.g., "button 3", "encoder")
}

// NewCollector creates a new error collector.
func NewCollector() *Collector {
	return &Collector{}
}

// WithContext sets a context prefix that will be prepended to all subsequent
// errors, giving hierarchical messages like "encoder: label exceeds 8 characters".
func (c *Collector) WithContext(ctx string) *Collector {
	c.ctx = ctx
	return c
}

// Check collects an error. Nil errors are ignored. When a context prefix is
// set, joined errors are flattened so the prefix lands on every message, not
// just the first line.
func (c *Collector) Check(err error) {
	if err == nil {
		return
	}
	if c.ctx == "" {
		c.errs = append(c.errs, err)
		return
	}
	c.appendPrefixed(c.ctx, err)
}

// CheckMsg collects an error under an additional message prefix, appended
// after the context prefix when one is set. Joined errors are flattened so
// every message carries the full prefix.
func (c *Collector) CheckMsg(err error, msg string) {
	if err == nil {
		return
	}
	prefix := msg
	if c.ctx != "" {
		prefix = c.ctx + ": " + msg
	}
	c.appendPrefixed(prefix, err)
}

func (c *Collector) appendPrefixed(prefix string, err error) {
	for _, line := range Messages(err) {
		c.errs = append(c.errs, fmt.Errorf("%s: %s", prefix, line))
	}
}

// Error returns all accumulated errors joined together, or nil if none were
// collected. The joined error preserves collection order.
func (c *Collector) Error() error {
	return errors.Join(c.errs...)
}

// Messages returns the accumulated errors as a flat, ordered message list.
// Nested joined errors are flattened one message per line.
func (c *Collector) Messages() []string {
	return Messages(c.Error())
}

// Messages flattens a (possibly joined) validation error into its ordered
// message list. Returns nil for a nil error.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	return strings.Split(err.Error(), "\n")
}
