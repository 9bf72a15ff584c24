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

// Package validation provides reusable validation helpers for Captain's
// configuration types.
package validation

import (
	"fmt"
	"unicode/utf8"
)

// MaxLabelLength is the widest label the controller display can show.
const MaxLabelLength = 8

// ValidateControlChange validates that a MIDI CC number is in [0, 127].
func ValidateControlChange(cc int) error {
	if cc < 0 || cc > 127 {
		return fmt.Errorf("cc %d out of valid range [0, 127]", cc)
	}
	return nil
}

// ValidateLabel validates that a display label fits the controller screen.
func ValidateLabel(label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return fmt.Errorf("label %q exceeds %d characters", label, MaxLabelLength)
	}
	return nil
}

// ValidateValueRange validates a MIDI value range: both bounds in [0, 127]
// and max not below min.
func ValidateValueRange(min, max int) error {
	if min < 0 || min > 127 {
		return fmt.Errorf("min %d out of valid range [0, 127]", min)
	}
	if max < 0 || max > 127 {
		return fmt.Errorf("max %d out of valid range [0, 127]", max)
	}
	if max < min {
		return fmt.Errorf("max (%d) must be >= min (%d)", max, min)
	}
	return nil
}

// ValidateInitialValue validates that an initial value lies within its range.
func ValidateInitialValue(initial, min, max int) error {
	if initial < min || initial > max {
		return fmt.Errorf("initial (%d) must be between min (%d) and max (%d)", initial, min, max)
	}
	return nil
}
