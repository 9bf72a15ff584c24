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

// Package types defines the core data structures for Captain's configuration.
// It includes the device configuration schema written to config.json on the
// controller volume, the detected-device record produced by volume scanning,
// and the application's own settings file.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/we-are-mono/captain/validation"
)

// DeviceKind identifies the hardware class of a controller. The class fixes
// the number of physical footswitches and which peripherals exist at all.
type DeviceKind string

const (
	// DeviceStd10 is the full-size controller: 10 footswitches, one rotary
	// encoder and two expression pedal jacks.
	DeviceStd10 DeviceKind = "std10"

	// DeviceMini6 is the compact controller: 6 footswitches, no encoder,
	// no expression jacks.
	DeviceMini6 DeviceKind = "mini6"
)

// ButtonCount returns the number of footswitches mandated by the hardware class.
func (k DeviceKind) ButtonCount() int {
	if k == DeviceMini6 {
		return 6
	}
	return 10
}

// UnmarshalJSON rejects unknown device kinds at parse time.
func (k *DeviceKind) UnmarshalJSON(data []byte) error {
	s, err := parseEnum(data, "device kind", string(DeviceStd10), string(DeviceMini6))
	if err != nil {
		return err
	}
	*k = DeviceKind(s)
	return nil
}

// ButtonColor is the LED color assigned to a footswitch.
type ButtonColor string

// The firmware's fixed LED palette.
const (
	ColorRed     ButtonColor = "red"
	ColorGreen   ButtonColor = "green"
	ColorBlue    ButtonColor = "blue"
	ColorYellow  ButtonColor = "yellow"
	ColorCyan    ButtonColor = "cyan"
	ColorMagenta ButtonColor = "magenta"
	ColorOrange  ButtonColor = "orange"
	ColorPurple  ButtonColor = "purple"
	ColorWhite   ButtonColor = "white"
)

var buttonColors = []string{
	string(ColorRed), string(ColorGreen), string(ColorBlue),
	string(ColorYellow), string(ColorCyan), string(ColorMagenta),
	string(ColorOrange), string(ColorPurple), string(ColorWhite),
}

// Known reports whether the color is part of the firmware palette.
func (c ButtonColor) Known() bool {
	for _, v := range buttonColors {
		if string(c) == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON rejects colors outside the firmware palette at parse time.
func (c *ButtonColor) UnmarshalJSON(data []byte) error {
	s, err := parseEnum(data, "color", buttonColors...)
	if err != nil {
		return err
	}
	*c = ButtonColor(s)
	return nil
}

// TriggerMode controls how a switch emits its CC message.
type TriggerMode string

const (
	// TriggerToggle alternates between on and off values on each press.
	TriggerToggle TriggerMode = "toggle"

	// TriggerMomentary sends the on value while held and off on release.
	TriggerMomentary TriggerMode = "momentary"
)

// UnmarshalJSON rejects unknown trigger modes at parse time.
func (m *TriggerMode) UnmarshalJSON(data []byte) error {
	s, err := parseEnum(data, "mode", string(TriggerToggle), string(TriggerMomentary))
	if err != nil {
		return err
	}
	*m = TriggerMode(s)
	return nil
}

// IdleLEDMode controls the switch LED while the switch is off.
type IdleLEDMode string

const (
	// IdleDim keeps the LED lit at reduced brightness.
	IdleDim IdleLEDMode = "dim"

	// IdleOff turns the LED fully off.
	IdleOff IdleLEDMode = "off"
)

// UnmarshalJSON rejects unknown idle LED modes at parse time.
func (m *IdleLEDMode) UnmarshalJSON(data []byte) error {
	s, err := parseEnum(data, "off_mode", string(IdleDim), string(IdleOff))
	if err != nil {
		return err
	}
	*m = IdleLEDMode(s)
	return nil
}

// Polarity is the sweep direction of an expression pedal.
type Polarity string

const (
	// PolarityNormal maps heel-down to the minimum value.
	PolarityNormal Polarity = "normal"

	// PolarityInverted maps heel-down to the maximum value.
	PolarityInverted Polarity = "inverted"
)

// UnmarshalJSON rejects unknown polarities at parse time.
func (p *Polarity) UnmarshalJSON(data []byte) error {
	s, err := parseEnum(data, "polarity", string(PolarityNormal), string(PolarityInverted))
	if err != nil {
		return err
	}
	*p = Polarity(s)
	return nil
}

// ButtonSpec configures a single footswitch.
type ButtonSpec struct {
	Label   string      `json:"label"`
	CC      int         `json:"cc"`
	Color   ButtonColor `json:"color"`
	Mode    TriggerMode `json:"mode"`
	OffMode IdleLEDMode `json:"off_mode"`
}

// UnmarshalJSON applies the firmware defaults for fields absent from the document.
func (b *ButtonSpec) UnmarshalJSON(data []byte) error {
	type alias ButtonSpec
	a := alias{Mode: TriggerToggle, OffMode: IdleDim}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = ButtonSpec(a)
	return nil
}

// MarshalJSON drops off_mode at its dim default, matching the documents the
// firmware's own editor writes.
func (b ButtonSpec) MarshalJSON() ([]byte, error) {
	type alias ButtonSpec
	doc := struct {
		alias
		OffMode IdleLEDMode `json:"off_mode,omitempty"`
	}{alias: alias(b)}
	if b.OffMode != IdleDim {
		doc.OffMode = b.OffMode
	}
	return json.Marshal(doc)
}

// EncoderPushSpec configures the encoder's integrated push switch.
type EncoderPushSpec struct {
	Enabled bool        `json:"enabled"`
	CC      int         `json:"cc"`
	Label   string      `json:"label"`
	Mode    TriggerMode `json:"mode"`
}

// UnmarshalJSON applies the firmware defaults for fields absent from the document.
func (p *EncoderPushSpec) UnmarshalJSON(data []byte) error {
	type alias EncoderPushSpec
	a := alias{Mode: TriggerToggle}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = EncoderPushSpec(a)
	return nil
}

// EncoderSpec configures the rotary encoder (std10 only).
type EncoderSpec struct {
	Enabled bool             `json:"enabled"`
	CC      int              `json:"cc"`
	Label   string           `json:"label"`
	Min     int              `json:"min"`
	Max     int              `json:"max"`
	Initial int              `json:"initial"`
	Steps   *int             `json:"steps,omitempty"`
	Push    *EncoderPushSpec `json:"push,omitempty"`
}

// UnmarshalJSON applies the firmware defaults for fields absent from the document.
func (e *EncoderSpec) UnmarshalJSON(data []byte) error {
	type alias EncoderSpec
	a := alias{Max: 127, Initial: 64}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = EncoderSpec(a)
	return nil
}

// ExpressionSpec configures one expression pedal jack.
type ExpressionSpec struct {
	Enabled   bool     `json:"enabled"`
	CC        int      `json:"cc"`
	Label     string   `json:"label"`
	Min       int      `json:"min"`
	Max       int      `json:"max"`
	Polarity  Polarity `json:"polarity"`
	Threshold int      `json:"threshold"`
}

// UnmarshalJSON applies the firmware defaults for fields absent from the document.
func (e *ExpressionSpec) UnmarshalJSON(data []byte) error {
	type alias ExpressionSpec
	a := alias{Max: 127, Polarity: PolarityNormal, Threshold: 2}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = ExpressionSpec(a)
	return nil
}

// ExpressionPedals holds the two physical jacks. Both slots are present
// whenever the section exists at all.
type ExpressionPedals struct {
	Exp1 ExpressionSpec `json:"exp1"`
	Exp2 ExpressionSpec `json:"exp2"`
}

// DeviceConfig is the complete contents of a controller's config.json.
type DeviceConfig struct {
	Device     DeviceKind        `json:"device"`
	Buttons    []ButtonSpec      `json:"buttons"`
	Encoder    *EncoderSpec      `json:"encoder,omitempty"`
	Expression *ExpressionPedals `json:"expression,omitempty"`
}

// UnmarshalJSON defaults the device kind to std10 when absent, matching
// the firmware's behavior for configs written before mini6 existed.
func (c *DeviceConfig) UnmarshalJSON(data []byte) error {
	type alias DeviceConfig
	a := alias{Device: DeviceStd10}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = DeviceConfig(a)
	return nil
}

// Validate checks the configuration against the device class constraints.
// Every violated rule contributes one error; nothing short-circuits, so the
// editor can present a complete correction list in one round trip.
func (c *DeviceConfig) Validate() error {
	v := validation.NewCollector()

	expected := c.Device.ButtonCount()
	if len(c.Buttons) != expected {
		v.Check(fmt.Errorf("expected %d buttons for %s, found %d", expected, c.Device, len(c.Buttons)))
	}

	for i, b := range c.Buttons {
		ctx := fmt.Sprintf("button %d", i+1)
		v.CheckMsg(validation.ValidateControlChange(b.CC), ctx)
		v.CheckMsg(validation.ValidateLabel(b.Label), ctx)
		if !b.Color.Known() {
			v.Check(fmt.Errorf("%s: color %q is not in the LED palette", ctx, b.Color))
		}
	}

	if enc := c.Encoder; enc != nil {
		if c.Device == DeviceMini6 {
			v.Check(fmt.Errorf("%s does not support an encoder", c.Device))
		}
		v.CheckMsg(enc.Validate(), "encoder")
	}

	if exp := c.Expression; exp != nil {
		if c.Device == DeviceMini6 {
			v.Check(fmt.Errorf("%s does not support expression pedals", c.Device))
		}
		v.CheckMsg(exp.Exp1.Validate(), "exp1")
		v.CheckMsg(exp.Exp2.Validate(), "exp2")
	}

	return v.Error()
}

// Validate checks the encoder's CC, label, value range, and initial value.
func (e *EncoderSpec) Validate() error {
	v := validation.NewCollector()

	v.Check(validation.ValidateControlChange(e.CC))
	v.Check(validation.ValidateLabel(e.Label))
	v.Check(validation.ValidateValueRange(e.Min, e.Max))
	v.Check(validation.ValidateInitialValue(e.Initial, e.Min, e.Max))

	if p := e.Push; p != nil {
		pv := validation.NewCollector().WithContext("push")
		pv.Check(validation.ValidateControlChange(p.CC))
		pv.Check(validation.ValidateLabel(p.Label))
		v.Check(pv.Error())
	}

	return v.Error()
}

// Validate checks one expression slot's CC, label, and value range.
func (e *ExpressionSpec) Validate() error {
	v := validation.NewCollector()

	v.Check(validation.ValidateControlChange(e.CC))
	v.Check(validation.ValidateLabel(e.Label))
	v.Check(validation.ValidateValueRange(e.Min, e.Max))

	return v.Error()
}

// parseEnum unmarshals a JSON string and checks it against the allowed values.
func parseEnum(data []byte, field string, allowed ...string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("invalid %s: %w", field, err)
	}
	for _, v := range allowed {
		if s == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid %s: %q", field, s)
}
