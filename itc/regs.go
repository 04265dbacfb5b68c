// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

// Commands
const (
	panelSettings         byte = 0x00
	dcToggle              byte = 0x02
	powerOn               byte = 0x04
	ssSettings            byte = 0x06
	blackFrame            byte = 0x10
	refreshDisplay        byte = 0x12
	redFrame              byte = 0x13
	vcomDataInterval      byte = 0x50
	resolutionSettings    byte = 0x61
	activeTemperature     byte = 0xE0
	powerSaving           byte = 0xE3
	inputTemperature      byte = 0xE5
	activeTemperatureOnce byte = 0x02
)

// Register is a single register write: a command byte followed by its
// parameters.
type Register struct {
	Cmd  byte
	Data []byte
}

// registers returns the panel configuration written before each frame.
func registers(opts *Opts) []Register {
	w, h := opts.Width, opts.Height
	return []Register{
		{Cmd: inputTemperature, Data: []byte{opts.Temperature}},
		{Cmd: activeTemperature, Data: []byte{activeTemperatureOnce}},
		{Cmd: panelSettings, Data: []byte{0x0F}},
		{Cmd: ssSettings, Data: []byte{0x17, 0x17, 0x27}},
		{Cmd: resolutionSettings, Data: []byte{byte(w >> 8), byte(w), byte(h >> 8), byte(h)}},
		{Cmd: vcomDataInterval, Data: []byte{0x87}},
		{Cmd: powerSaving, Data: []byte{0x88}},
	}
}
