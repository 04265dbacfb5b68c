// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// line names one of the panel control outputs.
type line uint8

const (
	lineDC line = iota
	lineCS
	lineReset
	linePanelOn
	lineDischarge
)

func (l line) String() string {
	switch l {
	case lineDC:
		return "dc"
	case lineCS:
		return "cs"
	case lineReset:
		return "reset"
	case linePanelOn:
		return "panelOn"
	case lineDischarge:
		return "discharge"
	}
	return "unknown"
}

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	waitUntilIdle()
	out(line, gpio.Level)
	delay(time.Duration)
}

// resetPanel power cycles the controller. The panel keeps no state across
// frames, so it runs before every refresh.
func resetPanel(ctrl controller) {
	ctrl.out(lineDischarge, gpio.High)
	ctrl.delay(5 * time.Millisecond)

	ctrl.out(lineDischarge, gpio.Low)
	ctrl.out(linePanelOn, gpio.Low)
	ctrl.out(lineReset, gpio.Low)
	ctrl.out(lineDC, gpio.Low)
	ctrl.delay(10 * time.Millisecond)

	ctrl.out(linePanelOn, gpio.High)
	ctrl.delay(5 * time.Millisecond)

	ctrl.out(lineReset, gpio.High)
	ctrl.delay(time.Millisecond)

	ctrl.out(lineCS, gpio.High)
}

func configure(ctrl controller, opts *Opts) {
	for _, r := range registers(opts) {
		ctrl.sendCommand(r.Cmd)
		ctrl.sendData(r.Data)
	}
}

// writeFrame sends the black plane followed by an all white red plane.
func writeFrame(ctrl controller, pix []byte) {
	ctrl.sendCommand(blackFrame)
	ctrl.sendData(pix)

	ctrl.sendCommand(redFrame)
	ctrl.sendData(make([]byte, len(pix)))
}

func powerOff(ctrl controller) {
	ctrl.sendCommand(dcToggle)
	ctrl.waitUntilIdle()

	ctrl.out(linePanelOn, gpio.Low)
	ctrl.out(lineReset, gpio.Low)
	ctrl.out(lineDC, gpio.Low)
	ctrl.out(lineDischarge, gpio.High)
	ctrl.out(lineCS, gpio.Low)
}

// refresh runs the whole update sequence for one frame.
func refresh(ctrl controller, opts *Opts, pix []byte) {
	resetPanel(ctrl)
	configure(ctrl, opts)
	ctrl.waitUntilIdle()

	writeFrame(ctrl, pix)

	ctrl.waitUntilIdle()
	ctrl.sendCommand(powerOn)
	ctrl.waitUntilIdle()

	ctrl.sendCommand(refreshDisplay)
	ctrl.waitUntilIdle()

	powerOff(ctrl)
}
