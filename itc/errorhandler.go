// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// busyPoll is how often the busy line is sampled while waiting.
const busyPoll = time.Millisecond

// errorHandler is a wrapper for error management.
type errorHandler struct {
	d   *Dev
	err error

	sleep func(time.Duration)
}

func (eh *errorHandler) pin(l line) gpio.PinOut {
	switch l {
	case lineDC:
		return eh.d.pins.DC
	case lineCS:
		return eh.d.pins.CS
	case lineReset:
		return eh.d.pins.Reset
	case linePanelOn:
		return eh.d.pins.PanelOn
	case lineDischarge:
		return eh.d.pins.Discharge
	}
	return nil
}

func (eh *errorHandler) out(l line, v gpio.Level) {
	if eh.err != nil {
		return
	}
	p := eh.pin(l)
	if p == nil {
		return
	}
	eh.err = p.Out(v)
}

func (eh *errorHandler) delay(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.sleep(d)
}

func (eh *errorHandler) cTx(w []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, nil)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	if eh.err != nil {
		return
	}
	eh.delay(time.Microsecond)
	eh.out(lineDC, gpio.Low)
	eh.delay(time.Microsecond)
	eh.out(lineCS, gpio.Low)
	eh.cTx([]byte{cmd})
	eh.out(lineCS, gpio.High)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.delay(time.Microsecond)
	eh.out(lineDC, gpio.High)
	eh.delay(time.Microsecond)
	eh.out(lineCS, gpio.Low)
	for len(data) > 0 {
		n := len(data)
		if n > eh.d.maxTxSize {
			n = eh.d.maxTxSize
		}
		eh.cTx(data[:n])
		data = data[n:]
	}
	eh.out(lineCS, gpio.High)
}

// waitUntilIdle blocks while the busy line is low. A zero BusyTimeout
// waits forever.
func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}
	timeout := eh.d.opts.BusyTimeout
	var waited time.Duration
	for eh.d.pins.Busy.Read() == gpio.Low {
		if timeout > 0 && waited >= timeout {
			eh.err = ErrBusyTimeout
			return
		}
		eh.sleep(busyPoll)
		waited += busyPoll
	}
}

// forceOff drives the power-down lines even after a failure. Write errors
// are ignored so every line gets a chance; eh.err is left as is.
func (eh *errorHandler) forceOff() {
	for _, s := range []struct {
		l line
		v gpio.Level
	}{
		{linePanelOn, gpio.Low},
		{lineReset, gpio.Low},
		{lineDC, gpio.Low},
		{lineDischarge, gpio.High},
		{lineCS, gpio.Low},
	} {
		if p := eh.pin(s.l); p != nil {
			_ = p.Out(s.v)
		}
	}
}
