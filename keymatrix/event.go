// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keymatrix

import "fmt"

// Direction is the first byte of an event on the wire.
type Direction byte

const (
	// Down is a key press.
	Down Direction = 0
	// Up is a key release.
	Up Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	}
	return fmt.Sprintf("Direction(%d)", byte(d))
}

// Event is a single key transition.
type Event struct {
	Direction Direction
	Key       byte
}

func (e Event) String() string {
	return fmt.Sprintf("%s 0x%02x", e.Direction, e.Key)
}
