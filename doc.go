// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keyboard is the firmware core of a programmable keypad: a 4x3 key
// matrix whose keys are labelled on a 4.2" e-paper panel.
//
// The packages below are layered bottom-up:
//
//	itc        e-paper panel driver and 1 bit framebuffer
//	keymatrix  key matrix scanner and event queue
//	icon       per-key picture slots
//	preview    terminal mirror of the panel
//	ui         orchestration: scanning, event delivery, screen refresh
//
// cmd/keypad wires them to real or emulated hardware.
package keyboard
