// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package itc drives the 4.2" iTC electrophoretic panel used on the keypad.
//
// The panel has no addressable RAM window: every refresh resets the
// controller, reprograms its registers and clocks out the whole frame. The
// driver therefore keeps a 1 bit per pixel framebuffer in memory and all
// drawing happens there. Drawing limits are local addressing state only and
// are never sent to the controller. Call Refresh once a batch of drawing is
// done; every refresh costs two full frame transfers plus the optical update
// of the panel.
//
// Pixels are stored row-major, most significant bit first. A set bit is
// black.
package itc
