// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ui ties the key matrix, the event queue, the key icons and the
// e-paper panel together.
//
// Scanning and event delivery run on a frame counter. Icon and caption
// changes only mark the screen dirty; the slow panel refresh happens from
// the frame loop.
package ui
