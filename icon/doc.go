// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package icon manages the square picture drawn above each key.
//
// An Icon is a fixed slot on the panel. Images smaller than the slot are
// centered in it and larger ones are scaled down to fit. Icons can be
// loaded from BMP, PNG, GIF or JPEG files or rendered from a text label.
package icon
