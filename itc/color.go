// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"image/color"
)

// Color is the native pixel intensity. Writes quantize it to one bit with
// the device threshold.
type Color uint8

// Reserved and common colors.
const (
	Black Color = 0
	White Color = 255

	// Invalid is returned by GetPixel for coordinates outside the clipping
	// region.
	Invalid Color = 5
	// Transparent marks pixels DrawImage leaves untouched. The framebuffer
	// itself does not interpret it.
	Transparent Color = 240

	// DefaultThreshold is the highest intensity still drawn as black.
	DefaultThreshold Color = 10
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	y := uint32(c)
	y |= y << 8
	return y, y, y, 0xffff
}

// RGB converts a 24 bit RGB value to the native color using ITU-R 601 luma
// weights.
func RGB(r, g, b uint8) Color {
	y := (299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000
	return Color(y)
}

func toColor(c color.Color) color.Color {
	if n, ok := c.(Color); ok {
		return n
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	return RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// ColorModel converts any color to Color. Fully transparent colors map to
// Transparent.
var ColorModel = color.ModelFunc(toColor)
