// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"image"
	"image/color"
)

// FrameBuffer is a 1 bit per pixel raster in the panel's native layout.
//
// Pixel (x, y) is bit 7-(x%8) of Pix[Stride*y+x/8]. A set bit is black.
type FrameBuffer struct {
	Width     int
	Height    int
	Stride    int
	Threshold Color
	Pix       []byte
}

// NewFrameBuffer returns a zeroed (all white) framebuffer.
func NewFrameBuffer(width, height int, threshold Color) *FrameBuffer {
	stride := (width + 7) / 8
	return &FrameBuffer{
		Width:     width,
		Height:    height,
		Stride:    stride,
		Threshold: threshold,
		Pix:       make([]byte, stride*height),
	}
}

func (f *FrameBuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// Bit reports whether the pixel at (x, y) is black. Pixels outside the
// buffer read as white.
func (f *FrameBuffer) Bit(x, y int) bool {
	if !f.inside(x, y) {
		return false
	}
	return f.Pix[f.Stride*y+x/8]&(0x80>>uint(x%8)) != 0
}

// SetBit sets the pixel at (x, y) to black when on is true. Pixels outside
// the buffer are ignored.
func (f *FrameBuffer) SetBit(x, y int, on bool) {
	if !f.inside(x, y) {
		return
	}
	mask := byte(0x80 >> uint(x%8))
	if on {
		f.Pix[f.Stride*y+x/8] |= mask
	} else {
		f.Pix[f.Stride*y+x/8] &^= mask
	}
}

// Quantize returns true when c is drawn as black.
func (f *FrameBuffer) Quantize(c Color) bool {
	return c <= f.Threshold
}

// SetColor thresholds c and stores the resulting bit.
func (f *FrameBuffer) SetColor(x, y int, c Color) {
	f.SetBit(x, y, f.Quantize(c))
}

// ColorAt expands the stored bit back to Black or White.
func (f *FrameBuffer) ColorAt(x, y int) Color {
	if f.Bit(x, y) {
		return Black
	}
	return White
}

// Fill sets every pixel to c.
func (f *FrameBuffer) Fill(c Color) {
	var v byte
	if f.Quantize(c) {
		v = 0xff
	}
	for i := range f.Pix {
		f.Pix[i] = v
	}
}

// ColorModel implements image.Image.
func (f *FrameBuffer) ColorModel() color.Model {
	return ColorModel
}

// Bounds implements image.Image.
func (f *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image.
func (f *FrameBuffer) At(x, y int) color.Color {
	return f.ColorAt(x, y)
}

var _ image.Image = &FrameBuffer{}
