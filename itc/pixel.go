// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"image"
)

// SetTopLeftLimit moves the cursor, which is also the top-left corner of
// the draw limits.
func (d *Dev) SetTopLeftLimit(x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limits.StartX, d.limits.StartY = x, y
}

// SetBottomRightLimit sets the inclusive bottom-right corner of the draw
// limits.
func (d *Dev) SetBottomRightLimit(x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limits.EndX, d.limits.EndY = x, y
}

// SetLimits sets both corners. The rectangle is not validated.
func (d *Dev) SetLimits(l Limits) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limits = l
}

// Limits returns the current draw limits.
func (d *Dev) Limits() Limits {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.limits
}

// SetClipping sets the inclusive clip rectangle used by GetPixel,
// DrawPixel, DrawLinePixel and DrawImage.
func (d *Dev) SetClipping(x1, y1, x2, y2 int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clip = Limits{x1, y1, x2, y2}
}

// Clipping returns the clip rectangle.
func (d *Dev) Clipping() Limits {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clip
}

func (d *Dev) clipped(x, y int) bool {
	return d.opts.Clipping && !d.clip.contains(x, y)
}

// GetPixel returns the color at (x, y), either Black or White, or Invalid
// when the point is outside the clip rectangle.
//
// The draw limits are left as a 1x1 rectangle at (x, y).
func (d *Dev) GetPixel(x, y int) Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clipped(x, y) {
		return Invalid
	}
	d.limits = Limits{x, y, x, y}
	var out [1]Color
	d.readPixels(out[:])
	return out[0]
}

// DrawPixel writes c at (x, y). Points outside the clip rectangle are
// dropped.
func (d *Dev) DrawPixel(x, y int, c Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clipped(x, y) {
		return
	}
	d.limits = Limits{x, y, x, y}
	d.writePixels([]Color{c})
}

// DrawLinePixel is DrawPixel for line drawing: only the cursor moves, the
// bottom-right limit is kept.
func (d *Dev) DrawLinePixel(x, y int, c Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clipped(x, y) {
		return
	}
	d.limits.StartX, d.limits.StartY = x, y
	d.writePixels([]Color{c})
}

// WritePixels stores px starting at the cursor, row-major within the draw
// limits. After EndX the column wraps to StartX on the next row.
//
// It panics if px is empty.
func (d *Dev) WritePixels(px []Color) {
	if len(px) == 0 {
		panic("itc: WritePixels with no pixels")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writePixels(px)
}

// DuplicatePixel writes c count times, following the same traversal as
// WritePixels.
//
// It panics if count is not positive.
func (d *Dev) DuplicatePixel(c Color, count int) {
	if count <= 0 {
		panic("itc: DuplicatePixel with non-positive count")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	on := d.buf.Quantize(c)
	r := newRaster(d.limits)
	for i := 0; i < count; i++ {
		d.buf.SetBit(r.x, r.y, on)
		r.next()
	}
}

// ReadPixels fills out starting at the cursor, following the same
// traversal as WritePixels.
//
// It panics if out is empty.
func (d *Dev) ReadPixels(out []Color) {
	if len(out) == 0 {
		panic("itc: ReadPixels with no pixels")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readPixels(out)
}

func (d *Dev) writePixels(px []Color) {
	r := newRaster(d.limits)
	for _, c := range px {
		d.buf.SetColor(r.x, r.y, c)
		r.next()
	}
}

func (d *Dev) readPixels(out []Color) {
	r := newRaster(d.limits)
	for i := range out {
		out[i] = d.buf.ColorAt(r.x, r.y)
		r.next()
	}
}

// FillRect paints the w x h rectangle at (x, y) with c, clipped to the clip
// rectangle. The draw limits end up covering the painted area.
func (d *Dev) FillRect(x, y, w, h int, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l := Limits{x, y, x + w - 1, y + h - 1}
	if d.opts.Clipping {
		l = intersect(l, d.clip)
		if l.EndX < l.StartX || l.EndY < l.StartY {
			return
		}
	}
	d.limits = l
	on := d.buf.Quantize(c)
	r := newRaster(l)
	for i := l.Width() * l.Height(); i > 0; i-- {
		d.buf.SetBit(r.x, r.y, on)
		r.next()
	}
}

// Clear sets the whole framebuffer to c, ignoring clipping.
func (d *Dev) Clear(c Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Fill(c)
}

// DrawImage composites img with its top-left corner at pt. Pixels outside
// the clip rectangle and Transparent pixels are skipped.
func (d *Dev) DrawImage(pt image.Point, img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx, dy := pt.X+x-b.Min.X, pt.Y+y-b.Min.Y
			if d.clipped(dx, dy) {
				continue
			}
			c := toColor(img.At(x, y)).(Color)
			if c == Transparent {
				continue
			}
			d.buf.SetColor(dx, dy, c)
		}
	}
}

func intersect(a, b Limits) Limits {
	return Limits{
		StartX: max(a.StartX, b.StartX),
		StartY: max(a.StartY, b.StartY),
		EndX:   min(a.EndX, b.EndX),
		EndY:   min(a.EndY, b.EndY),
	}
}
