// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package preview implements a display.Drawer that mirrors a panel on the
// terminal using ANSI color codes.
//
// Useful to work on the key layout without the keypad at hand.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	Width  int
	Height int
	// Scale is the number of panel pixels per terminal cell, horizontally.
	// A cell covers twice as many rows. Defaults to 4.
	Scale   int
	Palette *ansi256.Palette
	// W defaults to a colorable stdout.
	W io.Writer

	_ struct{}
}

// Dev is a terminal mirror of a monochrome panel.
type Dev struct {
	w       io.Writer
	width   int
	height  int
	scale   int
	palette ansi256.Palette

	pixels []byte // gray, row-major
	drawn  int    // rows printed by the previous refresh
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	s := opts.Scale
	if s <= 0 {
		s = 4
	}
	d := &Dev{
		w:       w,
		width:   opts.Width,
		height:  opts.Height,
		scale:   s,
		palette: *p,
		pixels:  make([]byte, opts.Width*opts.Height),
	}
	for i := range d.pixels {
		d.pixels[i] = 0xff
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("Preview{%dx%d}", d.width, d.height)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	c := r.Intersect(d.Bounds())
	for y := c.Min.Y; y < c.Max.Y; y++ {
		for x := c.Min.X; x < c.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y)).(color.Gray)
			d.pixels[y*d.width+x] = g.Y
		}
	}
	return d.refresh()
}

// cell returns the mean intensity of the pixels covered by terminal cell
// (cx, cy).
func (d *Dev) cell(cx, cy int) uint8 {
	x0, y0 := cx*d.scale, cy*2*d.scale
	x1, y1 := min(x0+d.scale, d.width), min(y0+2*d.scale, d.height)
	sum, n := 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += int(d.pixels[y*d.width+x])
			n++
		}
	}
	if n == 0 {
		return 0xff
	}
	return uint8(sum / n)
}

func (d *Dev) refresh() error {
	cols := (d.width + d.scale - 1) / d.scale
	rows := (d.height + 2*d.scale - 1) / (2 * d.scale)
	d.buf.Reset()
	if d.drawn != 0 {
		// Overwrite the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", d.drawn)
	}
	for cy := 0; cy < rows; cy++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for cx := 0; cx < cols; cx++ {
			v := d.cell(cx, cy)
			_, _ = io.WriteString(&d.buf, d.palette.Block(color.NRGBA{v, v, v, 255}))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = rows
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
