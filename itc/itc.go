// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// ErrBusyTimeout is returned by Refresh when the controller keeps the busy
// line asserted for longer than Opts.BusyTimeout.
var ErrBusyTimeout = errors.New("itc: busy timeout")

// Pins lists the control lines of the panel besides the SPI clock and data.
type Pins struct {
	DC        gpio.PinOut
	CS        gpio.PinOut
	Reset     gpio.PinOut
	PanelOn   gpio.PinOut
	Discharge gpio.PinOut
	// Busy is high when the controller is idle.
	Busy gpio.PinIn
}

// Opts defines the panel configuration.
type Opts struct {
	Width  int
	Height int
	// Threshold is the highest intensity drawn as black.
	Threshold Color
	// Clipping enables the global clip rectangle for single pixel access.
	Clipping bool
	// Temperature is written to the input temperature register, in °C.
	Temperature byte
	// BusyTimeout bounds each wait on the busy line. Zero waits forever.
	BusyTimeout time.Duration
}

// Default is the 4.2" 400x300 panel fitted on the keypad.
var Default = Opts{
	Width:       400,
	Height:      300,
	Threshold:   DefaultThreshold,
	Clipping:    true,
	Temperature: 25,
	BusyTimeout: 30 * time.Second,
}

// Dev is a handle to the panel.
//
// Drawing only touches the framebuffer; nothing reaches the panel until
// Refresh.
type Dev struct {
	c         conn.Conn
	maxTxSize int
	pins      Pins
	opts      Opts
	sleep     func(time.Duration)

	mu          sync.Mutex
	buf         *FrameBuffer
	limits      Limits
	clip        Limits
	orientation Orientation
	width       int
	height      int
}

// New opens a handle to the panel and clears the framebuffer to white.
//
// Nil output pins are skipped. Busy is required.
func New(p spi.Port, pins *Pins, opts *Opts) (*Dev, error) {
	if pins == nil || pins.Busy == nil {
		return nil, errors.New("itc: busy pin is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("itc: invalid size %dx%d", opts.Width, opts.Height)
	}
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("itc: failed to connect over spi: %w", err)
	}
	if err := pins.Busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("itc: failed to configure busy pin: %w", err)
	}

	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}

	d := &Dev{
		c:         c,
		maxTxSize: maxTxSize,
		pins:      *pins,
		opts:      *opts,
		sleep:     time.Sleep,
		buf:       NewFrameBuffer(opts.Width, opts.Height, opts.Threshold),
		width:     opts.Width,
		height:    opts.Height,
	}
	d.clip = Limits{0, 0, d.width - 1, d.height - 1}
	d.limits = d.clip
	d.buf.Fill(White)
	return d, nil
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("itc{%s, %dx%d}", d.c, d.opts.Width, d.opts.Height)
}

// Halt implements conn.Resource.
//
// The panel is powered down at the end of every Refresh so there is nothing
// to stop.
func (d *Dev) Halt() error {
	return nil
}

// Width returns the logical width.
func (d *Dev) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// Height returns the logical height.
func (d *Dev) Height() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.height
}

// Threshold returns the quantization threshold.
func (d *Dev) Threshold() Color {
	return d.opts.Threshold
}

// FrameBuffer returns the backing framebuffer. It must not be used
// concurrently with the Dev methods.
func (d *Dev) FrameBuffer() *FrameBuffer {
	return d.buf
}

// SetOrientation records the orientation and resets clipping to the
// logical screen.
//
// Pixels are not remapped; only the logical size changes.
func (d *Dev) SetOrientation(o Orientation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orientation = o
	d.width, d.height = d.opts.Width, d.opts.Height
	if o&SwitchXY != 0 {
		d.width, d.height = d.height, d.width
	}
	d.clip = Limits{0, 0, d.width - 1, d.height - 1}
}

// Orientation returns the flags last set with SetOrientation.
func (d *Dev) Orientation() Orientation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orientation
}

// Refresh resets the panel, programs it and transfers the whole
// framebuffer. The draw limits are ignored.
//
// It blocks until the panel finished updating, which takes seconds. On
// failure the panel is still powered down before the error is returned.
func (d *Dev) Refresh() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	eh := errorHandler{d: d, sleep: d.sleep}
	refresh(&eh, &d.opts, d.buf.Pix)
	if eh.err != nil {
		eh.forceOff()
	}
	return eh.err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return ColorModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return image.Rect(0, 0, d.width, d.height)
}

// Draw implements display.Drawer.
//
// The image is composited into the framebuffer, then the panel is
// refreshed. Fully transparent source pixels are left untouched.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	r := dstRect.Intersect(image.Rect(0, 0, d.width, d.height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := toColor(src.At(sp.X+x-dstRect.Min.X, sp.Y+y-dstRect.Min.Y)).(Color)
			if c != Transparent {
				d.buf.SetColor(x, y, c)
			}
		}
	}
	d.mu.Unlock()
	return d.Refresh()
}

// At implements image.Image. It reads the framebuffer without touching the
// draw limits.
func (d *Dev) At(x, y int) color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.ColorAt(x, y)
}

// Set implements draw.Image. Fully transparent colors are skipped.
func (d *Dev) Set(x, y int, c color.Color) {
	if v := toColor(c).(Color); v != Transparent {
		d.DrawPixel(x, y, v)
	}
}

// Size implements drivers.Displayer.
func (d *Dev) Size() (int16, int16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int16(d.width), int16(d.height)
}

// SetPixel implements drivers.Displayer.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	if c.A == 0 {
		return
	}
	d.DrawPixel(int(x), int(y), RGB(c.R, c.G, c.B))
}

// Display implements drivers.Displayer.
func (d *Dev) Display() error {
	return d.Refresh()
}

var _ display.Drawer = &Dev{}
var _ draw.Image = &Dev{}
var _ drivers.Displayer = &Dev{}
