// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

type testPins struct {
	dc, cs, rst, on, dis, busy gpiotest.Pin
}

func newTestDev(t *testing.T, opts Opts) (*Dev, *spitest.Record, *testPins) {
	t.Helper()
	tp := &testPins{}
	tp.dc.N, tp.cs.N, tp.rst.N = "dc", "cs", "reset"
	tp.on.N, tp.dis.N = "panelOn", "discharge"
	tp.busy.N, tp.busy.L = "busy", gpio.High
	port := &spitest.Record{}
	d, err := New(port, &Pins{
		DC:        &tp.dc,
		CS:        &tp.cs,
		Reset:     &tp.rst,
		PanelOn:   &tp.on,
		Discharge: &tp.dis,
		Busy:      &tp.busy,
	}, &opts)
	if err != nil {
		t.Fatal(err)
	}
	d.sleep = func(time.Duration) {}
	return d, port, tp
}

func written(r *spitest.Record) []byte {
	var out []byte
	for _, op := range r.Ops {
		out = append(out, op.W...)
	}
	return out
}

func TestNew(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	if got, want := d.Bounds(), image.Rect(0, 0, 400, 300); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if got, want := d.Clipping(), (Limits{0, 0, 399, 299}); got != want {
		t.Errorf("Clipping() = %+v, want %+v", got, want)
	}
	if d.maxTxSize != 4096 {
		t.Errorf("maxTxSize = %d, want 4096", d.maxTxSize)
	}
	if len(d.FrameBuffer().Pix) != 50*300 {
		t.Errorf("len(Pix) = %d, want %d", len(d.FrameBuffer().Pix), 50*300)
	}
	if !bytes.Equal(d.FrameBuffer().Pix, make([]byte, 50*300)) {
		t.Error("framebuffer not cleared to white")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(&spitest.Record{}, &Pins{}, &Default); err == nil {
		t.Error("New() without busy pin succeeded")
	}
	busy := &gpiotest.Pin{N: "busy"}
	if _, err := New(&spitest.Record{}, &Pins{Busy: busy}, &Opts{}); err == nil {
		t.Error("New() with empty size succeeded")
	}
}

func TestRefresh(t *testing.T) {
	d, port, tp := newTestDev(t, Default)
	d.DrawPixel(0, 0, Black)
	d.DrawPixel(399, 299, Black)

	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}

	var want []byte
	want = append(want,
		0xe5, 0x19,
		0xe0, 0x02,
		0x00, 0x0f,
		0x06, 0x17, 0x17, 0x27,
		0x61, 0x01, 0x90, 0x01, 0x2c,
		0x50, 0x87,
		0xe3, 0x88,
		0x10)
	frame := make([]byte, 50*300)
	frame[0] = 0x80
	frame[len(frame)-1] = 0x01
	want = append(want, frame...)
	want = append(want, 0x13)
	want = append(want, make([]byte, len(frame))...)
	want = append(want, 0x04, 0x12, 0x02)

	got := written(port)
	if len(got) != 30024 {
		t.Errorf("sent %d bytes, want 30024", len(got))
	}
	if !bytes.Equal(got, want) {
		t.Error("frame transfer mismatch")
	}
	for _, op := range port.Ops {
		if len(op.W) > 4096 {
			t.Errorf("transfer of %d bytes exceeds the chunk size", len(op.W))
		}
	}

	for _, p := range []struct {
		pin  *gpiotest.Pin
		want gpio.Level
	}{
		{&tp.on, gpio.Low},
		{&tp.rst, gpio.Low},
		{&tp.dc, gpio.Low},
		{&tp.dis, gpio.High},
		{&tp.cs, gpio.Low},
	} {
		if got := p.pin.Read(); got != p.want {
			t.Errorf("%s = %s after refresh, want %s", p.pin, got, p.want)
		}
	}
}

func TestRefreshBusyTimeout(t *testing.T) {
	opts := Default
	opts.BusyTimeout = 5 * time.Millisecond
	d, port, tp := newTestDev(t, opts)
	tp.busy.Out(gpio.Low)

	if err := d.Refresh(); !errors.Is(err, ErrBusyTimeout) {
		t.Fatalf("Refresh() = %v, want %v", err, ErrBusyTimeout)
	}
	// Nothing past the register block goes out once busy timed out.
	if got := written(port); len(got) != 19 {
		t.Errorf("sent %d bytes, want 19", len(got))
	}
	// The panel is powered down anyway.
	for _, p := range []struct {
		pin  *gpiotest.Pin
		want gpio.Level
	}{
		{&tp.on, gpio.Low},
		{&tp.rst, gpio.Low},
		{&tp.dc, gpio.Low},
		{&tp.dis, gpio.High},
		{&tp.cs, gpio.Low},
	} {
		if got := p.pin.Read(); got != p.want {
			t.Errorf("%s = %s after timeout, want %s", p.pin, got, p.want)
		}
	}
}

// tracePin logs every level change into a shared trace.
type tracePin struct {
	gpiotest.Pin
	trace *[]string
}

func (p *tracePin) Out(l gpio.Level) error {
	*p.trace = append(*p.trace, p.N+" "+l.String())
	return p.Pin.Out(l)
}

func TestSendSettles(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	var trace []string
	d.pins.DC = &tracePin{Pin: gpiotest.Pin{N: "dc"}, trace: &trace}
	d.pins.CS = &tracePin{Pin: gpiotest.Pin{N: "cs"}, trace: &trace}
	eh := errorHandler{d: d, sleep: func(time.Duration) { trace = append(trace, "sleep") }}

	eh.sendCommand(powerOn)
	eh.sendData([]byte{1})
	if eh.err != nil {
		t.Fatal(eh.err)
	}
	want := []string{
		"sleep", "dc Low", "sleep", "cs Low", "cs High",
		"sleep", "dc High", "sleep", "cs Low", "cs High",
	}
	if diff := cmp.Diff(trace, want); diff != "" {
		t.Errorf("line trace difference (-got +want):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		in   Color
		want Color
	}{
		{Black, Black},
		{Invalid, Black},
		{DefaultThreshold, Black},
		{DefaultThreshold + 1, White},
		{Transparent, White},
		{White, White},
	} {
		d, _, _ := newTestDev(t, Default)
		d.DrawPixel(17, 42, tc.in)
		if got := d.GetPixel(17, 42); got != tc.want {
			t.Errorf("GetPixel(DrawPixel(%d)) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClipping(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetClipping(10, 10, 20, 20)
	before := append([]byte(nil), d.FrameBuffer().Pix...)

	d.DrawPixel(9, 10, Black)
	d.DrawPixel(21, 15, Black)
	d.DrawLinePixel(15, 21, Black)
	if !bytes.Equal(before, d.FrameBuffer().Pix) {
		t.Error("out of clip write modified the framebuffer")
	}
	if got := d.GetPixel(9, 10); got != Invalid {
		t.Errorf("GetPixel(9, 10) = %d, want Invalid", got)
	}
	d.DrawPixel(20, 20, Black)
	if got := d.GetPixel(20, 20); got != Black {
		t.Errorf("GetPixel(20, 20) = %d, want Black", got)
	}

	opts := Default
	opts.Clipping = false
	d, _, _ = newTestDev(t, opts)
	d.SetClipping(10, 10, 20, 20)
	d.DrawPixel(5, 5, Black)
	if got := d.GetPixel(5, 5); got != Black {
		t.Errorf("unclipped GetPixel(5, 5) = %d, want Black", got)
	}
	// Outside the storage reads back white.
	if got := d.GetPixel(500, 5); got != White {
		t.Errorf("GetPixel(500, 5) = %d, want White", got)
	}
}

func TestWritePixelsWrap(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetLimits(Limits{StartX: 2, StartY: 1, EndX: 4, EndY: 1})
	d.WritePixels([]Color{Black, White, Black, Black, Black, White, Black})

	want := map[image.Point]Color{
		{2, 1}: Black, {3, 1}: White, {4, 1}: Black,
		{2, 2}: Black, {3, 2}: Black, {4, 2}: White,
		{2, 3}: Black, {3, 3}: White,
		{5, 1}: White, {1, 2}: White,
	}
	for p, c := range want {
		if got := d.FrameBuffer().ColorAt(p.X, p.Y); got != c {
			t.Errorf("pixel %v = %d, want %d", p, got, c)
		}
	}

	got := make([]Color, 7)
	d.ReadPixels(got)
	if diff := cmp.Diff(got, []Color{Black, White, Black, Black, Black, White, Black}); diff != "" {
		t.Errorf("ReadPixels() difference (-got +want):\n%s", diff)
	}
	if l := d.Limits(); l != (Limits{2, 1, 4, 1}) {
		t.Errorf("Limits() = %+v changed by bulk access", l)
	}
}

func TestDuplicatePixel(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetTopLeftLimit(0, 0)
	d.SetBottomRightLimit(7, 1)
	d.DuplicatePixel(Black, 12)
	pix := d.FrameBuffer().Pix
	if pix[0] != 0xff || pix[50] != 0xf0 || pix[100] != 0 {
		t.Errorf("rows = %#x %#x %#x, want 0xff 0xf0 0", pix[0], pix[50], pix[100])
	}
}

func TestExactFillNoOverrun(t *testing.T) {
	l := Limits{StartX: 3, StartY: 2, EndX: 12, EndY: 4}
	n := l.Width() * l.Height()
	for _, tc := range []struct {
		name string
		fill func(d *Dev)
	}{
		{"WritePixels", func(d *Dev) {
			px := make([]Color, n)
			for i := range px {
				px[i] = Black
			}
			d.WritePixels(px)
		}},
		{"DuplicatePixel", func(d *Dev) { d.DuplicatePixel(Black, n) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, _, _ := newTestDev(t, Default)
			d.SetLimits(l)
			tc.fill(d)
			fb := d.FrameBuffer()
			for y := 0; y < Default.Height; y++ {
				for x := 0; x < Default.Width; x++ {
					want := White
					if x >= l.StartX && x <= l.EndX && y >= l.StartY && y <= l.EndY {
						want = Black
					}
					if got := fb.ColorAt(x, y); got != want {
						t.Errorf("pixel (%d, %d) = %d, want %d", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestDrawLinePixelKeepsBottomRight(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetLimits(Limits{0, 0, 30, 40})
	d.DrawLinePixel(3, 4, Black)
	if got, want := d.Limits(), (Limits{3, 4, 30, 40}); got != want {
		t.Errorf("Limits() = %+v, want %+v", got, want)
	}
	d.DrawPixel(5, 6, Black)
	if got, want := d.Limits(), (Limits{5, 6, 5, 6}); got != want {
		t.Errorf("Limits() = %+v, want %+v", got, want)
	}
}

func TestEmptyBulkPanics(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	for name, f := range map[string]func(){
		"WritePixels":    func() { d.WritePixels(nil) },
		"ReadPixels":     func() { d.ReadPixels(nil) },
		"DuplicatePixel": func() { d.DuplicatePixel(Black, 0) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", name)
				}
			}()
			f()
		})
	}
}

func TestFillRectAndClear(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetClipping(0, 0, 9, 9)
	d.FillRect(8, 8, 4, 4, Black)
	fb := d.FrameBuffer()
	if !fb.Bit(9, 9) || !fb.Bit(8, 8) {
		t.Error("FillRect did not paint inside the clip")
	}
	if fb.Bit(10, 10) {
		t.Error("FillRect painted outside the clip")
	}

	d.Clear(Black)
	if fb.Bit(399, 299) == false {
		t.Error("Clear(Black) left a white pixel")
	}
	d.Clear(White)
	if !bytes.Equal(fb.Pix, make([]byte, len(fb.Pix))) {
		t.Error("Clear(White) left black pixels")
	}
}

func TestSetOrientation(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	d.SetClipping(1, 2, 3, 4)
	d.SetOrientation(SwitchXY | FlipX)
	if got, want := d.Bounds(), image.Rect(0, 0, 300, 400); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	if got, want := d.Clipping(), (Limits{0, 0, 299, 399}); got != want {
		t.Errorf("Clipping() = %+v, want %+v", got, want)
	}
	if x, y := d.Size(); x != 300 || y != 400 {
		t.Errorf("Size() = %d, %d", x, y)
	}
	d.SetOrientation(FlipY)
	if d.Width() != 400 || d.Height() != 300 {
		t.Errorf("size = %dx%d, want 400x300", d.Width(), d.Height())
	}
}

func TestOrientationFlag(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{in: "none", want: 0},
		{in: "flipx|switchxy", want: FlipX | SwitchXY},
		{in: "flipy,flipx", want: FlipX | FlipY},
		{in: "upside", wantErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			var o Orientation
			err := o.Set(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Set(%q) error = %v", tc.in, err)
			}
			if err == nil && o != tc.want {
				t.Errorf("Set(%q) = %s, want %s", tc.in, o, tc.want)
			}
		})
	}
}

func TestDrawImage(t *testing.T) {
	d, _, _ := newTestDev(t, Default)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{0, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 255, 255, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 0, 0})
	img.Set(1, 1, color.NRGBA{0, 0, 0, 255})

	d.FillRect(10, 10, 2, 2, Black)
	d.DrawImage(image.Pt(10, 10), img)

	fb := d.FrameBuffer()
	for _, tc := range []struct {
		x, y int
		want bool
	}{
		{10, 10, true},
		{11, 10, false},
		{10, 11, true}, // transparent, keeps the fill
		{11, 11, true},
	} {
		if got := fb.Bit(tc.x, tc.y); got != tc.want {
			t.Errorf("Bit(%d, %d) = %t, want %t", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestDisplayerAndImage(t *testing.T) {
	d, port, _ := newTestDev(t, Default)
	d.SetPixel(1, 1, color.RGBA{0, 0, 0, 255})
	d.SetPixel(2, 1, color.RGBA{0, 0, 0, 0})
	d.Set(3, 1, color.Gray{Y: 3})
	if d.At(1, 1) != Black || d.At(2, 1) != White || d.At(3, 1) != Black {
		t.Error("SetPixel/Set did not reach the framebuffer")
	}
	d.Set(1, 1, color.RGBA{})
	if d.At(1, 1) != Black {
		t.Error("transparent Set overwrote a pixel")
	}
	if err := d.Display(); err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) == 0 {
		t.Error("Display() sent nothing")
	}
}

func TestDrawer(t *testing.T) {
	d, port, _ := newTestDev(t, Default)
	src := image.NewGray(image.Rect(0, 0, 16, 1))
	if err := d.Draw(image.Rect(8, 0, 16, 1), src, image.Pt(8, 0)); err != nil {
		t.Fatal(err)
	}
	if got := d.FrameBuffer().Pix[1]; got != 0xff {
		t.Errorf("Pix[1] = %#x, want 0xff", got)
	}
	if got := d.FrameBuffer().Pix[0]; got != 0 {
		t.Errorf("Pix[0] = %#x, want 0", got)
	}
	if len(port.Ops) == 0 {
		t.Error("Draw() did not refresh")
	}
}

func TestRGB(t *testing.T) {
	for _, tc := range []struct {
		r, g, b uint8
		want    Color
	}{
		{0, 0, 0, Black},
		{255, 255, 255, White},
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
	} {
		if got := RGB(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("RGB(%d, %d, %d) = %d, want %d", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
	if got := ColorModel.Convert(color.NRGBA{}); got != Transparent {
		t.Errorf("Convert(transparent) = %v, want Transparent", got)
	}
}

func TestFillFullScreenRefresh(t *testing.T) {
	d, port, _ := newTestDev(t, Default)
	d.SetLimits(Limits{0, 0, 399, 299})
	d.DuplicatePixel(Black, 400*300)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	got := written(port)
	frame := got[20 : 20+400*300/8]
	if !bytes.Equal(frame, bytes.Repeat([]byte{0xff}, 400*300/8)) {
		t.Error("black frame is not all set")
	}
	if got[19] != blackFrame || got[20+len(frame)] != redFrame {
		t.Errorf("frame commands = %#x %#x", got[19], got[20+len(frame)])
	}
	red := got[21+len(frame) : 21+2*len(frame)]
	if !bytes.Equal(red, make([]byte, len(frame))) {
		t.Error("red frame is not all zero")
	}
}
