// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"time"

	log "github.com/s00500/env_logger"
	"go.uber.org/atomic"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"github.com/dma14/ProgrammableKeyboard/icon"
	"github.com/dma14/ProgrammableKeyboard/itc"
	"github.com/dma14/ProgrammableKeyboard/keymatrix"
)

// Reporter delivers key transitions to the host, typically over USB HID.
// A non-nil error means the event was not accepted and must be retried.
type Reporter interface {
	KeyDown(code byte) error
	KeyUp(code byte) error
}

// Scanner fills the queue with key transitions. *keymatrix.Scanner
// implements it.
type Scanner interface {
	Scan(q *keymatrix.FIFO, keys keymatrix.Matrix) error
}

// Opts is the keypad configuration.
type Opts struct {
	Rows int
	Cols int
	// Codes are the initial key codes, by key index. See keymatrix.NewMatrix.
	Codes []byte
	// QueueSize is the event queue capacity in bytes.
	QueueSize int
	// ScanEvery is the number of frames between two scans.
	ScanEvery uint16
	// RefreshEvery is the number of frames between two checks for a
	// pending screen refresh.
	RefreshEvery uint16
	// Frame is the frame period of Run.
	Frame time.Duration
	Retry Retry
}

// DefaultOpts is the 4x3 keypad reporting digit keys.
var DefaultOpts = Opts{
	Rows: 4,
	Cols: 3,
	// HID keyboard usages for 1 to 9, 0, minus and equal.
	Codes:        []byte{0x1e, 0x1f, 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x2d, 0x2e},
	QueueSize:    512,
	ScanEvery:    100,
	RefreshEvery: 10,
	Frame:        time.Millisecond,
	Retry:        RetryPending,
}

// captionHeight is the band below each icon reserved for its caption.
const captionHeight = 22

var black = color.RGBA{A: 0xff}

// UI owns the keypad state.
type UI struct {
	dev     *itc.Dev
	scanner Scanner
	rep     Reporter
	opts    Opts

	keys     keymatrix.Matrix
	q        *keymatrix.FIFO
	icons    []icon.Icon
	captions []string
	pending  *keymatrix.Event
	mirror   display.Drawer

	needsRefresh atomic.Bool
	lastScan     atomic.Time
	sent         atomic.Uint64
}

// New returns a UI drawing on dev, reading keys from s and reporting to
// rep.
func New(dev *itc.Dev, s Scanner, rep Reporter, opts *Opts) (*UI, error) {
	n := opts.Rows * opts.Cols
	slots := icon.DefaultSlots()
	if n <= 0 || n > len(slots) {
		return nil, fmt.Errorf("ui: %dx%d keys, at most %d supported", opts.Rows, opts.Cols, len(slots))
	}
	if opts.ScanEvery == 0 || opts.RefreshEvery == 0 {
		return nil, errors.New("ui: ScanEvery and RefreshEvery must be positive")
	}
	return &UI{
		dev:      dev,
		scanner:  s,
		rep:      rep,
		opts:     *opts,
		keys:     keymatrix.NewMatrix(opts.Rows, opts.Cols, opts.Codes),
		q:        keymatrix.NewFIFO(opts.QueueSize),
		icons:    slots[:n],
		captions: make([]string, n),
	}, nil
}

// SetMirror makes RefreshScreen also draw the framebuffer on d, for
// example a terminal preview.
func (u *UI) SetMirror(d display.Drawer) {
	u.mirror = d
}

// Keys returns the key matrix.
func (u *UI) Keys() keymatrix.Matrix {
	return u.keys
}

// Queue returns the event queue.
func (u *UI) Queue() *keymatrix.FIFO {
	return u.q
}

// LastScan returns when the matrix was last scanned.
func (u *UI) LastScan() time.Time {
	return u.lastScan.Load()
}

// Sent returns the number of events the Reporter accepted.
func (u *UI) Sent() uint64 {
	return u.sent.Load()
}

// Init blanks the panel, then draws a numbered icon on every key.
func (u *UI) Init() error {
	u.dev.Clear(itc.White)
	if err := u.dev.Refresh(); err != nil {
		return fmt.Errorf("ui: failed to clear screen: %w", err)
	}
	for i := range u.icons {
		img, err := icon.Text(strconv.Itoa(i+1), u.icons[i].Size)
		if err != nil {
			return err
		}
		u.icons[i].Set(img)
		u.drawKey(i)
	}
	return u.RefreshScreen()
}

func (u *UI) check(i int) error {
	if i < 0 || i >= len(u.icons) {
		return fmt.Errorf("ui: no key %d", i)
	}
	return nil
}

func (u *UI) drawKey(i int) {
	ic := &u.icons[i]
	ic.Draw(u.dev)
	s := ic.Slot()
	u.dev.FillRect(s.Min.X-20, s.Max.Y+1, s.Dx()+40, captionHeight, itc.White)
	if c := u.captions[i]; c != "" {
		_, w := tinyfont.LineWidth(&freemono.Regular9pt7b, c)
		x := s.Min.X + (s.Dx()-int(w))/2
		tinyfont.WriteLine(u.dev, &freemono.Regular9pt7b, int16(x), int16(s.Max.Y+16), c, black)
	}
	u.needsRefresh.Store(true)
}

// SetKeyIcon replaces the icon of key i.
func (u *UI) SetKeyIcon(i int, img image.Image) error {
	if err := u.check(i); err != nil {
		return err
	}
	u.icons[i].Set(img)
	u.drawKey(i)
	return nil
}

// SetKeyLabel replaces the icon of key i with label rendered as text.
func (u *UI) SetKeyLabel(i int, label string) error {
	if err := u.check(i); err != nil {
		return err
	}
	img, err := icon.Text(label, u.icons[i].Size)
	if err != nil {
		return err
	}
	return u.SetKeyIcon(i, img)
}

// SetKeyCaption sets the text printed under key i. An empty caption
// removes it.
func (u *UI) SetKeyCaption(i int, caption string) error {
	if err := u.check(i); err != nil {
		return err
	}
	u.captions[i] = caption
	u.drawKey(i)
	return nil
}

// SetKeyScancode changes the code reported for key i.
func (u *UI) SetKeyScancode(i int, code byte) error {
	if err := u.check(i); err != nil {
		return err
	}
	r, c := i%u.opts.Rows, i/u.opts.Rows
	u.keys[r][c].Code = code
	return nil
}

// NeedsRefresh reports whether the framebuffer changed since the last
// RefreshScreen.
func (u *UI) NeedsRefresh() bool {
	return u.needsRefresh.Load()
}

// RefreshScreen pushes the framebuffer to the panel and the mirror.
func (u *UI) RefreshScreen() error {
	u.needsRefresh.Store(false)
	if err := u.dev.Refresh(); err != nil {
		u.needsRefresh.Store(true)
		return fmt.Errorf("ui: refresh failed: %w", err)
	}
	if u.mirror != nil {
		fb := u.dev.FrameBuffer()
		if err := u.mirror.Draw(u.mirror.Bounds(), fb, image.Point{}); err != nil {
			return fmt.Errorf("ui: mirror failed: %w", err)
		}
	}
	return nil
}

// Process runs one frame: every ScanEvery frames the matrix is scanned and
// at most one event is delivered.
func (u *UI) Process(frame uint16) error {
	if frame%u.opts.ScanEvery != 0 {
		return nil
	}
	err := u.scanner.Scan(u.q, u.keys)
	u.lastScan.Store(time.Now())
	switch {
	case errors.Is(err, keymatrix.ErrFull):
		log.Println("Key event queue full, transitions postponed")
	case err != nil:
		return err
	}
	u.deliver()
	return nil
}

func (u *UI) deliver() {
	var e keymatrix.Event
	if u.pending != nil {
		e = *u.pending
	} else {
		var err error
		if e, err = u.q.Pull(); err != nil {
			return
		}
	}
	err := u.send(e)
	if errors.Is(err, errMalformed) {
		// Unknown directions only come from a desynchronized queue.
		u.pending = nil
		log.Printf("Dropped malformed key event %s\n", e)
		return
	}
	if err != nil {
		log.Printf("Failed key event %s: %v\n", e, err)
		if u.opts.Retry == RetryRequeue {
			if err := u.q.Push(e); err != nil {
				log.Printf("Dropped key event %s: %v\n", e, err)
			}
			return
		}
		u.pending = &e
		return
	}
	u.pending = nil
	u.sent.Inc()
	log.Debugln("Sent key event", e)
}

var errMalformed = errors.New("ui: malformed key event")

func (u *UI) send(e keymatrix.Event) error {
	switch e.Direction {
	case keymatrix.Down:
		return u.rep.KeyDown(e.Key)
	case keymatrix.Up:
		return u.rep.KeyUp(e.Key)
	}
	return errMalformed
}

// Run drives Process and RefreshScreen from a frame ticker until ctx is
// done.
func (u *UI) Run(ctx context.Context) error {
	t := time.NewTicker(u.opts.Frame)
	defer t.Stop()
	var frame uint16
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		frame++
		if err := u.Process(frame); err != nil {
			return err
		}
		if frame%u.opts.RefreshEvery == 0 && u.NeedsRefresh() {
			if err := u.RefreshScreen(); err != nil {
				log.Println(err)
			}
		}
	}
}
