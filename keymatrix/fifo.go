// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keymatrix

import (
	"errors"
	"sync"
)

var (
	// ErrFull is returned when the FIFO has no room for the data pushed.
	ErrFull = errors.New("keymatrix: fifo full")
	// ErrEmpty is returned when the FIFO holds less than what is pulled.
	ErrEmpty = errors.New("keymatrix: fifo empty")
)

// FIFO is a fixed capacity byte queue. It is safe for one producer and one
// consumer running concurrently.
type FIFO struct {
	mu   sync.Mutex
	buf  []byte
	head int // next byte to pull
	n    int
}

// NewFIFO returns an empty FIFO holding up to size bytes.
func NewFIFO(size int) *FIFO {
	if size <= 0 {
		panic("keymatrix: fifo size must be positive")
	}
	return &FIFO{buf: make([]byte, size)}
}

func (f *FIFO) push(b ...byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.buf)-f.n < len(b) {
		return ErrFull
	}
	for _, v := range b {
		f.buf[(f.head+f.n)%len(f.buf)] = v
		f.n++
	}
	return nil
}

func (f *FIFO) pull(out []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n < len(out) {
		return ErrEmpty
	}
	for i := range out {
		out[i] = f.buf[f.head]
		f.head = (f.head + 1) % len(f.buf)
		f.n--
	}
	return nil
}

// PushUint8 appends one byte.
func (f *FIFO) PushUint8(b byte) error {
	return f.push(b)
}

// PullUint8 removes the oldest byte.
func (f *FIFO) PullUint8() (byte, error) {
	var b [1]byte
	err := f.pull(b[:])
	return b[0], err
}

// Push appends both bytes of e, or nothing when only one would fit.
func (f *FIFO) Push(e Event) error {
	return f.push(byte(e.Direction), e.Key)
}

// Pull removes the oldest event. It fails with ErrEmpty, consuming nothing,
// when fewer than two bytes are queued.
func (f *FIFO) Pull() (Event, error) {
	var b [2]byte
	if err := f.pull(b[:]); err != nil {
		return Event{}, err
	}
	return Event{Direction: Direction(b[0]), Key: b[1]}, nil
}

// Len returns the number of queued bytes.
func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// Cap returns the capacity in bytes.
func (f *FIFO) Cap() int {
	return len(f.buf)
}

// Free returns the number of bytes that can still be pushed.
func (f *FIFO) Free() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf) - f.n
}

// IsEmpty reports whether nothing is queued.
func (f *FIFO) IsEmpty() bool {
	return f.Len() == 0
}

// IsFull reports whether no byte can be pushed.
func (f *FIFO) IsFull() bool {
	return f.Free() == 0
}

// Reset drops everything queued.
func (f *FIFO) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head, f.n = 0, 0
}
