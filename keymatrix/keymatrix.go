// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keymatrix

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Key is the state of one matrix cell.
type Key struct {
	// Code is the identifier emitted in events.
	Code    byte
	Pressed bool
}

// Matrix holds the key state, indexed [row][column]. It is owned by the
// caller and updated in place by Scan.
type Matrix [][]Key

// Index returns the linear key index used for default codes, counting down
// each column first.
func Index(row, col, rows int) int {
	return row + col*rows
}

// NewMatrix returns a rows x cols matrix with all keys released. Key (r, c)
// gets codes[Index(r, c, rows)], or the index itself when codes is shorter.
func NewMatrix(rows, cols int, codes []byte) Matrix {
	m := make(Matrix, rows)
	for r := range m {
		m[r] = make([]Key, cols)
		for c := range m[r] {
			i := Index(r, c, rows)
			if i < len(codes) {
				m[r][c].Code = codes[i]
			} else {
				m[r][c].Code = byte(i)
			}
		}
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Opts is the scanner configuration.
type Opts struct {
	// Settle is the delay between selecting a column and sampling the rows.
	Settle time.Duration
}

// DefaultOpts is a 1ms settle delay.
var DefaultOpts = Opts{
	Settle: time.Millisecond,
}

// Scanner drives the column lines and samples the row lines.
type Scanner struct {
	cols  []gpio.PinOut
	rows  []gpio.PinIn
	opts  Opts
	sleep func(time.Duration)
}

// New configures rows as pulled-up inputs and releases every column.
func New(cols []gpio.PinOut, rows []gpio.PinIn, opts *Opts) (*Scanner, error) {
	if len(cols) == 0 || len(rows) == 0 {
		return nil, errors.New("keymatrix: need at least one row and one column")
	}
	for _, r := range rows {
		if err := r.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("keymatrix: failed to configure row %s: %w", r, err)
		}
	}
	s := &Scanner{cols: cols, rows: rows, opts: *opts, sleep: time.Sleep}
	if err := s.release(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scanner) String() string {
	return fmt.Sprintf("keymatrix{%dx%d}", len(s.rows), len(s.cols))
}

// Halt releases every column.
func (s *Scanner) Halt() error {
	return s.release()
}

func (s *Scanner) release() error {
	for _, c := range s.cols {
		if err := c.Out(gpio.High); err != nil {
			return fmt.Errorf("keymatrix: failed to release column %s: %w", c, err)
		}
	}
	return nil
}

// Scan samples the whole matrix once and pushes one event per key whose
// state changed since the last scan.
//
// A transition whose event does not fit in q is left unrecorded in keys so
// the next scan reports it again. Scan then returns ErrFull after finishing
// the pass.
func (s *Scanner) Scan(q *FIFO, keys Matrix) error {
	if keys.Rows() < len(s.rows) || keys.Cols() < len(s.cols) {
		return fmt.Errorf("keymatrix: matrix is %dx%d, scanner needs %dx%d", keys.Rows(), keys.Cols(), len(s.rows), len(s.cols))
	}
	if err := s.release(); err != nil {
		return err
	}
	full := false
	for c, col := range s.cols {
		if err := col.Out(gpio.Low); err != nil {
			return fmt.Errorf("keymatrix: failed to select column %s: %w", col, err)
		}
		s.sleep(s.opts.Settle)
		for r, row := range s.rows {
			pressed := row.Read() == gpio.Low
			k := &keys[r][c]
			if pressed == k.Pressed {
				continue
			}
			e := Event{Direction: Up, Key: k.Code}
			if pressed {
				e.Direction = Down
			}
			if err := q.Push(e); err != nil {
				full = true
				continue
			}
			k.Pressed = pressed
		}
		if err := col.Out(gpio.High); err != nil {
			return fmt.Errorf("keymatrix: failed to release column %s: %w", col, err)
		}
	}
	if full {
		return ErrFull
	}
	return nil
}
