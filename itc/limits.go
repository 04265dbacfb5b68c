// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package itc

import (
	"fmt"
	"strings"
)

// Limits is an inclusive drawing rectangle. The top-left corner doubles as
// the cursor for single pixel operations. StartX <= EndX and StartY <= EndY
// is up to the caller.
type Limits struct {
	StartX, StartY int
	EndX, EndY     int
}

// contains reports whether (x, y) lies within the inclusive rectangle.
func (l Limits) contains(x, y int) bool {
	return x >= l.StartX && x <= l.EndX && y >= l.StartY && y <= l.EndY
}

// Width returns the number of columns covered.
func (l Limits) Width() int {
	return l.EndX - l.StartX + 1
}

// Height returns the number of rows covered.
func (l Limits) Height() int {
	return l.EndY - l.StartY + 1
}

// raster walks the limits row-major starting at the cursor, the way the
// controller RAM pointer would. Past EndX the column wraps to StartX and the
// row advances; nothing bounds the row count.
type raster struct {
	l    Limits
	x, y int
}

func newRaster(l Limits) raster {
	return raster{l: l, x: l.StartX, y: l.StartY}
}

func (r *raster) next() {
	if r.x < r.l.EndX {
		r.x++
		return
	}
	r.x = r.l.StartX
	r.y++
}

// Orientation is a set of display orientation flags.
type Orientation uint8

// Orientation flags.
const (
	FlipX    Orientation = 1
	FlipY    Orientation = 2
	SwitchXY Orientation = 4
)

// String returns the flags joined with "|".
func (o Orientation) String() string {
	var s []string
	if o&FlipX != 0 {
		s = append(s, "flipx")
	}
	if o&FlipY != 0 {
		s = append(s, "flipy")
	}
	if o&SwitchXY != 0 {
		s = append(s, "switchxy")
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "|")
}

// Set parses a "|" or "," separated list of flags. Set implements the
// flag.Value interface.
func (o *Orientation) Set(s string) error {
	var v Orientation
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.TrimSpace(f) {
		case "none", "":
		case "flipx":
			v |= FlipX
		case "flipy":
			v |= FlipY
		case "switchxy":
			v |= SwitchXY
		default:
			return fmt.Errorf("unknown orientation %q: expected none, flipx, flipy or switchxy", f)
		}
	}
	*o = v
	return nil
}
