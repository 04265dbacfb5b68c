// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icon

import (
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce sync.Once
	regular  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = truetype.Parse(goregular.TTF)
	})
	return regular, fontErr
}

// Text renders label in black on a white size x size square. The font is
// shrunk until the label fits on one line.
func Text(label string, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("icon: invalid size %d", size)
	}
	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	margin := 2.0
	for points := float64(size) / 2; points >= 4; points-- {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: points}))
		if w, _ := dc.MeasureString(label); w <= float64(size)-2*margin {
			break
		}
	}
	dc.DrawStringAnchored(label, float64(size)/2, float64(size)/2, 0.5, 0.5)
	return dc.Image(), nil
}
