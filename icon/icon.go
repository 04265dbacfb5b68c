// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package icon

import (
	"fmt"
	"image"
	_ "image/gif"  // Register the GIF decoder.
	_ "image/jpeg" // Register the JPEG decoder.
	_ "image/png"  // Register the PNG decoder.
	"io"
	"os"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/bmp" // Register the BMP decoder.

	"github.com/dma14/ProgrammableKeyboard/itc"
)

// DefaultSize is the side of a slot on the keypad panel.
const DefaultSize = 50

// Canvas is what an icon is drawn onto. itc.Dev implements it.
type Canvas interface {
	FillRect(x, y, w, h int, c itc.Color)
	DrawImage(pt image.Point, img image.Image)
}

// Icon is a square slot whose top-left corner is Origin.
type Icon struct {
	Origin image.Point
	Size   int

	img image.Image
}

// DefaultSlots returns the twelve slots of the keypad panel, four per row
// over three rows. Slot i belongs to key index i.
func DefaultSlots() []Icon {
	var out []Icon
	for _, y := range []int{50, 142, 234} {
		for _, x := range []int{60, 152, 244, 336} {
			out = append(out, Icon{Origin: image.Pt(x, y), Size: DefaultSize})
		}
	}
	return out
}

// Set replaces the picture. Images larger than the slot are scaled down.
// A nil image empties the slot.
func (i *Icon) Set(img image.Image) {
	if img == nil {
		i.img = nil
		return
	}
	i.img = Fit(img, i.Size)
}

// Image returns the picture as it will be drawn, or nil.
func (i *Icon) Image() image.Image {
	return i.img
}

// Slot returns the whole slot area.
func (i *Icon) Slot() image.Rectangle {
	return image.Rect(i.Origin.X, i.Origin.Y, i.Origin.X+i.Size, i.Origin.Y+i.Size)
}

// Rect returns where the picture lands: centered in the slot.
func (i *Icon) Rect() image.Rectangle {
	if i.img == nil {
		return i.Slot()
	}
	b := i.img.Bounds()
	x := (i.Size-b.Dx())/2 + i.Origin.X
	y := (i.Size-b.Dy())/2 + i.Origin.Y
	return image.Rect(x, y, x+b.Dx(), y+b.Dy())
}

// Draw blanks the slot and draws the picture over it.
func (i *Icon) Draw(c Canvas) {
	c.FillRect(i.Origin.X, i.Origin.Y, i.Size, i.Size, itc.White)
	if i.img == nil {
		return
	}
	c.DrawImage(i.Rect().Min, i.img)
}

// Fit returns img unchanged when it fits in a size x size square, else a
// grayscale copy scaled down to fit, keeping the aspect ratio.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	g := gift.New(
		gift.ResizeToFit(size, size, gift.LanczosResampling),
		gift.Grayscale(),
	)
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}

// Decode reads a BMP, PNG, GIF or JPEG image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	return img, nil
}

// Open reads an image file.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("icon: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
