// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// keypad runs the programmable keypad: it scans the key matrix, reports key
// transitions and draws the key icons on the e-paper panel.
//
// With -emulate it runs against fake SPI and GPIO, which together with
// -preview shows the panel on the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/s00500/env_logger"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/host/v3"

	"github.com/dma14/ProgrammableKeyboard/icon"
	"github.com/dma14/ProgrammableKeyboard/itc"
	"github.com/dma14/ProgrammableKeyboard/keymatrix"
	"github.com/dma14/ProgrammableKeyboard/preview"
	"github.com/dma14/ProgrammableKeyboard/ui"
)

// logReporter stands in for the USB HID keyboard endpoint.
type logReporter struct{}

func (logReporter) KeyDown(code byte) error {
	log.Printf("key down 0x%02x\n", code)
	return nil
}

func (logReporter) KeyUp(code byte) error {
	log.Printf("key up 0x%02x\n", code)
	return nil
}

type board struct {
	port spi.PortCloser
	pins itc.Pins
	cols []gpio.PinOut
	rows []gpio.PinIn
}

func byName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

func openBoard(spiName string, names map[string]string, cols, rows []string) (*board, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(spiName)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi %q: %w", spiName, err)
	}
	b := &board{port: port}
	pins := map[string]*gpio.PinOut{
		"dc":        &b.pins.DC,
		"cs":        &b.pins.CS,
		"reset":     &b.pins.Reset,
		"panel-on":  &b.pins.PanelOn,
		"discharge": &b.pins.Discharge,
	}
	for flagName, dst := range pins {
		p, err := byName(names[flagName])
		if err != nil {
			port.Close()
			return nil, fmt.Errorf("-%s: %w", flagName, err)
		}
		*dst = p
	}
	busy, err := byName(names["busy"])
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("-busy: %w", err)
	}
	b.pins.Busy = busy
	for _, n := range cols {
		p, err := byName(n)
		if err != nil {
			port.Close()
			return nil, fmt.Errorf("-cols: %w", err)
		}
		b.cols = append(b.cols, p)
	}
	for _, n := range rows {
		p, err := byName(n)
		if err != nil {
			port.Close()
			return nil, fmt.Errorf("-rows: %w", err)
		}
		b.rows = append(b.rows, p)
	}
	return b, nil
}

// emulatedBoard wires everything to periph test doubles. The panel is
// always idle and no key is ever pressed.
func emulatedBoard(nCols, nRows int) *board {
	b := &board{port: &spitest.Record{}}
	b.pins = itc.Pins{
		DC:        &gpiotest.Pin{N: "dc"},
		CS:        &gpiotest.Pin{N: "cs"},
		Reset:     &gpiotest.Pin{N: "reset"},
		PanelOn:   &gpiotest.Pin{N: "panelOn"},
		Discharge: &gpiotest.Pin{N: "discharge"},
		Busy:      &gpiotest.Pin{N: "busy", L: gpio.High},
	}
	for i := 0; i < nCols; i++ {
		b.cols = append(b.cols, &gpiotest.Pin{N: "col", Num: i})
	}
	for i := 0; i < nRows; i++ {
		b.rows = append(b.rows, &gpiotest.Pin{N: "row", Num: i})
	}
	return b
}

// loadIcons sets key i from <dir>/<i+1>.bmp or .png when present.
func loadIcons(u *ui.UI, dir string, n int) error {
	for i := 0; i < n; i++ {
		for _, ext := range []string{".bmp", ".png"} {
			p := filepath.Join(dir, strconv.Itoa(i+1)+ext)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			img, err := icon.Open(p)
			if err != nil {
				return err
			}
			if err := u.SetKeyIcon(i, img); err != nil {
				return err
			}
			log.Debugln("Loaded icon", p)
			break
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func mainImpl() error {
	spiName := flag.String("spi", "", "SPI port to use")
	names := map[string]*string{
		"dc":        flag.String("dc", "GPIO25", "panel data/command pin"),
		"cs":        flag.String("cs", "GPIO8", "panel chip select pin"),
		"reset":     flag.String("reset", "GPIO17", "panel reset pin"),
		"panel-on":  flag.String("panel-on", "GPIO22", "panel power pin"),
		"discharge": flag.String("discharge", "GPIO27", "panel discharge pin"),
		"busy":      flag.String("busy", "GPIO24", "panel busy pin"),
	}
	cols := flag.String("cols", "GPIO5,GPIO6,GPIO13", "key matrix column pins")
	rows := flag.String("rows", "GPIO16,GPIO19,GPIO20,GPIO21", "key matrix row pins")
	emulate := flag.Bool("emulate", false, "use fake SPI and GPIO instead of the hardware")
	showPreview := flag.Bool("preview", false, "mirror the panel on the terminal")
	scale := flag.Int("preview-scale", 4, "panel pixels per terminal cell")
	icons := flag.String("icons", "", "directory holding <key>.bmp or <key>.png icons")
	busyTimeout := flag.Duration("busy-timeout", itc.Default.BusyTimeout, "maximum wait on the panel busy line, 0 to wait forever")
	uiOpts := ui.DefaultOpts
	flag.Var(&uiOpts.Retry, "retry", "policy for refused key events: pending or requeue")
	var orientation itc.Orientation
	flag.Var(&orientation, "orientation", "panel orientation flags: flipx, flipy, switchxy")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	colNames, rowNames := splitList(*cols), splitList(*rows)
	var b *board
	if *emulate {
		b = emulatedBoard(len(colNames), len(rowNames))
	} else {
		m := map[string]string{}
		for k, v := range names {
			m[k] = *v
		}
		var err error
		if b, err = openBoard(*spiName, m, colNames, rowNames); err != nil {
			return err
		}
	}
	defer b.port.Close()

	opts := itc.Default
	opts.BusyTimeout = *busyTimeout
	dev, err := itc.New(b.port, &b.pins, &opts)
	if err != nil {
		return err
	}
	defer dev.Halt()
	dev.SetOrientation(orientation)

	scanner, err := keymatrix.New(b.cols, b.rows, &keymatrix.DefaultOpts)
	if err != nil {
		return err
	}
	defer scanner.Halt()

	uiOpts.Rows, uiOpts.Cols = len(rowNames), len(colNames)
	u, err := ui.New(dev, scanner, logReporter{}, &uiOpts)
	if err != nil {
		return err
	}
	if *showPreview {
		p := preview.New(&preview.Opts{Width: opts.Width, Height: opts.Height, Scale: *scale})
		defer p.Halt()
		u.SetMirror(p)
	}

	log.Println("Initializing", dev)
	if err := u.Init(); err != nil {
		return err
	}
	if *icons != "" {
		if err := loadIcons(u, *icons, uiOpts.Rows*uiOpts.Cols); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Println("Scanning", scanner)
	if err := u.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "keypad: %s.\n", err)
		os.Exit(1)
	}
}
