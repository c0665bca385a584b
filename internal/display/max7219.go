//go:build linux

package display

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// MAX7219 register addresses.
const (
	regDigit0      = 0x01
	regDecodeMode  = 0x09
	regIntensity   = 0x0A
	regScanLimit   = 0x0B
	regShutdown    = 0x0C
	regDisplayTest = 0x0F
)

// MAX7219 drives the display controller over a bit-banged 3-wire bus.
type MAX7219 struct {
	chip *gpiocdev.Chip
	din  *gpiocdev.Line
	clk  *gpiocdev.Line
	cs   *gpiocdev.Line

	scrollText string
	scrollStep time.Duration
	scrollPos  int
	lastStep   time.Time
	scrolling  bool
}

// NewMAX7219 opens the GPIO lines and initializes the controller: decode
// off, all digits scanned, display test off, woken from shutdown.
func NewMAX7219(chipName string, pinDIN, pinCLK, pinCS int) (*MAX7219, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lines := make([]*gpiocdev.Line, 0, 3)
	request := func(pin int, name string) (*gpiocdev.Line, error) {
		l, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			for _, prev := range lines {
				prev.Close()
			}
			chip.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", name, pin, err)
		}
		lines = append(lines, l)
		return l, nil
	}

	din, err := request(pinDIN, "DIN")
	if err != nil {
		return nil, err
	}
	clk, err := request(pinCLK, "CLK")
	if err != nil {
		return nil, err
	}
	cs, err := request(pinCS, "CS")
	if err != nil {
		return nil, err
	}

	d := &MAX7219{chip: chip, din: din, clk: clk, cs: cs}
	d.write(regDisplayTest, 0x00)
	d.write(regScanLimit, Digits-1)
	d.write(regDecodeMode, 0x00)
	d.write(regShutdown, 0x01)
	d.Clear()
	return d, nil
}

// write shifts one 16-bit register frame out MSB first.
func (d *MAX7219) write(reg, data byte) {
	d.cs.SetValue(0)
	word := uint16(reg)<<8 | uint16(data)
	for i := 15; i >= 0; i-- {
		bit := 0
		if word&(1<<uint(i)) != 0 {
			bit = 1
		}
		d.din.SetValue(bit)
		d.clk.SetValue(1)
		d.clk.SetValue(0)
	}
	d.cs.SetValue(1)
}

// render writes 4 characters to the digit registers. Leftmost character
// goes to the highest digit. Code-B decode is used per digit where the
// character allows it; everything else is written as raw segments.
func (d *MAX7219) render(text string, dotOn bool) {
	for len(text) < Digits {
		text += " "
	}
	text = text[:Digits]

	var decodeMask byte
	for i := 0; i < Digits; i++ {
		if CodeBCompatible(text[i]) {
			decodeMask |= 1 << uint(Digits-1-i)
		}
	}
	d.write(regDecodeMode, decodeMask)

	for i := 0; i < Digits; i++ {
		c := text[i]
		var v byte
		if CodeBCompatible(c) {
			v = codeB(c)
		} else {
			v = Segments(c)
		}
		// The separator is the DP of the second digit from the left.
		if dotOn && i == 1 {
			v |= 0x80
		}
		d.write(regDigit0+byte(Digits-1-i), v)
	}
}

// Clear blanks all digits and stops any scroll.
func (d *MAX7219) Clear() {
	d.scrolling = false
	d.render("    ", false)
}

// WriteText shows fixed text and stops any scroll.
func (d *MAX7219) WriteText(text string, dotOn bool) {
	d.scrolling = false
	d.render(text, dotOn)
}

// StartScroll begins a scroll from the first window position.
func (d *MAX7219) StartScroll(text string, step time.Duration) {
	d.scrollText = text
	d.scrollStep = step
	d.scrollPos = 0
	d.lastStep = time.Now()
	d.scrolling = true
	d.render(scrollWindow(text, 0), false)
}

// SetBrightness sets the intensity register, clamped to 0..15.
func (d *MAX7219) SetBrightness(level int) {
	if level < 0 {
		level = 0
	}
	if level > 15 {
		level = 15
	}
	d.write(regIntensity, byte(level))
}

// Tick advances an active scroll by one step when its interval elapsed.
func (d *MAX7219) Tick() {
	if !d.scrolling || d.scrollStep <= 0 {
		return
	}
	now := time.Now()
	if now.Sub(d.lastStep) < d.scrollStep {
		return
	}
	d.lastStep = now
	d.scrollPos++
	if d.scrollPos >= scrollSteps(d.scrollText) {
		d.scrollPos = 0
	}
	d.render(scrollWindow(d.scrollText, d.scrollPos), false)
}

// Close blanks the display and releases GPIO resources.
func (d *MAX7219) Close() error {
	d.Clear()
	d.write(regShutdown, 0x00)

	var errs []error
	for _, l := range []*gpiocdev.Line{d.din, d.clk, d.cs} {
		if l != nil {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
