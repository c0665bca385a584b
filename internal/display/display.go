// Package display drives a 4-digit seven-segment module with hardware
// abstraction. The real implementation bit-bangs a MAX7219 over GPIO lines.
// The fake implementation allows testing without hardware.
package display

import "time"

// Display is the narrow capability the clock core writes through.
type Display interface {
	// Clear blanks all digits.
	Clear()

	// WriteText shows up to 4 visible glyphs, with the separator dot
	// between hours and minutes on or off.
	WriteText(text string, dotOn bool)

	// StartScroll begins scrolling text across the visible window,
	// advancing one step every step interval. Restarting with the same
	// content restarts the animation.
	StartScroll(text string, step time.Duration)

	// SetBrightness sets the intensity, 0 (dim) to 15 (bright).
	SetBrightness(level int)

	// Tick advances the scroll animation. Called once per run-loop tick.
	Tick()

	// Close releases display resources.
	Close() error
}

// Default GPIO pins (BCM numbering) for the bit-banged MAX7219 bus.
const (
	DefaultPinDIN = 10
	DefaultPinCLK = 11
	DefaultPinCS  = 8
)

// Digits is the visible window width.
const Digits = 4
