// Package tone drives the confirmation buzzer. Every pattern is short and
// bounded; playback happens off the caller's goroutine so button handling
// never waits on a beep.
package tone

import "time"

// DefaultPin is the BCM line the buzzer is wired to.
const DefaultPin = 23

const (
	beepLength = 80 * time.Millisecond
	beepGap    = 60 * time.Millisecond
	toneFreq   = 2000 // Hz
)

// Beeper plays the audible confirmations.
type Beeper interface {
	Confirm()
	ConfirmDouble()
	Close() error
}
