//go:build linux

package tone

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOBeeper bit-bangs a square wave on a passive piezo line.
type GPIOBeeper struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	busy atomic.Bool
}

// NewGPIOBeeper opens the buzzer line on the given chip.
func NewGPIOBeeper(chipName string, pin int) (*GPIOBeeper, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pin, err)
	}
	return &GPIOBeeper{chip: chip, line: line}, nil
}

// Confirm plays a single short beep.
func (b *GPIOBeeper) Confirm() {
	b.play(1)
}

// ConfirmDouble plays two short beeps.
func (b *GPIOBeeper) ConfirmDouble() {
	b.play(2)
}

// play runs the pattern on its own goroutine. Overlapping requests are
// dropped rather than queued; a missed beep is preferable to a backlog.
func (b *GPIOBeeper) play(beeps int) {
	if !b.busy.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer b.busy.Store(false)
		for i := 0; i < beeps; i++ {
			if i > 0 {
				time.Sleep(beepGap)
			}
			b.squareWave(beepLength)
		}
	}()
}

func (b *GPIOBeeper) squareWave(d time.Duration) {
	half := time.Second / time.Duration(2*toneFreq)
	end := time.Now().Add(d)
	for time.Now().Before(end) {
		b.line.SetValue(1)
		time.Sleep(half)
		b.line.SetValue(0)
		time.Sleep(half)
	}
}

func (b *GPIOBeeper) Close() error {
	for b.busy.Load() {
		time.Sleep(time.Millisecond)
	}
	b.line.SetValue(0)
	b.line.Close()
	return b.chip.Close()
}
