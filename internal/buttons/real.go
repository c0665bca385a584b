//go:build linux

package buttons

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip *gpiocdev.Chip
	mode *gpiocdev.Line
	up   *gpiocdev.Line
	down *gpiocdev.Line
}

// NewRealReader requests the three button lines as inputs with pull-ups.
// Buttons short the line to ground when pressed.
func NewRealReader(chipName string, pinMode, pinUp, pinDown int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	var lines []*gpiocdev.Line
	request := func(pin int, name string) (*gpiocdev.Line, error) {
		l, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
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

	mode, err := request(pinMode, "Mode")
	if err != nil {
		return nil, err
	}
	up, err := request(pinUp, "Up")
	if err != nil {
		return nil, err
	}
	down, err := request(pinDown, "Down")
	if err != nil {
		return nil, err
	}

	return &RealReader{chip: chip, mode: mode, up: up, down: down}, nil
}

// Read returns the logical (pressed) states of the three buttons.
// Inverts raw GPIO: raw low (0) = pressed.
func (r *RealReader) Read() (bool, bool, bool, error) {
	modeRaw, err := r.mode.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read Mode pin: %w", err)
	}
	upRaw, err := r.up.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read Up pin: %w", err)
	}
	downRaw, err := r.down.Value()
	if err != nil {
		return false, false, false, fmt.Errorf("read Down pin: %w", err)
	}

	return modeRaw == 0, upRaw == 0, downRaw == 0, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	for _, l := range []*gpiocdev.Line{r.mode, r.up, r.down} {
		if l != nil {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
