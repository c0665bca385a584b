//go:build !linux

package display

import (
	"errors"
	"time"
)

// MAX7219 is not available on non-Linux platforms.
type MAX7219 struct{}

// NewMAX7219 returns an error on non-Linux platforms.
func NewMAX7219(chipName string, pinDIN, pinCLK, pinCS int) (*MAX7219, error) {
	return nil, errors.New("display: not supported on this platform (requires Linux)")
}

func (d *MAX7219) Clear()                                   {}
func (d *MAX7219) WriteText(text string, dotOn bool)        {}
func (d *MAX7219) StartScroll(text string, _ time.Duration) {}
func (d *MAX7219) SetBrightness(level int)                  {}
func (d *MAX7219) Tick()                                    {}
func (d *MAX7219) Close() error                             { return nil }
