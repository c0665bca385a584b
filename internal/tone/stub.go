//go:build !linux

package tone

import "log"

// GPIOBeeper is a no-op stand-in for development hosts without GPIO.
type GPIOBeeper struct{}

func NewGPIOBeeper(chipName string, pin int) (*GPIOBeeper, error) {
	log.Printf("tone: stub beeper (chip %s pin %d)", chipName, pin)
	return &GPIOBeeper{}, nil
}

func (b *GPIOBeeper) Confirm()       {}
func (b *GPIOBeeper) ConfirmDouble() {}
func (b *GPIOBeeper) Close() error   { return nil }
