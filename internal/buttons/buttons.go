// Package buttons provides GPIO button input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package buttons

// Reader reads the three button levels.
type Reader interface {
	// Read returns the logical states of Mode, Up and Down.
	// The raw GPIO values are inverted: lines are pulled up and a
	// pressed button pulls them low.
	// Returns (mode, up, down, error).
	Read() (bool, bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	PinMode = 17
	PinUp   = 27
	PinDown = 22
)
