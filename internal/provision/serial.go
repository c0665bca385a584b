package provision

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

const defaultBaudRate = 115200

// OpenSerial opens the host serial port in near-non-blocking mode so the
// per-tick poll returns promptly when no bytes are pending.
func OpenSerial(portName string) (io.ReadWriteCloser, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: defaultBaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", portName, err)
	}
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	return port, nil
}
