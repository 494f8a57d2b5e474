// Package serialport abstracts the serial line to the actuator so the
// controller and its tests do not need real hardware. The actuator is a
// single synchronous device: one port, one command or reply in flight.
package serialport

import (
	"io"
	"time"
)

// Porter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real serial hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutPorter extends Porter with a per-read timeout. Ports that
// implement it return (0, nil) from Read when the timeout expires with
// no data, matching go.bug.st/serial semantics.
type TimeoutPorter interface {
	Porter
	// SetReadTimeout sets the read timeout for the serial port.
	SetReadTimeout(timeout time.Duration) error
}

// Factory defines an interface for creating serial ports.
// This abstraction enables dependency injection of serial port creation.
type Factory interface {
	// Open opens a serial port at the specified path with the given options.
	Open(path string, opts Options) (Porter, error)
}
