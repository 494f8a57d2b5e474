package serialport

import (
	"go.bug.st/serial"
)

// RealFactory opens real serial ports via go.bug.st/serial.
type RealFactory struct{}

// Open opens the serial port at the given path with the provided options.
// The returned port implements TimeoutPorter.
func (RealFactory) Open(path string, opts Options) (Porter, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return port, nil
}
