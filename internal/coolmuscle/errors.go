package coolmuscle

import "errors"

// Error kinds surfaced by the controller and codec. Callers match them
// with errors.Is; the wrapped message carries the detail.
var (
	// ErrConfiguration indicates invalid calibration or port
	// configuration, detected at construction before any I/O.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransportFailure indicates a port open, write, or read failed
	// at the I/O level. Not retried.
	ErrTransportFailure = errors.New("transport failure")

	// ErrProtocolTimeout indicates no matching response line arrived
	// within the codec deadline. The connection is left open; the
	// caller may retry the whole operation or reconnect.
	ErrProtocolTimeout = errors.New("protocol timeout")

	// ErrInvalidState indicates an operation was invoked in a state
	// that forbids it. Rejected before any I/O.
	ErrInvalidState = errors.New("invalid controller state")

	// ErrAngleOutOfRange indicates a motion target outside the
	// calibrated travel. Rejected rather than clamped: overshooting a
	// steering limit is a physical hazard.
	ErrAngleOutOfRange = errors.New("angle outside calibrated range")
)
