// Package coolmuscle drives a single Cool Muscle steering actuator over
// a serial line using the textual CML command protocol.
//
// A Controller owns exactly one serial port and one calibration; it is
// not safe for concurrent use and must not be copied. Callers needing
// concurrent access must serialize externally.
package coolmuscle

import (
	"fmt"
	"log"
	"time"

	"github.com/banshee-data/steering/internal/serialport"
	"github.com/banshee-data/steering/internal/units"
)

// State is the controller lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateInitialized
	StateEnabled
	StateDisabled
	StateEmergencyStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateInitialized:
		return "initialized"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateEmergencyStopped:
		return "emergency-stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Default motion parameters in the actuator's native units, used when
// Set omits them.
const (
	// DefaultSpeed is the default motion speed (pulse/s).
	DefaultSpeed units.Pulse = 40
	// DefaultAccel is the default acceleration (pulse/s^2).
	DefaultAccel units.Pulse = 50
	// DefaultTorque is the fixed torque limit sent with every motion.
	DefaultTorque = 20
)

// Defaults carries the motion parameters applied when Set omits them.
// Values are in the actuator's native units.
type Defaults struct {
	Speed  units.Pulse
	Accel  units.Pulse
	Torque int
}

// Config describes a Controller. Port, baud rate, and the two
// calibration limits are required; everything else has working defaults.
type Config struct {
	// Port is the serial device path, e.g. /dev/ttyUSB0.
	Port string

	// Serial carries baud rate and framing options.
	Serial serialport.Options

	// LimitCCW and LimitCW are the measured calibration extremes.
	// LimitCCW.Angle must be positive and LimitCW.Angle negative.
	LimitCCW units.Limit
	LimitCW  units.Limit

	// OriginOffset is the native reading at the mechanical zero angle.
	OriginOffset units.Pulse

	// Defaults overrides the default motion parameters when non-nil.
	Defaults *Defaults

	// ReadTimeout bounds a single line read; zero means the 250 ms
	// default. Deadline bounds a whole query exchange; zero means the
	// 2 s default.
	ReadTimeout time.Duration
	Deadline    time.Duration

	// Factory opens the serial port; nil means the real go.bug.st
	// backed factory.
	Factory serialport.Factory

	// Recorder, when non-nil, receives every command line sent and
	// every pulse reading parsed.
	Recorder Recorder
}

// Controller is the top-level actuator controller. It owns the serial
// port exclusively and releases it on Close regardless of state.
type Controller struct {
	portName string
	opts     serialport.Options
	factory  serialport.Factory
	recorder Recorder

	cal      *units.Calibration
	defaults Defaults

	readTimeout time.Duration
	deadline    time.Duration

	port  serialport.Porter
	codec *Codec
	state State
}

// New validates the configuration and creates a disconnected
// controller. Calibration problems are reported as ErrConfiguration;
// no I/O is performed.
func New(cfg Config) (*Controller, error) {
	cal, err := units.NewCalibration(cfg.LimitCCW, cfg.LimitCW, cfg.OriginOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	opts, err := cfg.Serial.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: serial port path is required", ErrConfiguration)
	}

	defaults := Defaults{Speed: DefaultSpeed, Accel: DefaultAccel, Torque: DefaultTorque}
	if cfg.Defaults != nil {
		defaults = *cfg.Defaults
	}

	factory := cfg.Factory
	if factory == nil {
		factory = serialport.RealFactory{}
	}

	return &Controller{
		portName:    cfg.Port,
		opts:        opts,
		factory:     factory,
		recorder:    cfg.Recorder,
		cal:         cal,
		defaults:    defaults,
		readTimeout: cfg.ReadTimeout,
		deadline:    cfg.Deadline,
		state:       StateDisconnected,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Calibration returns the controller's angle/pulse calibration.
func (c *Controller) Calibration() *units.Calibration {
	return c.cal
}

// SetPort updates the serial device path. Valid only before Connect.
func (c *Controller) SetPort(port string) error {
	if c.state != StateDisconnected {
		return fmt.Errorf("%w: cannot change port while %s", ErrInvalidState, c.state)
	}
	c.portName = port
	return nil
}

// SetBaudrate updates the baud rate. Valid only before Connect.
func (c *Controller) SetBaudrate(baud int) error {
	if c.state != StateDisconnected {
		return fmt.Errorf("%w: cannot change baud rate while %s", ErrInvalidState, c.state)
	}
	c.opts.BaudRate = baud
	return nil
}

// Connect opens the serial port. Valid only in the disconnected state.
func (c *Controller) Connect() error {
	if c.state != StateDisconnected {
		return fmt.Errorf("%w: already %s", ErrInvalidState, c.state)
	}

	port, err := c.factory.Open(c.portName, c.opts)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrTransportFailure, c.portName, err)
	}

	c.port = port
	c.codec = NewCodec(port)
	c.codec.SetTimeouts(c.readTimeout, c.deadline)
	c.codec.SetRecorder(c.recorder)
	c.state = StateConnected
	return nil
}

// Init configures the actuator and verifies it is answering. The device
// acknowledges by replying to a position query.
func (c *Controller) Init() error {
	if c.state != StateConnected {
		return fmt.Errorf("%w: init requires connected, currently %s", ErrInvalidState, c.state)
	}

	if err := c.codec.WriteLine(Command(CmdReportOff)); err != nil {
		return err
	}

	if err := c.codec.WriteLine(Command(CmdQueryIn)); err != nil {
		return err
	}
	if _, err := ReadValue[units.Pulse](c.codec, PulseReply); err != nil {
		return err
	}

	c.state = StateInitialized
	return nil
}

// On energizes the motor. Calling it while already enabled is a no-op.
func (c *Controller) On() error {
	switch c.state {
	case StateEnabled:
		return nil
	case StateInitialized, StateDisabled:
	default:
		return fmt.Errorf("%w: on requires initialized or disabled, currently %s", ErrInvalidState, c.state)
	}

	if err := c.codec.WriteLine(Command(CmdServoOn)); err != nil {
		return err
	}
	c.state = StateEnabled
	return nil
}

// Off de-energizes the motor. Calling it while already disabled is a
// no-op.
func (c *Controller) Off() error {
	switch c.state {
	case StateDisabled, StateInitialized:
		return nil
	case StateEnabled:
	default:
		return fmt.Errorf("%w: off requires enabled, currently %s", ErrInvalidState, c.state)
	}

	if err := c.codec.WriteLine(Command(CmdServoOff)); err != nil {
		return err
	}
	c.state = StateDisabled
	return nil
}

// Set rotates the actuator to the target angle at the given angular
// velocity and acceleration. Zero radians is the mechanical centre;
// positive angles are CCW. The sign of the velocity and acceleration is
// ignored. Targets outside the calibrated travel are rejected.
func (c *Controller) Set(angle, velocity, acceleration float64) error {
	if err := c.checkMotion(angle); err != nil {
		return err
	}
	return c.move(
		c.cal.AngleToPulse(angle),
		c.cal.RateToPulse(velocity, angle),
		c.cal.RateToPulse(acceleration, angle),
	)
}

// SetWithVelocity is Set with the default acceleration.
func (c *Controller) SetWithVelocity(angle, velocity float64) error {
	if err := c.checkMotion(angle); err != nil {
		return err
	}
	return c.move(
		c.cal.AngleToPulse(angle),
		c.cal.RateToPulse(velocity, angle),
		c.defaults.Accel,
	)
}

// SetAngle is Set with the default velocity and acceleration.
func (c *Controller) SetAngle(angle float64) error {
	if err := c.checkMotion(angle); err != nil {
		return err
	}
	return c.move(c.cal.AngleToPulse(angle), c.defaults.Speed, c.defaults.Accel)
}

func (c *Controller) checkMotion(angle float64) error {
	if c.state != StateEnabled {
		return fmt.Errorf("%w: motion requires enabled, currently %s", ErrInvalidState, c.state)
	}
	if !c.cal.InRange(angle) {
		return fmt.Errorf("%w: %v rad outside [%v, %v]", ErrAngleOutOfRange,
			angle, c.cal.LimitCW().Angle, c.cal.LimitCCW().Angle)
	}
	return nil
}

// move banks position, speed, acceleration, and torque, then executes.
func (c *Controller) move(position, speed, accel units.Pulse) error {
	for _, line := range []string{
		CommandValue(CmdPosition, position),
		CommandValue(CmdSpeed, speed),
		CommandValue(CmdAccel, accel),
		CommandValue(CmdTorque, c.defaults.Torque),
		Command(CmdExecute),
	} {
		if err := c.codec.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Emergency sends the emergency stop command. Valid in every connected
// state, including when already stopped.
func (c *Controller) Emergency() error {
	if c.state == StateDisconnected {
		return fmt.Errorf("%w: emergency stop requires an open connection", ErrInvalidState)
	}

	if err := c.codec.WriteLine(Command(CmdEmergency)); err != nil {
		return err
	}
	c.state = StateEmergencyStopped
	return nil
}

// ReleaseEmergency releases the emergency stop. The actuator is left
// disabled and must be re-enabled with On before further motion.
func (c *Controller) ReleaseEmergency() error {
	if c.state != StateEmergencyStopped {
		return fmt.Errorf("%w: release requires emergency-stopped, currently %s", ErrInvalidState, c.state)
	}

	if err := c.codec.WriteLine(Command(CmdRelease)); err != nil {
		return err
	}
	c.state = StateDisabled
	return nil
}

// PulseCount queries the actuator's current position in native pulse
// counts. Valid in any connected state.
func (c *Controller) PulseCount() (units.Pulse, error) {
	if c.state == StateDisconnected {
		return 0, fmt.Errorf("%w: query requires an open connection", ErrInvalidState)
	}

	if err := c.codec.WriteLine(Command(CmdQueryIn)); err != nil {
		return 0, err
	}

	pulse, err := ReadValue[units.Pulse](c.codec, PulseReply)
	if err != nil {
		return 0, err
	}

	if pr, ok := c.recorder.(PulseRecorder); ok {
		if err := pr.RecordPulse(int64(pulse), c.cal.PulseToAngle(pulse)); err != nil {
			log.Printf("journal: failed to record pulse reading: %v", err)
		}
	}

	return pulse, nil
}

// Angle queries the actuator's current position in radians.
func (c *Controller) Angle() (float64, error) {
	pulse, err := c.PulseCount()
	if err != nil {
		return 0, err
	}
	return c.cal.PulseToAngle(pulse), nil
}

// Close releases the serial port. Safe to call in any state and more
// than once; the port is closed regardless of lifecycle state.
func (c *Controller) Close() error {
	if c.port == nil {
		c.state = StateDisconnected
		return nil
	}

	err := c.port.Close()
	c.port = nil
	c.codec = nil
	c.state = StateDisconnected
	if err != nil {
		return fmt.Errorf("%w: close: %v", ErrTransportFailure, err)
	}
	return nil
}

// PulseRecorder is an optional extension of Recorder for persisting
// parsed pulse readings alongside the raw command stream.
type PulseRecorder interface {
	Recorder
	RecordPulse(pulse int64, angle float64) error
}
