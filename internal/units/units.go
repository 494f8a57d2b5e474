// Package units converts between steering angles in radians and the
// actuator's native pulse counts.
//
// The conversion is piecewise linear, anchored at the mechanical origin
// and at one measured calibration limit per rotational direction. Zero
// radians is the mechanical centre; positive angles are CCW, negative
// angles are CW.
package units

import (
	"fmt"
	"math"
)

// Pulse is the actuator's native signed position unit.
type Pulse int64

// Limit records one measured correspondence between a physical rotation
// extreme and its native pulse reading.
type Limit struct {
	// Angle is the limit position in radians. Positive for the CCW
	// limit, negative for the CW limit.
	Angle float64

	// Pulse is the native reading measured at that position.
	Pulse Pulse
}

// Calibration maps angles to pulse counts for one actuator. Immutable
// after construction.
type Calibration struct {
	ccw    Limit
	cw     Limit
	origin Pulse
}

// NewCalibration validates the two calibration limits and the origin
// offset. The CCW limit angle must be positive and the CW limit angle
// negative, and neither limit may coincide with the origin in pulse
// counts, since either condition would make the conversion singular.
func NewCalibration(ccw, cw Limit, origin Pulse) (*Calibration, error) {
	if ccw.Angle == 0 || cw.Angle == 0 {
		return nil, fmt.Errorf("calibration limit angle must be nonzero (ccw=%v, cw=%v)", ccw.Angle, cw.Angle)
	}
	if ccw.Angle < 0 || cw.Angle > 0 {
		return nil, fmt.Errorf("calibration limits must straddle the origin: ccw angle %v must be positive, cw angle %v negative", ccw.Angle, cw.Angle)
	}
	if ccw.Pulse == origin || cw.Pulse == origin {
		return nil, fmt.Errorf("calibration limit pulse must differ from origin offset %d (ccw=%d, cw=%d)", origin, ccw.Pulse, cw.Pulse)
	}

	return &Calibration{ccw: ccw, cw: cw, origin: origin}, nil
}

// Origin returns the pulse reading at the mechanical zero angle.
func (c *Calibration) Origin() Pulse {
	return c.origin
}

// LimitCCW returns the counter-clockwise calibration limit.
func (c *Calibration) LimitCCW() Limit {
	return c.ccw
}

// LimitCW returns the clockwise calibration limit.
func (c *Calibration) LimitCW() Limit {
	return c.cw
}

// limitFor selects the calibration limit for the rotational direction
// containing the given angle. Zero falls in the CCW segment; either
// segment maps it to the origin.
func (c *Calibration) limitFor(rad float64) Limit {
	if rad >= 0 {
		return c.ccw
	}
	return c.cw
}

// AngleToPulse converts an angle in radians to a native pulse count by
// interpolating between the origin and the calibration limit on the
// angle's side.
func (c *Calibration) AngleToPulse(rad float64) Pulse {
	limit := c.limitFor(rad)
	scaled := rad * float64(limit.Pulse-c.origin) / limit.Angle
	return c.origin + Pulse(math.Round(scaled))
}

// PulseToAngle converts a native pulse count back to radians. The CCW or
// CW segment is selected by which side of the origin the reading lies
// on.
func (c *Calibration) PulseToAngle(pulse Pulse) float64 {
	offset := pulse - c.origin

	limit := c.ccw
	if (offset >= 0) != (c.ccw.Pulse >= c.origin) {
		limit = c.cw
	}

	return float64(offset) * limit.Angle / float64(limit.Pulse-c.origin)
}

// RateToPulse converts an angular rate (rad/s or rad/s^2) to the
// actuator's native pulse rate. Rates carry no origin offset, and only
// the magnitude is meaningful; the scale is taken from the direction of
// the target angle the actuator is moving toward.
func (c *Calibration) RateToPulse(rate, towardAngle float64) Pulse {
	limit := c.limitFor(towardAngle)
	scale := float64(limit.Pulse-c.origin) / limit.Angle
	return Pulse(math.Round(math.Abs(rate * scale)))
}

// InRange reports whether the angle lies within the calibrated travel.
func (c *Calibration) InRange(rad float64) bool {
	return rad >= c.cw.Angle && rad <= c.ccw.Angle
}
