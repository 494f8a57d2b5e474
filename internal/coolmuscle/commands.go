package coolmuscle

import "regexp"

// Cool Muscle CML command tokens. One command per line, CRLF terminated.
// Numeric arguments are appended directly to the token.
const (
	CmdPosition  = "P=" // Set target position (pulse count)
	CmdSpeed     = "S=" // Set motion speed (pulse/s)
	CmdAccel     = "A=" // Set motion acceleration (pulse/s^2)
	CmdTorque    = "M=" // Set torque limit
	CmdExecute   = "^"  // Execute the banked motion
	CmdServoOn   = ")"  // Energize the motor
	CmdServoOff  = "("  // De-energize the motor (free)
	CmdEmergency = "*"  // Emergency stop
	CmdRelease   = "*1" // Release emergency stop
	CmdQueryIn   = "?96"    // Query current position
	CmdReportOff = "K23.1=0" // Disable unsolicited in-position reports
)

// Terminator ends every outgoing command line.
const Terminator = "\r\n"

// PulseReply matches the reply to a position query. One numeric capture:
// the current pulse count.
var PulseReply = regexp.MustCompile(`^Pulse=\s*(-?\d+)\s*$`)
