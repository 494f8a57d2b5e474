package coolmuscle

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/banshee-data/steering/internal/serialport"
)

const (
	// DefaultReadTimeout bounds a single line read from the port.
	DefaultReadTimeout = 250 * time.Millisecond

	// DefaultDeadline bounds a whole query or acknowledgment exchange,
	// spanning however many line reads it takes to find a matching
	// reply. Without it a persistently chattering device could hold the
	// caller forever.
	DefaultDeadline = 2 * time.Second
)

// Value constrains the numeric types that can be rendered into a command
// line or parsed out of a reply.
type Value interface {
	constraints.Integer | constraints.Float
}

// Command renders a bare token into a wire-ready line.
func Command(token string) string {
	return token + Terminator
}

// CommandValue renders a token followed by a numeric argument.
func CommandValue[T Value](token string, v T) string {
	return token + formatValue(v) + Terminator
}

func formatValue[T Value](v T) string {
	switch any(v).(type) {
	case float32, float64:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}

// Recorder receives a copy of every command line written to the device.
// Recording failures are logged, never propagated: the journal is
// advisory and must not interfere with motion.
type Recorder interface {
	RecordCommand(line string) error
}

// Codec frames commands onto the serial line and matches telemetry
// replies coming back. It owns the read buffering for the port; exactly
// one codec may read a given port.
type Codec struct {
	port        serialport.Porter
	readTimeout time.Duration
	deadline    time.Duration
	recorder    Recorder

	// carry holds bytes read past the last complete line
	carry []byte
}

// NewCodec creates a codec for the given port using the default per-read
// timeout and overall deadline.
func NewCodec(port serialport.Porter) *Codec {
	return &Codec{
		port:        port,
		readTimeout: DefaultReadTimeout,
		deadline:    DefaultDeadline,
	}
}

// SetTimeouts overrides the per-read timeout and the overall match
// deadline. Zero values keep the current setting.
func (c *Codec) SetTimeouts(readTimeout, deadline time.Duration) {
	if readTimeout > 0 {
		c.readTimeout = readTimeout
	}
	if deadline > 0 {
		c.deadline = deadline
	}
}

// SetRecorder attaches a command recorder. A nil recorder disables
// recording.
func (c *Codec) SetRecorder(r Recorder) {
	c.recorder = r
}

// WriteLine writes one wire-ready line to the port.
func (c *Codec) WriteLine(line string) error {
	n, err := c.port.Write([]byte(line))
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrTransportFailure, strings.TrimRight(line, Terminator), err)
	}
	if n != len(line) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrTransportFailure, n, len(line))
	}

	if c.recorder != nil {
		if err := c.recorder.RecordCommand(strings.TrimRight(line, Terminator)); err != nil {
			log.Printf("journal: failed to record command: %v", err)
		}
	}
	return nil
}

// ReadMatch reads lines from the port until one matches the pattern,
// returning the text of the pattern's first capture group. Non-matching
// lines are discarded. The whole exchange is bounded by the codec
// deadline; when it expires ErrProtocolTimeout is returned. A hard read
// failure is returned as ErrTransportFailure without retrying.
func (c *Codec) ReadMatch(pattern *regexp.Regexp) (string, error) {
	deadline := time.Now().Add(c.deadline)

	for {
		line, err := c.readLine(deadline)
		if err != nil {
			return "", err
		}

		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) < 2 {
			return "", fmt.Errorf("reply pattern %q has no capture group", pattern)
		}
		return m[1], nil
	}
}

// readLine returns the next CRLF- or LF-terminated line from the port,
// waiting at most until the deadline.
func (c *Codec) readLine(deadline time.Time) (string, error) {
	chunk := make([]byte, 256)

	for {
		if i := bytes.IndexByte(c.carry, '\n'); i >= 0 {
			line := strings.TrimRight(string(c.carry[:i]), "\r")
			c.carry = c.carry[i+1:]
			return line, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", fmt.Errorf("%w: no matching reply within %s", ErrProtocolTimeout, c.deadline)
		}

		if tp, ok := c.port.(serialport.TimeoutPorter); ok {
			timeout := c.readTimeout
			if remaining < timeout {
				timeout = remaining
			}
			if err := tp.SetReadTimeout(timeout); err != nil {
				return "", fmt.Errorf("%w: set read timeout: %v", ErrTransportFailure, err)
			}
		}

		n, err := c.port.Read(chunk)
		if err != nil {
			return "", fmt.Errorf("%w: read: %v", ErrTransportFailure, err)
		}
		if n == 0 {
			// per-read timeout expired with no data; keep waiting
			// until the overall deadline
			continue
		}
		c.carry = append(c.carry, chunk[:n]...)
	}
}

// ReadValue reads until the pattern matches and parses the capture as T.
func ReadValue[T Value](c *Codec, pattern *regexp.Regexp) (T, error) {
	var zero T

	s, err := c.ReadMatch(pattern)
	if err != nil {
		return zero, err
	}

	switch any(zero).(type) {
	case float32, float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return zero, fmt.Errorf("unparseable reply value %q: %v", s, err)
		}
		return T(f), nil
	default:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return zero, fmt.Errorf("unparseable reply value %q: %v", s, err)
		}
		return T(i), nil
	}
}
