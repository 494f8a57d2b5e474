// Package config loads the steering controller configuration from a
// JSON file: serial port parameters, the measured calibration limits,
// and optional overrides for the motion defaults and protocol timeouts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/steering/internal/coolmuscle"
	"github.com/banshee-data/steering/internal/serialport"
	"github.com/banshee-data/steering/internal/units"
)

// LimitConfig is one measured calibration extreme.
type LimitConfig struct {
	AngleRad float64 `json:"angle_rad"`
	Pulse    int64   `json:"pulse"`
}

// Config represents the on-disk controller configuration. Fields
// omitted from the JSON keep their zero value and fall back to the
// controller defaults.
type Config struct {
	Port   string             `json:"port"`
	Serial serialport.Options `json:"serial"`

	LimitCCW     LimitConfig `json:"limit_ccw"`
	LimitCW      LimitConfig `json:"limit_cw"`
	OriginOffset int64       `json:"origin_offset"`

	// Motion defaults in native units; nil keeps the Cool Muscle
	// defaults (S=40, A=50, M=20).
	DefaultSpeed  *int64 `json:"default_speed,omitempty"`
	DefaultAccel  *int64 `json:"default_accel,omitempty"`
	DefaultTorque *int   `json:"default_torque,omitempty"`

	// Timeouts as duration strings like "250ms"; empty keeps the
	// protocol defaults.
	ReadTimeout string `json:"read_timeout,omitempty"`
	Deadline    string `json:"deadline,omitempty"`

	// Journal is an optional sqlite path for session recording.
	Journal string `json:"journal,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration values that can be checked without
// constructing a controller.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.LimitCCW.AngleRad == 0 || c.LimitCW.AngleRad == 0 {
		return fmt.Errorf("both calibration limits must have a nonzero angle")
	}
	if c.ReadTimeout != "" {
		if _, err := time.ParseDuration(c.ReadTimeout); err != nil {
			return fmt.Errorf("invalid read_timeout %q: %w", c.ReadTimeout, err)
		}
	}
	if c.Deadline != "" {
		if _, err := time.ParseDuration(c.Deadline); err != nil {
			return fmt.Errorf("invalid deadline %q: %w", c.Deadline, err)
		}
	}
	if _, err := c.Serial.Normalize(); err != nil {
		return err
	}
	return nil
}

// ControllerConfig translates the file configuration into a controller
// configuration.
func (c *Config) ControllerConfig() coolmuscle.Config {
	cfg := coolmuscle.Config{
		Port:         c.Port,
		Serial:       c.Serial,
		LimitCCW:     units.Limit{Angle: c.LimitCCW.AngleRad, Pulse: units.Pulse(c.LimitCCW.Pulse)},
		LimitCW:      units.Limit{Angle: c.LimitCW.AngleRad, Pulse: units.Pulse(c.LimitCW.Pulse)},
		OriginOffset: units.Pulse(c.OriginOffset),
	}

	if c.DefaultSpeed != nil || c.DefaultAccel != nil || c.DefaultTorque != nil {
		defaults := coolmuscle.Defaults{
			Speed:  coolmuscle.DefaultSpeed,
			Accel:  coolmuscle.DefaultAccel,
			Torque: coolmuscle.DefaultTorque,
		}
		if c.DefaultSpeed != nil {
			defaults.Speed = units.Pulse(*c.DefaultSpeed)
		}
		if c.DefaultAccel != nil {
			defaults.Accel = units.Pulse(*c.DefaultAccel)
		}
		if c.DefaultTorque != nil {
			defaults.Torque = *c.DefaultTorque
		}
		cfg.Defaults = &defaults
	}

	if c.ReadTimeout != "" {
		cfg.ReadTimeout, _ = time.ParseDuration(c.ReadTimeout)
	}
	if c.Deadline != "" {
		cfg.Deadline, _ = time.ParseDuration(c.Deadline)
	}

	return cfg
}
