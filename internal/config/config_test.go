package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/steering/internal/coolmuscle"
	"github.com/banshee-data/steering/internal/units"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "steering.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `{
	"port": "/dev/ttyUSB0",
	"serial": {"baud_rate": 38400},
	"limit_ccw": {"angle_rad": 1.2, "pulse": 10000},
	"limit_cw": {"angle_rad": -1.0, "pulse": -8000},
	"origin_offset": 1500,
	"default_speed": 60,
	"read_timeout": "250ms",
	"deadline": "2s"
}`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LimitCCW.AngleRad != 1.2 || cfg.LimitCCW.Pulse != 10000 {
		t.Errorf("LimitCCW = %+v", cfg.LimitCCW)
	}
	if cfg.OriginOffset != 1500 {
		t.Errorf("OriginOffset = %d", cfg.OriginOffset)
	}
	if cfg.DefaultSpeed == nil || *cfg.DefaultSpeed != 60 {
		t.Errorf("DefaultSpeed = %v", cfg.DefaultSpeed)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"missing port", `{"limit_ccw": {"angle_rad": 1.2, "pulse": 10000}, "limit_cw": {"angle_rad": -1.0, "pulse": -8000}}`},
		{"zero limit angle", `{"port": "/dev/ttyUSB0", "limit_ccw": {"angle_rad": 0, "pulse": 10000}, "limit_cw": {"angle_rad": -1.0, "pulse": -8000}}`},
		{"bad duration", `{"port": "/dev/ttyUSB0", "limit_ccw": {"angle_rad": 1.2, "pulse": 10000}, "limit_cw": {"angle_rad": -1.0, "pulse": -8000}, "deadline": "soon"}`},
		{"bad serial options", `{"port": "/dev/ttyUSB0", "serial": {"data_bits": 3}, "limit_ccw": {"angle_rad": 1.2, "pulse": 10000}, "limit_cw": {"angle_rad": -1.0, "pulse": -8000}}`},
		{"not json", `port: /dev/ttyUSB0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.contents)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_RequiresJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steering.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a non-.json path")
	}
}

func TestControllerConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := cfg.ControllerConfig()
	if got.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q", got.Port)
	}
	if got.LimitCCW != (units.Limit{Angle: 1.2, Pulse: 10000}) {
		t.Errorf("LimitCCW = %+v", got.LimitCCW)
	}
	if got.OriginOffset != 1500 {
		t.Errorf("OriginOffset = %d", got.OriginOffset)
	}
	if got.ReadTimeout != 250*time.Millisecond {
		t.Errorf("ReadTimeout = %v", got.ReadTimeout)
	}
	if got.Deadline != 2*time.Second {
		t.Errorf("Deadline = %v", got.Deadline)
	}

	// only the speed default was overridden; the rest keep the Cool
	// Muscle defaults
	if got.Defaults == nil {
		t.Fatal("Defaults = nil")
	}
	if got.Defaults.Speed != 60 {
		t.Errorf("Defaults.Speed = %d, want 60", got.Defaults.Speed)
	}
	if got.Defaults.Accel != coolmuscle.DefaultAccel {
		t.Errorf("Defaults.Accel = %d, want %d", got.Defaults.Accel, coolmuscle.DefaultAccel)
	}
	if got.Defaults.Torque != coolmuscle.DefaultTorque {
		t.Errorf("Defaults.Torque = %d, want %d", got.Defaults.Torque, coolmuscle.DefaultTorque)
	}

	// the resulting config must construct a working controller
	if _, err := coolmuscle.New(got); err != nil {
		t.Errorf("New(ControllerConfig()) error = %v", err)
	}
}
