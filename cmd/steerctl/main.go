// Command steerctl drives the Cool Muscle steering actuator from the
// command line: move to an angle, query the current position, or manage
// the emergency stop.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/banshee-data/steering/internal/config"
	"github.com/banshee-data/steering/internal/coolmuscle"
	"github.com/banshee-data/steering/internal/journal"
)

var (
	configPath  = flag.String("config", "steering.json", "Path to the controller config JSON")
	portFlag    = flag.String("port", "", "Serial port to use (overrides config)")
	baudFlag    = flag.Int("baud", 0, "Baud rate (overrides config)")
	journalPath = flag.String("journal", "", "Record the session to this sqlite file (overrides config)")

	angle    = flag.Float64("angle", math.NaN(), "Target angle in radians (positive is CCW)")
	velocity = flag.Float64("velocity", 0, "Angular velocity in rad/s, used with -angle")
	accel    = flag.Float64("accel", 0, "Angular acceleration in rad/s^2, used with -angle and -velocity")

	query     = flag.Bool("query", false, "Query and print the current position")
	emergency = flag.Bool("emergency", false, "Send the emergency stop command and exit")
	release   = flag.Bool("release", false, "Release the emergency stop (leaves the actuator disabled)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctlCfg := cfg.ControllerConfig()
	if *portFlag != "" {
		ctlCfg.Port = *portFlag
	}
	if *baudFlag > 0 {
		ctlCfg.Serial.BaudRate = *baudFlag
	}

	journalFile := cfg.Journal
	if *journalPath != "" {
		journalFile = *journalPath
	}
	if journalFile != "" {
		j, err := journal.Open(journalFile)
		if err != nil {
			log.Fatalf("failed to open journal %s: %v", journalFile, err)
		}
		defer j.Close()
		log.Printf("Recording session %s to %s", j.SessionID(), journalFile)
		ctlCfg.Recorder = j
	}

	ctl, err := coolmuscle.New(ctlCfg)
	if err != nil {
		log.Fatalf("failed to create controller: %v", err)
	}

	if err := ctl.Connect(); err != nil {
		log.Fatalf("failed to connect to %s: %v", ctlCfg.Port, err)
	}
	defer ctl.Close()

	if err := run(ctl); err != nil {
		ctl.Close()
		log.Fatalf("steerctl: %v", err)
	}
}

func run(ctl *coolmuscle.Controller) error {
	// Emergency stop takes priority over everything else and is valid
	// straight after connecting.
	if *emergency {
		if err := ctl.Emergency(); err != nil {
			return err
		}
		log.Printf("Emergency stop sent; actuator is %s", ctl.State())
		return nil
	}

	if *release {
		// Re-assert the stop first so the release is valid regardless
		// of what a previous session left behind.
		if err := ctl.Emergency(); err != nil {
			return err
		}
		if err := ctl.ReleaseEmergency(); err != nil {
			return err
		}
		log.Printf("Emergency stop released; actuator is %s and must be re-enabled before motion", ctl.State())
		return nil
	}

	if err := ctl.Init(); err != nil {
		return err
	}

	if !math.IsNaN(*angle) {
		if err := ctl.On(); err != nil {
			return err
		}

		var err error
		switch {
		case *velocity > 0 && *accel > 0:
			err = ctl.Set(*angle, *velocity, *accel)
		case *velocity > 0:
			err = ctl.SetWithVelocity(*angle, *velocity)
		default:
			err = ctl.SetAngle(*angle)
		}
		if err != nil {
			return err
		}
		log.Printf("Commanded angle %.4f rad", *angle)
	}

	if *query {
		pulse, err := ctl.PulseCount()
		if err != nil {
			return err
		}
		rad := ctl.Calibration().PulseToAngle(pulse)
		log.Printf("Position: %d pulses (%.4f rad)", pulse, rad)
	}

	if math.IsNaN(*angle) && !*query {
		flag.Usage()
		os.Exit(2)
	}

	return nil
}
