// Package journal persists the command and telemetry stream of one
// controller session to sqlite, for post-drive inspection of what was
// sent to the actuator and what it reported back.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Journal records commands and pulse readings for a single session.
type Journal struct {
	*sql.DB
	sessionID string
}

// Open opens (creating if necessary) the journal database at path and
// starts a new session.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS commands (
			session_id        TEXT,
			command           TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE TABLE IF NOT EXISTS readings (
			session_id        TEXT,
			pulse             BIGINT,
			angle_rad         DOUBLE,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{DB: db, sessionID: uuid.NewString()}
	if _, err := db.Exec("INSERT INTO sessions (session_id) VALUES (?)", j.sessionID); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// SessionID returns the identifier of the current session.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// RecordCommand stores one command line sent to the actuator.
func (j *Journal) RecordCommand(line string) error {
	_, err := j.Exec("INSERT INTO commands (session_id, command) VALUES (?, ?)", j.sessionID, line)
	return err
}

// RecordPulse stores one parsed position reading.
func (j *Journal) RecordPulse(pulse int64, angle float64) error {
	_, err := j.Exec("INSERT INTO readings (session_id, pulse, angle_rad) VALUES (?, ?, ?)", j.sessionID, pulse, angle)
	return err
}

// Reading is one persisted position observation.
type Reading struct {
	Pulse     int64
	AngleRad  float64
	Timestamp time.Time
}

// SessionReadings returns the readings recorded in the current session,
// oldest first.
func (j *Journal) SessionReadings() ([]Reading, error) {
	rows, err := j.Query(
		"SELECT pulse, angle_rad, timestamp FROM readings WHERE session_id = ? ORDER BY timestamp, rowid",
		j.sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var r Reading
		if err := rows.Scan(&r.Pulse, &r.AngleRad, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// SessionCommands returns the command lines recorded in the current
// session, oldest first.
func (j *Journal) SessionCommands() ([]string, error) {
	rows, err := j.Query(
		"SELECT command FROM commands WHERE session_id = ? ORDER BY timestamp, rowid",
		j.sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}
