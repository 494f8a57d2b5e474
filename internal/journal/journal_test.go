package journal

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesSession(t *testing.T) {
	j := openTestJournal(t)

	if j.SessionID() == "" {
		t.Fatal("SessionID() is empty")
	}

	var count int
	if err := j.QueryRow("SELECT COUNT(*) FROM sessions WHERE session_id = ?", j.SessionID()).Scan(&count); err != nil {
		t.Fatalf("query sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("session rows = %d, want 1", count)
	}
}

func TestRecordCommand(t *testing.T) {
	j := openTestJournal(t)

	for _, cmd := range []string{"K23.1=0", "?96", "P=5000", "^"} {
		if err := j.RecordCommand(cmd); err != nil {
			t.Fatalf("RecordCommand(%q) error = %v", cmd, err)
		}
	}

	got, err := j.SessionCommands()
	if err != nil {
		t.Fatalf("SessionCommands() error = %v", err)
	}
	want := []string{"K23.1=0", "?96", "P=5000", "^"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SessionCommands() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordPulse(t *testing.T) {
	j := openTestJournal(t)

	if err := j.RecordPulse(5000, 0.6); err != nil {
		t.Fatalf("RecordPulse() error = %v", err)
	}
	if err := j.RecordPulse(-8000, -1.0); err != nil {
		t.Fatalf("RecordPulse() error = %v", err)
	}

	got, err := j.SessionReadings()
	if err != nil {
		t.Fatalf("SessionReadings() error = %v", err)
	}

	want := []Reading{
		{Pulse: 5000, AngleRad: 0.6},
		{Pulse: -8000, AngleRad: -1.0},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Reading{}, "Timestamp")); diff != "" {
		t.Errorf("SessionReadings() mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.RecordCommand("*"); err != nil {
		t.Fatalf("RecordCommand() error = %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	if second.SessionID() == first.SessionID() {
		t.Error("reopening must start a new session")
	}

	got, err := second.SessionCommands()
	if err != nil {
		t.Fatalf("SessionCommands() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("new session sees %d commands from the old session", len(got))
	}
}
