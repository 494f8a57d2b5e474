package serialport

import (
	"testing"

	"go.bug.st/serial"
)

func TestOptions_Normalize_Defaults(t *testing.T) {
	// Zero-value options should get the Cool Muscle defaults applied
	opts := Options{}
	got, err := opts.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.BaudRate != 38400 {
		t.Errorf("BaudRate = %d, want 38400", got.BaudRate)
	}
	if got.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", got.DataBits)
	}
	if got.StopBits != 1 {
		t.Errorf("StopBits = %d, want 1", got.StopBits)
	}
	if got.Parity != "N" {
		t.Errorf("Parity = %q, want %q", got.Parity, "N")
	}
}

func TestOptions_Normalize_ExplicitValues(t *testing.T) {
	opts := Options{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "E"}
	got, err := opts.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", got.BaudRate)
	}
	if got.DataBits != 7 {
		t.Errorf("DataBits = %d, want 7", got.DataBits)
	}
	if got.StopBits != 2 {
		t.Errorf("StopBits = %d, want 2", got.StopBits)
	}
	if got.Parity != "E" {
		t.Errorf("Parity = %q, want %q", got.Parity, "E")
	}
}

func TestOptions_Normalize_ParitySpellings(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "N"},
		{"none", "N"},
		{"n", "N"},
		{"even", "E"},
		{"E", "E"},
		{"odd", "O"},
		{" o ", "O"},
	}

	for _, tt := range tests {
		got, err := Options{Parity: tt.in}.Normalize()
		if err != nil {
			t.Fatalf("Normalize(parity %q) error = %v", tt.in, err)
		}
		if got.Parity != tt.want {
			t.Errorf("Normalize(parity %q) = %q, want %q", tt.in, got.Parity, tt.want)
		}
	}
}

func TestOptions_Normalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"bad data bits", Options{DataBits: 9}},
		{"bad stop bits", Options{StopBits: 3}},
		{"bad parity", Options{Parity: "M"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.opts.Normalize(); err == nil {
				t.Errorf("Normalize(%+v) expected error, got nil", tt.opts)
			}
		})
	}
}

func TestOptions_Equal(t *testing.T) {
	a := Options{}
	b := Options{BaudRate: 38400, DataBits: 8, StopBits: 1, Parity: "none"}
	if !a.Equal(b) {
		t.Errorf("Equal(%+v, %+v) = false, want true after normalization", a, b)
	}

	c := Options{BaudRate: 9600}
	if a.Equal(c) {
		t.Errorf("Equal(%+v, %+v) = true, want false", a, c)
	}
}

func TestOptions_SerialMode(t *testing.T) {
	mode, err := Options{BaudRate: 115200, Parity: "odd", StopBits: 2}.SerialMode()
	if err != nil {
		t.Fatalf("SerialMode() error = %v", err)
	}
	if mode.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", mode.BaudRate)
	}
	if mode.Parity != serial.OddParity {
		t.Errorf("Parity = %v, want OddParity", mode.Parity)
	}
	if mode.StopBits != serial.StopBits(2) {
		t.Errorf("StopBits = %v, want 2", mode.StopBits)
	}
	if mode.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", mode.DataBits)
	}
}
