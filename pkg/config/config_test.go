package config

import (
	"strings"
	"testing"

	"serial-monitor/pkg/serial"
	"serial-monitor/pkg/session"
)

func testProfile(name string) Profile {
	cfg := serial.DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	return Profile{
		Name:     name,
		Serial:   cfg,
		EOL:      "crlf",
		ExitChar: "y",
		Echo:     true,
	}
}

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	return NewFileManager(t.TempDir())
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestManager(t)

	if err := m.Save(testProfile("device1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := m.Load("device1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Serial.Port != "/dev/ttyUSB0" || got.EOL != "crlf" || got.ExitChar != "y" || !got.Echo {
		t.Errorf("Load() = %+v, want saved profile back", got)
	}
	if got.CreatedAt.IsZero() || got.LastUsedAt.IsZero() {
		t.Error("Load() returned zero timestamps")
	}
}

func TestSavePreservesCreationTime(t *testing.T) {
	m := newTestManager(t)

	if err := m.Save(testProfile("device1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	first, err := m.Load("device1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	updated := testProfile("device1")
	updated.Serial.BaudRate = 9600
	if err := m.Save(updated); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := m.Load("device1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Serial.BaudRate != 9600 {
		t.Errorf("baud rate = %d, want updated value", got.Serial.BaudRate)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v -> %v", first.CreatedAt, got.CreatedAt)
	}
}

func TestLoadMissing(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Load("ghost"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Load(missing) error = %v, want not found", err)
	}
	if _, err := m.Load(""); err == nil {
		t.Error("Load(\"\") did not fail")
	}
}

func TestListSorted(t *testing.T) {
	m := newTestManager(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := m.Save(testProfile(name)); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	profiles, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("List() returned %d profiles, want 3", len(profiles))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if profiles[i].Name != want {
			t.Errorf("profiles[%d] = %s, want %s", i, profiles[i].Name, want)
		}
	}
}

func TestDeleteAndExists(t *testing.T) {
	m := newTestManager(t)

	if m.Exists("device1") {
		t.Error("Exists() true before save")
	}
	if err := m.Save(testProfile("device1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !m.Exists("device1") {
		t.Error("Exists() false after save")
	}

	if err := m.Delete("device1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.Exists("device1") {
		t.Error("Exists() true after delete")
	}
	if err := m.Delete("device1"); err == nil {
		t.Error("second Delete() did not fail")
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"valid", func(p *Profile) {}, false},
		{"empty name", func(p *Profile) { p.Name = "" }, true},
		{"bad serial", func(p *Profile) { p.Serial.DataBits = 9 }, true},
		{"bad eol", func(p *Profile) { p.EOL = "newline" }, true},
		{"bad exit char", func(p *Profile) { p.ExitChar = "q" }, true},
		{"empty session fields use defaults", func(p *Profile) { p.EOL = ""; p.ExitChar = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile("device1")
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfileSession(t *testing.T) {
	p := testProfile("device1")

	cfg, err := p.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if cfg.EOL != session.EOLCRLF {
		t.Errorf("EOL = %v, want crlf", cfg.EOL)
	}
	if cfg.ExitChar != 'y' {
		t.Errorf("ExitChar = %c, want y", cfg.ExitChar)
	}
	if !cfg.Echo {
		t.Error("Echo not carried over")
	}

	defaults := Profile{Name: "d", Serial: p.Serial}
	cfg, err = defaults.Session()
	if err != nil {
		t.Fatalf("Session() with defaults error = %v", err)
	}
	if cfg.EOL != session.EOLCR || cfg.ExitChar != 'x' || cfg.Echo {
		t.Errorf("default Session() = %+v", cfg)
	}
}
