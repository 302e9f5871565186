package cmd

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "serial-monitor" {
		t.Errorf("rootCmd.Use = %s, want serial-monitor", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short should not be empty")
	}

	subcommands := rootCmd.Commands()
	for _, expected := range []string{"list", "monitor", "config"} {
		found := false
		for _, cmd := range subcommands {
			if cmd.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand '%s' not found", expected)
		}
	}
}

func TestPersistentFilterFlags(t *testing.T) {
	for _, name := range []string{"port", "vid", "pid", "serial", "verbose", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not registered", name)
		}
	}
}

func TestMonitorFlags(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"baud", "115200"},
		{"data", "8"},
		{"stop", "1"},
		{"parity", "none"},
		{"flow", "none"},
		{"eol", "cr"},
		{"exit-char", "x"},
		{"echo", "false"},
	}

	for _, tt := range tests {
		flag := monitorCmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("monitor flag --%s not registered", tt.name)
			continue
		}
		if flag.DefValue != tt.def {
			t.Errorf("monitor flag --%s default = %s, want %s", tt.name, flag.DefValue, tt.def)
		}
	}
}

func TestMonitorAliases(t *testing.T) {
	want := map[string]bool{"connect": true, "open": true}
	for _, alias := range monitorCmd.Aliases {
		delete(want, alias)
	}
	for missing := range want {
		t.Errorf("monitor alias '%s' not registered", missing)
	}
}

func TestConfigSubcommands(t *testing.T) {
	for _, expected := range []string{"save", "show", "list", "delete"} {
		found := false
		for _, cmd := range configCmd.Commands() {
			if cmd.Name() == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected config subcommand '%s' not found", expected)
		}
	}
}

func TestConsoleLoggerWiredByPreRun(t *testing.T) {
	origDebug, origLogger := debug, cliLogger
	defer func() { debug, cliLogger = origDebug, origLogger }()

	debug = true
	rootCmd.PersistentPreRun(rootCmd, nil)
	if cliLogger == nil {
		t.Fatal("PersistentPreRun left cliLogger nil")
	}
	if !cliLogger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("--debug did not enable debug level on the console logger")
	}

	debug = false
	rootCmd.PersistentPreRun(rootCmd, nil)
	if cliLogger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("console logger enables debug level without --debug")
	}
}

func TestDeviceFilterFromFlags(t *testing.T) {
	origPort, origVID := filterPort, filterVID
	defer func() { filterPort, filterVID = origPort, origVID }()

	filterPort = "ttyUSB"
	filterVID = "0403"
	f := deviceFilter()
	if f.Port != "ttyUSB" || f.VID != "0403" {
		t.Errorf("deviceFilter() = %+v", f)
	}
}

func TestSessionFromFlags(t *testing.T) {
	origEOL, origExit, origEcho := eol, exitChar, echo
	defer func() { eol, exitChar, echo = origEOL, origExit, origEcho }()

	eol = "crlf"
	exitChar = "y"
	echo = true

	cfg, err := sessionFromFlags()
	if err != nil {
		t.Fatalf("sessionFromFlags() error = %v", err)
	}
	if cfg.ExitChar != 'y' || !cfg.Echo {
		t.Errorf("sessionFromFlags() = %+v", cfg)
	}

	exitChar = "xy"
	if _, err := sessionFromFlags(); err == nil || !strings.Contains(err.Error(), "exit character") {
		t.Errorf("sessionFromFlags() with bad exit char error = %v", err)
	}
}
