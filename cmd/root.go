// Package cmd implements the serial-monitor command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"serial-monitor/pkg/logging"
	"serial-monitor/pkg/serial"
)

var (
	// Persistent flags shared by all subcommands.
	verbose bool
	debug   bool

	// Device filter flags. Empty values match everything.
	filterPort   string
	filterVID    string
	filterPID    string
	filterSerial string

	// cliLogger is the stderr logger for commands that do not hold the
	// terminal in raw mode. Sessions log to a file instead (sessionLogger).
	cliLogger = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:               "serial-monitor",
		Short:             "Connect to a serial device and interact with it",
		Version:           "1.0.0",
		RunE:              runMonitor,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cliLogger = logging.Console(debug)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute runs the command line. A missing device exits with status 2 so
// scripts can tell "nothing matched" from real failures, which exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, serial.ErrNoMatchingDevice) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug diagnostics")

	rootCmd.PersistentFlags().StringVarP(&filterPort, "port", "p", "", "filter on port name")
	rootCmd.PersistentFlags().StringVar(&filterVID, "vid", "", "filter on USB vendor ID")
	rootCmd.PersistentFlags().StringVar(&filterPID, "pid", "", "filter on USB product ID")
	rootCmd.PersistentFlags().StringVar(&filterSerial, "serial", "", "filter on USB serial number")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(configCmd)
}

// deviceFilter assembles the filter from the persistent flags.
func deviceFilter() serial.Filter {
	return serial.Filter{
		Port:   filterPort,
		VID:    filterVID,
		PID:    filterPID,
		Serial: filterSerial,
	}
}
