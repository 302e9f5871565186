package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"serial-monitor/pkg/config"
	"serial-monitor/pkg/input"
	"serial-monitor/pkg/logging"
	"serial-monitor/pkg/serial"
	"serial-monitor/pkg/session"
)

var (
	baudRate int
	dataBits int
	stopBits int
	parity   string
	flow     string

	eol      string
	exitChar string
	echo     bool
)

// monitorCmd represents the monitor command. It is also what the bare root
// command runs.
var monitorCmd = &cobra.Command{
	Use:   "monitor [port|profile]",
	Short: "Open an interactive session with a serial device",
	Long: `Open an interactive session with a serial device.

Without an argument the device is chosen through the filter flags. An
argument names either a port or a saved profile.

Examples:
  # Monitor the only attached FTDI adapter
  serial-monitor monitor --vid 0403

  # Monitor a port directly at 9600 baud
  serial-monitor monitor /dev/ttyUSB0 -b 9600

  # Monitor using a saved profile
  serial-monitor monitor mydevice`,
	Args:    cobra.MaximumNArgs(1),
	Aliases: []string{"connect", "open"},
	RunE:    runMonitor,
}

// addSessionFlags registers the line-parameter and session-option flags on
// every command that opens or describes a connection.
func addSessionFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&baudRate, "baud", "b", 115200, "baud rate")
	fs.IntVarP(&dataBits, "data", "d", 8, "data bits (5, 6, 7 or 8)")
	fs.IntVarP(&stopBits, "stop", "s", 1, "stop bits (1 or 2)")
	fs.StringVar(&parity, "parity", "none", "parity (none, odd, even)")
	fs.StringVar(&flow, "flow", "none", "flow control (none, hardware)")
	fs.StringVar(&eol, "eol", "cr", "line ending sent for Enter (cr, crlf, lf)")
	fs.StringVar(&exitChar, "exit-char", "x", "letter of the Control+<letter> exit combination (x or y)")
	fs.BoolVar(&echo, "echo", false, "locally echo typed characters")
}

func init() {
	addSessionFlags(monitorCmd.Flags())
	addSessionFlags(rootCmd.Flags())
}

func runMonitor(cmd *cobra.Command, args []string) error {
	serialCfg, sessionCfg, err := resolveTarget(args)
	if err != nil {
		return err
	}
	sessionCfg.DebugTrace = debug

	logger, cleanup, err := sessionLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	port, err := serialCfg.Open()
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Connected to %s\n", serialCfg.Describe())
	fmt.Printf("Press %s to exit\n", sessionCfg.ExitLabel())
	logger.Info("session started",
		zap.String("port", serialCfg.Port),
		zap.Int("baud", serialCfg.BaudRate))

	reader := input.New(os.Stdin, logger)
	if err := reader.Start(); err != nil {
		return err
	}
	defer reader.Stop()

	loop, err := session.NewLoop(sessionCfg, port, reader, os.Stdout, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reason, runErr := loop.Run(ctx)

	// Leave raw mode before anything else writes to the terminal.
	reader.Stop()
	fmt.Printf("\nDisconnected: %s\n", reason)
	logger.Info("session ended", zap.Stringer("reason", reason), zap.Error(runErr))

	switch reason {
	case session.ReasonUserExit, session.ReasonSerialClosed, session.ReasonKeyboardClosed:
		return nil
	default:
		return runErr
	}
}

// resolveTarget turns the optional positional argument, the filter flags and
// the line-parameter flags into the session's configuration. A positional
// argument naming a saved profile wins over the flags; anything else is
// treated as a port name.
func resolveTarget(args []string) (serial.Config, session.Config, error) {
	serialCfg := serial.Config{
		BaudRate:    baudRate,
		DataBits:    dataBits,
		StopBits:    stopBits,
		Parity:      parity,
		FlowControl: serial.FlowControl(flow),
	}

	sessionCfg, err := sessionFromFlags()
	if err != nil {
		return serial.Config{}, session.Config{}, err
	}

	if len(args) == 1 {
		target := args[0]

		if manager, err := profileManager(); err == nil && manager.Exists(target) {
			profile, err := manager.Load(target)
			if err != nil {
				return serial.Config{}, session.Config{}, err
			}
			profileSession, err := profile.Session()
			if err != nil {
				return serial.Config{}, session.Config{}, err
			}
			if verbose {
				fmt.Printf("Using profile '%s' (%s)\n", target, profile.Serial.Describe())
			}
			return profile.Serial, profileSession, nil
		}

		serialCfg.Port = target
		return serialCfg, sessionCfg, serialCfg.Validate()
	}

	device, err := serial.Find(deviceFilter())
	if err != nil {
		return serial.Config{}, session.Config{}, err
	}
	if verbose {
		fmt.Println(device.Description())
	}

	serialCfg.Port = device.Name
	return serialCfg, sessionCfg, serialCfg.Validate()
}

// sessionFromFlags builds the session options from the command line.
func sessionFromFlags() (session.Config, error) {
	cfg := session.DefaultConfig()
	cfg.Echo = echo

	lineEnding, err := session.ParseLineEnding(eol)
	if err != nil {
		return session.Config{}, err
	}
	cfg.EOL = lineEnding

	if len(exitChar) != 1 {
		return session.Config{}, fmt.Errorf("invalid exit character %q", exitChar)
	}
	cfg.ExitChar = rune(exitChar[0])

	return cfg, cfg.Validate()
}

// sessionLogger returns the logger for a raw-mode session. Diagnostics go to
// a file so they cannot corrupt the raw terminal display.
func sessionLogger() (*zap.Logger, func(), error) {
	if !verbose && !debug {
		return zap.NewNop(), func() {}, nil
	}

	dir, err := config.DefaultDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return logging.SessionFile(filepath.Join(dir, "session.log"), debug)
}

// profileManager returns the profile store in the default location.
func profileManager() (*config.FileManager, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	return config.NewFileManager(dir), nil
}
