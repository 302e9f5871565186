package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"serial-monitor/pkg/serial"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List USB serial devices",
	Long: `List the USB serial devices attached to the system.

The persistent filter flags narrow the list, e.g.:

  # All FTDI devices
  serial-monitor list --vid 0403

  # Devices whose port name contains ttyACM
  serial-monitor list -p ttyACM`,
	Aliases: []string{"ls", "ports"},
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	filter := deviceFilter()
	cliLogger.Debug("discovering devices",
		zap.String("port", filter.Port),
		zap.String("vid", filter.VID),
		zap.String("pid", filter.PID),
		zap.String("serial", filter.Serial))

	devices, err := serial.Discover(filter)
	if err != nil {
		return err
	}
	cliLogger.Debug("discovery finished", zap.Int("matched", len(devices)))

	for _, d := range devices {
		fmt.Println(d.Description())
	}
	return nil
}
