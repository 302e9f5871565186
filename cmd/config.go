package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"serial-monitor/pkg/config"
	"serial-monitor/pkg/serial"
)

var profilePort string

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved connection profiles",
	Long: `Manage saved connection profiles.

A profile bundles a port, its line parameters and the session options so a
frequently used device can be monitored by name.`,
}

var saveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a connection profile",
	Long: `Save the line parameters and session options as a named profile.

Example:
  serial-monitor config save mydevice --profile-port /dev/ttyUSB0 -b 9600 --eol crlf`,
	Args: cobra.ExactArgs(1),
	RunE: runSaveProfile,
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowProfile,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE:  runListProfiles,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Short:   "Delete a saved profile",
	Aliases: []string{"rm", "remove"},
	Args:    cobra.ExactArgs(1),
	RunE:    runDeleteProfile,
}

func init() {
	addSessionFlags(saveCmd.Flags())
	saveCmd.Flags().StringVar(&profilePort, "profile-port", "", "port name to store in the profile")
	saveCmd.MarkFlagRequired("profile-port")

	configCmd.AddCommand(saveCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(listProfilesCmd)
	configCmd.AddCommand(deleteCmd)
}

func runSaveProfile(cmd *cobra.Command, args []string) error {
	manager, err := profileManager()
	if err != nil {
		return err
	}

	profile := config.Profile{
		Name: args[0],
		Serial: serial.Config{
			Port:        profilePort,
			BaudRate:    baudRate,
			DataBits:    dataBits,
			StopBits:    stopBits,
			Parity:      parity,
			FlowControl: serial.FlowControl(flow),
		},
		EOL:      eol,
		ExitChar: exitChar,
		Echo:     echo,
	}

	if err := manager.Save(profile); err != nil {
		return err
	}
	cliLogger.Debug("profile saved", zap.String("name", profile.Name))
	fmt.Printf("Profile '%s' saved (%s)\n", profile.Name, profile.Serial.Describe())
	return nil
}

func runShowProfile(cmd *cobra.Command, args []string) error {
	manager, err := profileManager()
	if err != nil {
		return err
	}

	profile, err := manager.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Profile:      %s\n", profile.Name)
	fmt.Printf("Port:         %s\n", profile.Serial.Port)
	fmt.Printf("Baud rate:    %d\n", profile.Serial.BaudRate)
	fmt.Printf("Data bits:    %d\n", profile.Serial.DataBits)
	fmt.Printf("Stop bits:    %d\n", profile.Serial.StopBits)
	fmt.Printf("Parity:       %s\n", profile.Serial.Parity)
	fmt.Printf("Flow control: %s\n", profile.Serial.FlowControl)
	fmt.Printf("Line ending:  %s\n", profile.EOL)
	fmt.Printf("Exit char:    %s\n", profile.ExitChar)
	fmt.Printf("Echo:         %t\n", profile.Echo)
	fmt.Printf("Created:      %s\n", profile.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Last used:    %s\n", profile.LastUsedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runListProfiles(cmd *cobra.Command, args []string) error {
	manager, err := profileManager()
	if err != nil {
		return err
	}

	profiles, err := manager.List()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles saved.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPORT\tBAUD\tLINE ENDING\tLAST USED")
	for _, p := range profiles {
		lastUsed := "never"
		if !p.LastUsedAt.IsZero() {
			lastUsed = p.LastUsedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			p.Name, p.Serial.Port, p.Serial.BaudRate, p.EOL, lastUsed)
	}
	return w.Flush()
}

func runDeleteProfile(cmd *cobra.Command, args []string) error {
	manager, err := profileManager()
	if err != nil {
		return err
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	cliLogger.Debug("profile deleted", zap.String("name", args[0]))
	fmt.Printf("Profile '%s' deleted\n", args[0])
	return nil
}
