// Package serial opens serial ports and discovers USB serial devices by
// their attributes.
package serial

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// FlowControl selects the flow control discipline for a connection.
type FlowControl string

const (
	FlowNone     FlowControl = "none"
	FlowSoftware FlowControl = "software"
	FlowHardware FlowControl = "hardware"
)

// Config holds the line parameters for a serial connection.
type Config struct {
	Port        string      `json:"port"`
	BaudRate    int         `json:"baud_rate"`
	DataBits    int         `json:"data_bits"`
	StopBits    int         `json:"stop_bits"`
	Parity      string      `json:"parity"`
	FlowControl FlowControl `json:"flow_control"`
}

// DefaultConfig returns the conventional 115200 8N1 settings.
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		DataBits:    8,
		StopBits:    1,
		Parity:      "none",
		FlowControl: FlowNone,
	}
}

// Validate checks that the line parameters are supported.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port name cannot be empty")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}
	switch c.DataBits {
	case 5, 6, 7, 8:
	default:
		return fmt.Errorf("invalid data bits: %d (must be 5, 6, 7 or 8)", c.DataBits)
	}
	switch c.StopBits {
	case 1, 2:
	default:
		return fmt.Errorf("invalid stop bits: %d (must be 1 or 2)", c.StopBits)
	}
	switch c.Parity {
	case "none", "odd", "even":
	default:
		return fmt.Errorf("invalid parity: %s (must be none, odd or even)", c.Parity)
	}
	switch c.FlowControl {
	case FlowNone, FlowHardware:
	case FlowSoftware:
		return fmt.Errorf("software flow control is not supported")
	default:
		return fmt.Errorf("invalid flow control: %s (must be none, software or hardware)", c.FlowControl)
	}
	return nil
}

// Describe returns a compact human-readable summary of the settings,
// e.g. "/dev/ttyUSB0 @ 115200 8N1".
func (c Config) Describe() string {
	parity := "N"
	switch c.Parity {
	case "odd":
		parity = "O"
	case "even":
		parity = "E"
	}
	return fmt.Sprintf("%s @ %d %d%s%d", c.Port, c.BaudRate, c.DataBits, parity, c.StopBits)
}

// Open validates the configuration and opens the port. With hardware flow
// control the RTS and DTR lines are asserted at open.
func (c Config) Open() (io.ReadWriteCloser, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid serial config: %w", err)
	}

	mode := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		StopBits: convertStopBits(c.StopBits),
		Parity:   convertParity(c.Parity),
	}
	if c.FlowControl == FlowHardware {
		mode.InitialStatusBits = &serial.ModemOutputBits{RTS: true, DTR: true}
	}

	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", c.Port, err)
	}
	return port, nil
}

func convertStopBits(bits int) serial.StopBits {
	if bits == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func convertParity(parity string) serial.Parity {
	switch parity {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}
