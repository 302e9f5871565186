package serial

import (
	"errors"
	"fmt"
	"strings"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
	"go.bug.st/serial/enumerator"
)

// ErrNoMatchingDevice is returned when discovery finds no USB serial device
// matching the filter. Callers distinguish it from I/O failures to pick the
// process exit status.
var ErrNoMatchingDevice = errors.New("no matching serial device found")

// Filter selects USB serial devices by attribute. Empty fields match
// everything. Patterns may use '*' and '?' wildcards; a pattern without
// wildcards matches as a substring.
type Filter struct {
	// Port matches the port name, e.g. "ttyUSB*".
	Port string
	// VID matches the 4-digit lowercase hex USB vendor ID.
	VID string
	// PID matches the 4-digit lowercase hex USB product ID.
	PID string
	// Serial matches the USB serial number.
	Serial string
}

// DeviceInfo describes a discovered USB serial device.
type DeviceInfo struct {
	// Name is the port name used to open the device.
	Name string
	// VID and PID are the USB IDs as 4-digit lowercase hex.
	VID string
	PID string
	// Serial is the USB serial number, empty when the device reports none.
	Serial string
}

// Description returns the device in the list-command format,
// e.g. "USB Serial Device 0403:6001 with serial 'A5002Gqk' @/dev/ttyUSB0".
func (d DeviceInfo) Description() string {
	out := fmt.Sprintf("USB Serial Device %s:%s", d.VID, d.PID)
	if d.Serial != "" {
		out += fmt.Sprintf(" with serial '%s'", d.Serial)
	}
	return out + " @" + d.Name
}

// matchAttr reports whether value matches pattern. An empty pattern matches
// anything; a pattern without wildcard characters is treated as if it had
// '*' at each end.
func matchAttr(value, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		pattern = "*" + pattern + "*"
	}
	return wildcard.Match(pattern, value)
}

// matchOptAttr is matchAttr for attributes a device may not report: a device
// without the attribute never matches a non-empty pattern.
func matchOptAttr(value, pattern string) bool {
	if pattern == "" {
		return true
	}
	if value == "" {
		return false
	}
	return matchAttr(value, pattern)
}

// matches reports whether the port satisfies every filter attribute.
func (f Filter) matches(p *enumerator.PortDetails) bool {
	return matchAttr(p.Name, f.Port) &&
		matchAttr(strings.ToLower(p.VID), f.VID) &&
		matchAttr(strings.ToLower(p.PID), f.PID) &&
		matchOptAttr(p.SerialNumber, f.Serial)
}

// Discover enumerates USB serial devices matching the filter. It returns
// ErrNoMatchingDevice when none match; enumerating a machine with no serial
// ports at all is that case, not a failure.
func Discover(filter Filter) ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var found []DeviceInfo
	for _, p := range ports {
		if !p.IsUSB || !filter.matches(p) {
			continue
		}
		found = append(found, DeviceInfo{
			Name:   p.Name,
			VID:    strings.ToLower(p.VID),
			PID:    strings.ToLower(p.PID),
			Serial: p.SerialNumber,
		})
	}

	if len(found) == 0 {
		return nil, ErrNoMatchingDevice
	}
	return found, nil
}

// Find returns the single device matching the filter. With several matches
// the first is chosen, in enumeration order.
func Find(filter Filter) (DeviceInfo, error) {
	devices, err := Discover(filter)
	if err != nil {
		return DeviceInfo{}, err
	}
	return devices[0], nil
}
