// Package session implements the interactive serial session: translating
// terminal input events into device byte sequences, decoding the inbound
// byte stream into displayable text, and the duplex loop that pumps both
// directions concurrently until the exit key or a transport failure ends it.
package session

import (
	"fmt"
	"strings"
	"unicode"
)

// LineEnding selects the byte sequence sent to the device for Enter.
type LineEnding int

const (
	EOLCR LineEnding = iota
	EOLCRLF
	EOLLF
)

// Bytes returns the wire bytes for the line ending.
func (e LineEnding) Bytes() []byte {
	switch e {
	case EOLCRLF:
		return []byte{0x0D, 0x0A}
	case EOLLF:
		return []byte{0x0A}
	default:
		return []byte{0x0D}
	}
}

// String returns the flag spelling of the line ending.
func (e LineEnding) String() string {
	switch e {
	case EOLCRLF:
		return "crlf"
	case EOLLF:
		return "lf"
	default:
		return "cr"
	}
}

// ParseLineEnding parses a flag value into a LineEnding.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(s) {
	case "cr":
		return EOLCR, nil
	case "crlf":
		return EOLCRLF, nil
	case "lf":
		return EOLLF, nil
	default:
		return EOLCR, fmt.Errorf("invalid line ending %q (must be cr, crlf or lf)", s)
	}
}

// Config holds the immutable per-session options. It is created once from the
// resolved command line or profile and read-only for the session's lifetime.
type Config struct {
	// EOL is the byte sequence sent for the Enter key.
	EOL LineEnding
	// ExitChar is the letter of the Control+<letter> exit combination,
	// either 'x' or 'y'.
	ExitChar rune
	// Echo locally displays translated key bytes as they are queued.
	Echo bool
	// DebugTrace replaces verbatim display of inbound text with a hex/ASCII
	// diagnostic representation and enables diagnostic logging.
	DebugTrace bool
}

// DefaultConfig returns the default session options: CR line ending,
// Control-X exit, no echo, no debug trace.
func DefaultConfig() Config {
	return Config{EOL: EOLCR, ExitChar: 'x'}
}

// Validate checks the session options.
func (c Config) Validate() error {
	if c.ExitChar != 'x' && c.ExitChar != 'y' {
		return fmt.Errorf("exit character must be 'x' or 'y', got %q", c.ExitChar)
	}
	switch c.EOL {
	case EOLCR, EOLCRLF, EOLLF:
	default:
		return fmt.Errorf("invalid line ending: %d", c.EOL)
	}
	return nil
}

// ExitSentinel returns the event value whose observation ends the session.
func (c Config) ExitSentinel() Event {
	return RuneEvent(c.ExitChar, ModCtrl)
}

// ExitLabel returns the human-readable name of the exit combination,
// e.g. "Control-X".
func (c Config) ExitLabel() string {
	return fmt.Sprintf("Control-%c", unicode.ToUpper(c.ExitChar))
}
