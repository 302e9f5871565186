// Package dump formats byte sequences for diagnostic display: two-digit hex
// for every byte followed by readable names for the control bytes.
package dump

import (
	"fmt"
	"strings"
)

// Control bytes are named by their Control-key spelling, except ESC.
const ctrlLetters = "@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_"

// String renders b as hex bytes followed by the names of any control bytes,
// e.g. []byte{0x1b, 0x5b, 0x44} -> "1b 5b 44  ESC".
func String(b []byte) string {
	var hex, names strings.Builder

	for _, c := range b {
		fmt.Fprintf(&hex, "%02x ", c)

		if c < 0x20 {
			if names.Len() > 0 {
				names.WriteByte(' ')
			}
			if c == 0x1b {
				names.WriteString("ESC")
			} else {
				names.WriteString("Ctrl-")
				names.WriteByte(ctrlLetters[c])
			}
		}
	}

	return hex.String() + " " + names.String()
}
