package session

import (
	"strings"
	"unicode/utf8"
)

// pendingMax bounds the bytes buffered while waiting for the rest of a
// multi-byte UTF-8 sequence. No valid encoding exceeds four bytes, so a full
// buffer is proof of damage.
const pendingMax = utf8.UTFMax

// Decoder converts a serial byte stream into displayable text. Multi-byte
// UTF-8 sequences split across reads are buffered until complete; bytes that
// can never form a valid sequence become a single U+FFFD replacement
// character per damaged run, so noise stays contained while the surrounding
// text is preserved. The zero value is ready to use.
type Decoder struct {
	pending [pendingMax]byte
	n       int
}

// Pending reports how many bytes are buffered awaiting sequence completion.
func (d *Decoder) Pending() int {
	return d.n
}

// Decode consumes chunk and returns the text it yields. ok is false when the
// chunk produced no output, which happens when every byte went into the
// pending buffer.
func (d *Decoder) Decode(chunk []byte) (text string, ok bool) {
	var out strings.Builder

	src := chunk
	for len(src) > 0 {
		if valid := validPrefixLen(src); valid > 0 {
			// A clean run. Anything still pending can no longer be
			// completed, so it collapses to one replacement character.
			if d.n > 0 {
				out.WriteRune(utf8.RuneError)
				d.n = 0
			}
			out.Write(src[:valid])
			src = src[valid:]
			continue
		}

		// The head byte is damaged or mid-sequence. Buffer it until the
		// sequence completes, proves impossible, or the buffer fills.
		d.pending[d.n] = src[0]
		d.n++
		src = src[1:]

		if utf8.Valid(d.pending[:d.n]) {
			out.Write(d.pending[:d.n])
			d.n = 0
		} else if d.n == pendingMax {
			out.WriteRune(utf8.RuneError)
			d.n = 0
		}
	}

	if out.Len() == 0 {
		return "", false
	}
	return out.String(), true
}

// Flush drains the pending buffer, converting any incomplete tail into a
// single replacement character. Call it when the stream ends.
func (d *Decoder) Flush() (text string, ok bool) {
	if d.n == 0 {
		return "", false
	}
	d.n = 0
	return string(utf8.RuneError), true
}

// validPrefixLen returns the length of the longest prefix of b that is a
// whole number of valid UTF-8 sequences. An incomplete trailing sequence is
// not part of the prefix.
func validPrefixLen(b []byte) int {
	n := 0
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		n += size
	}
	return n
}
