// Package input turns a raw terminal byte stream into key events. It owns the
// terminal's raw mode for its lifetime and parses control bytes, escape
// sequences and multi-byte UTF-8 characters into a typed event stream.
package input

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/term"

	"serial-monitor/pkg/dump"
	"serial-monitor/pkg/session"
)

// escTimeout is how long a lone ESC byte waits for sequence continuation
// before it is reported as the Escape key itself.
const escTimeout = 50 * time.Millisecond

// maxSeqLen caps collected escape sequences. Anything longer is junk.
const maxSeqLen = 8

// escBindings maps the bytes following ESC to named keys. Both the CSI and
// the SS3 spellings terminals emit for cursor keys are covered.
var escBindings = map[string]session.KeyCode{
	"[A": session.KeyUp,
	"[B": session.KeyDown,
	"[C": session.KeyRight,
	"[D": session.KeyLeft,
	"[H": session.KeyHome,
	"[F": session.KeyEnd,
	"OA": session.KeyUp,
	"OB": session.KeyDown,
	"OC": session.KeyRight,
	"OD": session.KeyLeft,
	"OH": session.KeyHome,
	"OF": session.KeyEnd,
	"[1~": session.KeyHome,
	"[2~": session.KeyInsert,
	"[3~": session.KeyDelete,
	"[4~": session.KeyEnd,
}

// Reader reads terminal input and delivers parsed key events. Create one
// with New, call Start to begin delivery, and always call Stop to restore
// the terminal.
type Reader struct {
	src    io.Reader
	logger *zap.Logger

	events chan session.Event
	raw    chan byte
	stop   chan struct{}

	restore func()

	// err is written once before the raw channel closes, which in turn
	// precedes the events channel closing, so readers after that see it.
	err error
}

// New returns a reader over src. If src is a terminal file descriptor,
// Start will switch it to raw mode. logger may be nil.
func New(src io.Reader, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		src:    src,
		logger: logger,
		events: make(chan session.Event, 16),
		raw:    make(chan byte, 64),
		stop:   make(chan struct{}),
	}
}

// Events returns the event channel. It closes when input ends; consult Err
// afterwards for the cause.
func (r *Reader) Events() <-chan session.Event {
	return r.events
}

// Err reports why the event channel closed. It is valid only after Events'
// channel has closed; nil means a clean end of input.
func (r *Reader) Err() error {
	return r.err
}

// Start switches the source terminal to raw mode when possible and begins
// delivering events.
func (r *Reader) Start() error {
	if f, ok := r.src.(interface{ Fd() uintptr }); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			state, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("entering raw mode: %w", err)
			}
			r.restore = func() { term.Restore(fd, state) }
			r.logger.Debug("terminal switched to raw mode")
		}
	}

	go r.readLoop()
	go r.processLoop()
	return nil
}

// Stop restores the terminal and stops event delivery. It is safe to call
// more than once and after the event channel has already closed.
func (r *Reader) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	if r.restore != nil {
		r.restore()
		r.restore = nil
		r.logger.Debug("terminal mode restored")
	}
}

// readLoop moves bytes from the source to the raw channel.
func (r *Reader) readLoop() {
	defer close(r.raw)

	buf := make([]byte, 64)
	for {
		n, err := r.src.Read(buf)
		for _, b := range buf[:n] {
			select {
			case r.raw <- b:
			case <-r.stop:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				r.err = err
			}
			return
		}
	}
}

// processLoop parses raw bytes into events.
func (r *Reader) processLoop() {
	defer close(r.events)

	for {
		b, ok := r.next()
		if !ok {
			return
		}

		switch {
		case b == 0x1B:
			r.escape()
		case b >= utf8.RuneSelf:
			r.multibyte(b)
		default:
			r.emit(controlEvent(b))
		}
	}
}

// next blocks for the next raw byte.
func (r *Reader) next() (byte, bool) {
	select {
	case b, ok := <-r.raw:
		return b, ok
	case <-r.stop:
		return 0, false
	}
}

// nextWithin waits for a raw byte for at most d. timeout is true when no
// byte arrived in time; ok is false when the stream ended.
func (r *Reader) nextWithin(d time.Duration) (b byte, timeout, ok bool) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case b, ok := <-r.raw:
		return b, false, ok
	case <-t.C:
		return 0, true, true
	case <-r.stop:
		return 0, false, false
	}
}

func (r *Reader) emit(ev session.Event) {
	select {
	case r.events <- ev:
	case <-r.stop:
	}
}

// escape handles input after an ESC byte: a lone Escape press, Alt+character,
// or a multi-byte sequence from escBindings.
func (r *Reader) escape() {
	b, timedOut, ok := r.nextWithin(escTimeout)
	if timedOut || !ok {
		r.emit(session.KeyEvent(session.KeyEscape, 0))
		return
	}

	if b != '[' && b != 'O' {
		// Alt combination: terminals prefix the character with ESC.
		if b >= utf8.RuneSelf {
			r.emit(session.UnrecognizedEvent(fmt.Sprintf("alt sequence %s", dump.String([]byte{0x1B, b}))))
			return
		}
		ev := controlEvent(b)
		ev.Mods |= session.ModAlt
		r.emit(ev)
		return
	}

	seq := []byte{b}
	for {
		c, timedOut, ok := r.nextWithin(escTimeout)
		if timedOut || !ok {
			r.emit(session.UnrecognizedEvent(fmt.Sprintf("truncated sequence ESC %s", dump.String(seq))))
			return
		}
		seq = append(seq, c)

		// CSI sequences end at the first byte in the final range; SS3
		// sequences are a single byte after the O.
		if b == 'O' || c >= 0x40 && c <= 0x7E && !(len(seq) == 2 && c == '[') {
			break
		}
		if len(seq) >= maxSeqLen {
			r.emit(session.UnrecognizedEvent(fmt.Sprintf("overlong sequence ESC %s", dump.String(seq))))
			return
		}
	}

	if key, found := escBindings[string(seq)]; found {
		r.emit(session.KeyEvent(key, 0))
		return
	}
	r.emit(session.UnrecognizedEvent(fmt.Sprintf("unmapped sequence ESC %s", dump.String(seq))))
}

// multibyte assembles a UTF-8 sequence beginning with lead.
func (r *Reader) multibyte(lead byte) {
	var want int
	switch {
	case lead&0xE0 == 0xC0:
		want = 2
	case lead&0xF0 == 0xE0:
		want = 3
	case lead&0xF8 == 0xF0:
		want = 4
	default:
		r.emit(session.UnrecognizedEvent(fmt.Sprintf("invalid byte %s", dump.String([]byte{lead}))))
		return
	}

	seq := []byte{lead}
	for len(seq) < want {
		b, ok := r.next()
		if !ok {
			r.emit(session.UnrecognizedEvent(fmt.Sprintf("truncated character %s", dump.String(seq))))
			return
		}
		seq = append(seq, b)
	}

	ch, size := utf8.DecodeRune(seq)
	if ch == utf8.RuneError && size == 1 {
		r.emit(session.UnrecognizedEvent(fmt.Sprintf("invalid character %s", dump.String(seq))))
		return
	}
	r.emit(session.RuneEvent(ch, 0))
}

// controlEvent maps a single sub-0x80 byte onto its event. Control bytes are
// reported as their Control-key combination so the exit sentinel and the
// translator's remapping see the key the user actually pressed.
func controlEvent(b byte) session.Event {
	switch {
	case b == 0x0D || b == 0x0A:
		return session.KeyEvent(session.KeyEnter, 0)
	case b == 0x09:
		return session.KeyEvent(session.KeyTab, 0)
	case b == 0x08 || b == 0x7F:
		return session.KeyEvent(session.KeyBackspace, 0)
	case b == 0x1B:
		return session.KeyEvent(session.KeyEscape, 0)
	case b == 0x00:
		return session.RuneEvent(' ', session.ModCtrl)
	case b <= 0x1A:
		return session.RuneEvent(rune('a'+b-1), session.ModCtrl)
	case b <= 0x1F:
		// 0x1C-0x1F: what the terminal sends for Control-4 to Control-7.
		return session.RuneEvent(rune('4'+b-0x1C), session.ModCtrl)
	default:
		return session.RuneEvent(rune(b), 0)
	}
}
