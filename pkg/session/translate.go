package session

import (
	"io"
	"unicode/utf8"

	"go.uber.org/zap"

	"serial-monitor/pkg/dump"
)

// Translator converts terminal input events into the byte sequences the
// serial device expects. It holds no state beyond its configuration, so a
// single instance serves a whole session.
type Translator struct {
	cfg     Config
	display io.Writer
	logger  *zap.Logger
}

// NewTranslator returns a translator for the given session options. display
// receives local echo when enabled and may be nil. logger may be nil to
// disable diagnostics.
func NewTranslator(cfg Config, display io.Writer, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{cfg: cfg, display: display, logger: logger}
}

// Translate returns the device bytes for ev, or nil when the event produces
// no output. Unrecognized events are logged and dropped. When echo is enabled
// the returned sequence is also written to the display if it is valid UTF-8.
func (t *Translator) Translate(ev Event) []byte {
	if ev.Type == EventUnrecognized {
		t.logger.Debug("unrecognized input", zap.String("event", ev.Desc))
		return nil
	}

	seq := t.encode(ev)
	if seq == nil {
		return nil
	}

	if t.cfg.DebugTrace {
		t.logger.Debug("key translated", zap.String("bytes", dump.String(seq)))
	}

	if t.cfg.Echo && t.display != nil && utf8.Valid(seq) {
		t.display.Write(seq)
	}

	return seq
}

func (t *Translator) encode(ev Event) []byte {
	switch ev.Key {
	case KeyEnter:
		return t.cfg.EOL.Bytes()
	case KeyBackspace:
		return []byte{0x08}
	case KeyTab:
		return []byte{0x09}
	case KeyEscape:
		return []byte{0x1B}
	case KeyUp:
		return []byte{0x1B, '[', 'A'}
	case KeyDown:
		return []byte{0x1B, '[', 'B'}
	case KeyRight:
		return []byte{0x1B, '[', 'C'}
	case KeyLeft:
		return []byte{0x1B, '[', 'D'}
	case KeyHome:
		return []byte{0x1B, '[', 'H'}
	case KeyEnd:
		return []byte{0x1B, '[', 'F'}
	case KeyInsert:
		return []byte{0x1B, '[', '2', '~'}
	case KeyDelete:
		return []byte{0x1B, '[', '3', '~'}
	case KeyRune:
		return t.encodeRune(ev.Rune, ev.Mods)
	default:
		t.logger.Debug("unmapped key", zap.Stringer("key", ev.Key))
		return nil
	}
}

// encodeRune maps a character with its modifiers onto device bytes. Control
// combinations with letters and space use the conventional C0 mapping; the
// terminal cannot distinguish Control-4 through Control-7 from the C0 codes
// FS, GS, RS and US, so those digits map there too. Everything else falls
// back to the plain UTF-8 encoding of the character.
func (t *Translator) encodeRune(r rune, mods ModMask) []byte {
	if mods&ModCtrl != 0 {
		switch {
		case r >= 'a' && r <= 'z', r == ' ':
			return []byte{byte(r) & 0x1F}
		case r >= '4' && r <= '7':
			return []byte{(byte(r) + 8) & 0x1F}
		}
	}

	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return buf[:n]
}
