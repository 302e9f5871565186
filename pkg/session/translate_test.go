package session

import (
	"bytes"
	"testing"
)

func TestTranslateNamedKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []byte
	}{
		{"enter", KeyEvent(KeyEnter, 0), []byte{0x0D}},
		{"backspace", KeyEvent(KeyBackspace, 0), []byte{0x08}},
		{"tab", KeyEvent(KeyTab, 0), []byte{0x09}},
		{"escape", KeyEvent(KeyEscape, 0), []byte{0x1B}},
		{"up", KeyEvent(KeyUp, 0), []byte{0x1B, '[', 'A'}},
		{"down", KeyEvent(KeyDown, 0), []byte{0x1B, '[', 'B'}},
		{"right", KeyEvent(KeyRight, 0), []byte{0x1B, '[', 'C'}},
		{"left", KeyEvent(KeyLeft, 0), []byte{0x1B, '[', 'D'}},
		{"home", KeyEvent(KeyHome, 0), []byte{0x1B, '[', 'H'}},
		{"end", KeyEvent(KeyEnd, 0), []byte{0x1B, '[', 'F'}},
		{"insert", KeyEvent(KeyInsert, 0), []byte{0x1B, '[', '2', '~'}},
		{"delete", KeyEvent(KeyDelete, 0), []byte{0x1B, '[', '3', '~'}},
	}

	tr := NewTranslator(DefaultConfig(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Translate(tt.ev); !bytes.Equal(got, tt.want) {
				t.Errorf("Translate(%s) = %#v, want %#v", tt.name, got, tt.want)
			}
		})
	}
}

func TestTranslateEnterLineEnding(t *testing.T) {
	tests := []struct {
		eol  LineEnding
		want []byte
	}{
		{EOLCR, []byte{0x0D}},
		{EOLCRLF, []byte{0x0D, 0x0A}},
		{EOLLF, []byte{0x0A}},
	}

	for _, tt := range tests {
		t.Run(tt.eol.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.EOL = tt.eol
			tr := NewTranslator(cfg, nil, nil)
			if got := tr.Translate(KeyEvent(KeyEnter, 0)); !bytes.Equal(got, tt.want) {
				t.Errorf("Translate(enter) = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslateControl(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want []byte
	}{
		{"ctrl-a", 'a', []byte{0x01}},
		{"ctrl-h", 'h', []byte{0x08}},
		{"ctrl-z", 'z', []byte{0x1A}},
		{"ctrl-space", ' ', []byte{0x00}},
		{"ctrl-4", '4', []byte{0x1C}},
		{"ctrl-5", '5', []byte{0x1D}},
		{"ctrl-6", '6', []byte{0x1E}},
		{"ctrl-7", '7', []byte{0x1F}},
		// Digits outside 4-7 have no control code; the character itself
		// goes out.
		{"ctrl-1", '1', []byte{'1'}},
		{"ctrl-9", '9', []byte{'9'}},
	}

	tr := NewTranslator(DefaultConfig(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Translate(RuneEvent(tt.r, ModCtrl)); !bytes.Equal(got, tt.want) {
				t.Errorf("Translate(Ctrl+%c) = %#v, want %#v", tt.r, got, tt.want)
			}
		})
	}
}

func TestTranslateRunes(t *testing.T) {
	tr := NewTranslator(DefaultConfig(), nil, nil)

	if got := tr.Translate(RuneEvent('q', 0)); !bytes.Equal(got, []byte{'q'}) {
		t.Errorf("Translate('q') = %#v, want {0x71}", got)
	}
	if got := tr.Translate(RuneEvent('é', 0)); !bytes.Equal(got, []byte{0xC3, 0xA9}) {
		t.Errorf("Translate('é') = %#v, want UTF-8 encoding", got)
	}
}

func TestTranslateUnrecognized(t *testing.T) {
	tr := NewTranslator(DefaultConfig(), nil, nil)

	if got := tr.Translate(UnrecognizedEvent("mystery sequence")); got != nil {
		t.Errorf("Translate(unrecognized) = %#v, want nil", got)
	}
}

func TestTranslateEcho(t *testing.T) {
	var display bytes.Buffer
	cfg := DefaultConfig()
	cfg.Echo = true
	tr := NewTranslator(cfg, &display, nil)

	tr.Translate(RuneEvent('q', 0))
	if display.String() != "q" {
		t.Errorf("echo wrote %q, want %q", display.String(), "q")
	}
}

func TestTranslateNoEchoByDefault(t *testing.T) {
	var display bytes.Buffer
	tr := NewTranslator(DefaultConfig(), &display, nil)

	tr.Translate(RuneEvent('q', 0))
	if display.Len() != 0 {
		t.Errorf("echo wrote %q with echo disabled", display.String())
	}
}
