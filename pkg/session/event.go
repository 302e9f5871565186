package session

// KeyCode identifies the key carried by a key event. KeyRune means the event
// carries a Unicode character in the Rune field; every other code is a named
// key with a fixed device byte sequence.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyInsert
)

// String returns the key name for diagnostics.
func (k KeyCode) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	case KeyTab:
		return "tab"
	case KeyEscape:
		return "escape"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyDelete:
		return "delete"
	case KeyInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// ModMask is a bitset of key modifiers.
type ModMask uint8

const (
	ModCtrl ModMask = 1 << iota
	ModAlt
	ModShift
)

// EventType discriminates the input event union.
type EventType int

const (
	// EventKey is a key press (named key or character).
	EventKey EventType = iota
	// EventUnrecognized is any terminal input the parser could not classify.
	// It is never translated, only reported to the diagnostic sink.
	EventUnrecognized
)

// Event is a single terminal input event. Key events compare by value via Is,
// which is how the exit sentinel is detected.
type Event struct {
	Type EventType
	Key  KeyCode
	Rune rune
	Mods ModMask

	// Desc describes an EventUnrecognized for logging.
	Desc string
}

// KeyEvent returns a named-key event.
func KeyEvent(key KeyCode, mods ModMask) Event {
	return Event{Type: EventKey, Key: key, Mods: mods}
}

// RuneEvent returns a character event.
func RuneEvent(r rune, mods ModMask) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r, Mods: mods}
}

// UnrecognizedEvent returns an event for input that has no key mapping.
func UnrecognizedEvent(desc string) Event {
	return Event{Type: EventUnrecognized, Desc: desc}
}

// Is reports whether two events denote the same key press, ignoring the
// free-form description.
func (e Event) Is(o Event) bool {
	return e.Type == o.Type && e.Key == o.Key && e.Rune == o.Rune && e.Mods == o.Mods
}
