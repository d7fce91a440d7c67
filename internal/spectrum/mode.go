package spectrum

import "fmt"

// Mode selects how a spectrum frame is drawn.
type Mode int

const (
	ModeFlame Mode = iota
	ModeWave
	ModeBars
)

// Modes lists every mode in cycle order.
var Modes = []Mode{ModeFlame, ModeWave, ModeBars}

func (m Mode) String() string {
	switch m {
	case ModeWave:
		return "wave"
	case ModeBars:
		return "bars"
	default:
		return "flame"
	}
}

// Next returns the following mode, wrapping around.
func (m Mode) Next() Mode {
	return Modes[(int(m)+1)%len(Modes)]
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "flame", "fire":
		return ModeFlame, nil
	case "wave":
		return ModeWave, nil
	case "bars":
		return ModeBars, nil
	}
	return ModeFlame, fmt.Errorf("unknown visualizer: %s (must be flame, wave, or bars)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
