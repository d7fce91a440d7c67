package core

import "fmt"

// RepeatMode governs wraparound behavior of Next and Previous.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "off"
	}
}

// Next returns the mode that follows m in the player's cycle:
// off, all, one, off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RepeatMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RepeatMode) UnmarshalText(b []byte) error {
	v, err := ParseRepeatMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseRepeatMode parses "off", "one" or "all".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "", "off":
		return RepeatOff, nil
	case "one", "track":
		return RepeatOne, nil
	case "all", "context":
		return RepeatAll, nil
	}
	return RepeatOff, fmt.Errorf("invalid repeat mode: %s (must be off, one, or all)", s)
}
