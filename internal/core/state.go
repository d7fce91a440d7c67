package core

import (
	"fmt"
	"time"
)

// TransportState is the playback transport state of the audio controller.
type TransportState int

const (
	StateIdle TransportState = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
)

func (s TransportState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s TransportState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TransportState) UnmarshalText(b []byte) error {
	for st := StateIdle; st <= StateEnded; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown transport state %q", b)
}

// PlaybackState represents the current playback state.
type PlaybackState struct {
	Track     *Track         `json:"track"`
	State     TransportState `json:"state"`
	IsPlaying bool           `json:"is_playing"`
	Progress  time.Duration  `json:"progress"`
	Duration  time.Duration  `json:"duration"`
	Volume    float64        `json:"volume"`
	Muted     bool           `json:"muted"`
	Bands     [5]float64     `json:"bands"`
	Shuffle   bool           `json:"shuffle"`
	Repeat    RepeatMode     `json:"repeat"`
	Error     string         `json:"error,omitempty"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Duration) * 100
}

// VolumePercent returns the volume scaled to 0-100.
func (s *PlaybackState) VolumePercent() int {
	if s == nil {
		return 0
	}
	return int(s.Volume*100 + 0.5)
}
