package audio

import (
	"github.com/gopxl/beep/v2"
)

// slot is the replaceable head of the graph. It plays the bound source
// and emits silence while nothing is bound, while paused, or after the
// source has ended, so the rest of the chain keeps running across track
// changes. All methods except Stream must be called with the output
// locked.
type slot struct {
	src    beep.Streamer
	token  uint64
	paused bool
	ended  bool
	onEnd  func(token uint64)
}

func (s *slot) bind(src beep.Streamer, token uint64) {
	s.src = src
	s.token = token
	s.ended = false
	s.paused = true
}

func (s *slot) unbind() {
	s.src = nil
	s.ended = false
	s.paused = true
}

func (s *slot) Stream(samples [][2]float64) (int, bool) {
	if s.src == nil || s.paused || s.ended {
		clear(samples)
		return len(samples), true
	}
	n, ok := s.src.Stream(samples)
	if n < len(samples) || !ok {
		clear(samples[n:])
		s.ended = true
		if s.onEnd != nil {
			s.onEnd(s.token)
		}
	}
	return len(samples), true
}

func (s *slot) Err() error { return nil }
