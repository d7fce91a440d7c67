package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// gainStage scales the signal by a linear volume. Muting is a flag on top
// of the volume so unmuting restores the previous level.
type gainStage struct {
	s      beep.Streamer
	volume atomicFloat
	muted  atomic.Bool
}

func newGainStage(s beep.Streamer, volume float64) *gainStage {
	g := &gainStage{s: s}
	g.volume.Store(volume)
	return g
}

func (g *gainStage) level() float64 {
	if g.muted.Load() {
		return 0
	}
	return g.volume.Load()
}

func (g *gainStage) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.s.Stream(samples)
	v := g.level()
	if v == 1 {
		return n, ok
	}
	for i := range n {
		samples[i][0] *= v
		samples[i][1] *= v
	}
	return n, ok
}

func (g *gainStage) Err() error { return g.s.Err() }
