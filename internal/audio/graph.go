package audio

import (
	"github.com/gopxl/beep/v2"
)

// Graph is the fixed signal chain:
//
//	slot -> band[0..4] -> analyser -> gain -> output
//
// It is built once per Controller and survives track changes. Only the
// slot's bound source is ever replaced.
type Graph struct {
	sampleRate beep.SampleRate
	slot       *slot
	bands      [BandCount]*peaking
	analyser   *Analyser
	gain       *gainStage
}

func newGraph(sr beep.SampleRate, gains [BandCount]float64, volume float64, muted bool) (*Graph, error) {
	g := &Graph{sampleRate: sr, slot: &slot{paused: true}}

	var s beep.Streamer = g.slot
	for i, freq := range BandFrequencies {
		b := newPeaking(s, freq, bandQ, float64(sr))
		b.setGain(gains[i])
		g.bands[i] = b
		s = b
	}

	a, err := NewAnalyser(s)
	if err != nil {
		return nil, err
	}
	g.analyser = a
	g.gain = newGainStage(a, volume)
	g.gain.muted.Store(muted)
	return g, nil
}

// Streamer returns the tail of the chain, the node handed to the output.
func (g *Graph) Streamer() beep.Streamer { return g.gain }

// Analyser returns the analysis tap.
func (g *Graph) Analyser() *Analyser { return g.analyser }

// Response returns the combined equalizer response in dB at freq.
func (g *Graph) Response(freq float64) float64 {
	var total float64
	for _, b := range g.bands {
		total += b.response(freq)
	}
	return total
}
