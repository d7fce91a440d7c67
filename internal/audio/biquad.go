package audio

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Equalizer band layout. The chain order is fixed: band 0 first.
const (
	BandCount = 5
	MinGain   = -12.0
	MaxGain   = 12.0
	bandQ     = 1.0
)

// BandFrequencies are the peaking filter center frequencies in Hz.
var BandFrequencies = [BandCount]float64{60, 250, 1000, 4000, 12000}

// ClampGain limits a band gain to [MinGain, MaxGain].
func ClampGain(dB float64) float64 {
	if math.IsNaN(dB) {
		return 0
	}
	return max(MinGain, min(dB, MaxGain))
}

// atomicFloat is a float64 safe to write from the UI goroutine while the
// audio goroutine reads it.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }

// peaking is a second-order IIR peaking filter (Audio EQ Cookbook).
// The gain can be changed while streaming; coefficients are recomputed
// on the next Stream call.
type peaking struct {
	s    beep.Streamer
	freq float64
	q    float64
	sr   float64
	gain atomicFloat

	x1, x2 [2]float64
	y1, y2 [2]float64

	lastGain           float64
	inited             bool
	b0, b1, b2, a1, a2 float64
}

func newPeaking(s beep.Streamer, freq, q, sr float64) *peaking {
	return &peaking{s: s, freq: freq, q: q, sr: sr}
}

func (p *peaking) setGain(dB float64) { p.gain.Store(dB) }
func (p *peaking) Gain() float64      { return p.gain.Load() }

func (p *peaking) coeffs(dB float64) {
	if p.inited && dB == p.lastGain {
		return
	}
	p.lastGain = dB
	p.inited = true
	p.b0, p.b1, p.b2, p.a1, p.a2 = peakingCoeffs(p.freq, p.q, p.sr, dB)
}

// peakingCoeffs returns normalized biquad coefficients for a peaking EQ.
func peakingCoeffs(freq, q, sr, dB float64) (b0, b1, b2, a1, a2 float64) {
	a := math.Pow(10, dB/40)
	w0 := 2 * math.Pi * freq / sr
	sinW0, cosW0 := math.Sincos(w0)
	alpha := sinW0 / (2 * q)

	a0 := 1 + alpha/a
	b0 = (1 + alpha*a) / a0
	b1 = (-2 * cosW0) / a0
	b2 = (1 - alpha*a) / a0
	a1 = (-2 * cosW0) / a0
	a2 = (1 - alpha/a) / a0
	return
}

func (p *peaking) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.s.Stream(samples)
	p.coeffs(p.gain.Load())

	for i := range n {
		for ch := range 2 {
			x := samples[i][ch]
			y := p.b0*x + p.b1*p.x1[ch] + p.b2*p.x2[ch] - p.a1*p.y1[ch] - p.a2*p.y2[ch]
			p.x2[ch], p.x1[ch] = p.x1[ch], x
			p.y2[ch], p.y1[ch] = p.y1[ch], y
			samples[i][ch] = y
		}
	}
	return n, ok
}

func (p *peaking) Err() error { return p.s.Err() }

// response returns the filter's magnitude response in dB at freq.
func (p *peaking) response(freq float64) float64 {
	b0, b1, b2, a1, a2 := peakingCoeffs(p.freq, p.q, p.sr, p.gain.Load())
	w := 2 * math.Pi * freq / p.sr
	s1, c1 := math.Sincos(w)
	s2, c2 := math.Sincos(2 * w)
	num := math.Hypot(b0+b1*c1+b2*c2, b1*s1+b2*s2)
	den := math.Hypot(1+a1*c1+a2*c2, a1*s1+a2*s2)
	return 20 * math.Log10(num/den)
}
