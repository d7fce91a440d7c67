package audio

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/gopxl/beep/v2"
)

// Analyser defaults, matching a browser AnalyserNode configured with an
// fftSize of 256.
const (
	FFTSize               = 256
	DefaultSmoothing      = 0.8
	DefaultMinDecibels    = -100.0
	DefaultMaxDecibels    = -30.0
	analyserHistoryFrames = FFTSize
)

// Analyser is a pass-through analysis tap. It captures a mono mix of the
// signal and computes a smoothed magnitude spectrum on demand. It never
// alters the samples it forwards.
type Analyser struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float32
	pos  int

	fftMu     sync.Mutex
	plan      *algofft.PlanRealT[float32, complex64]
	window    []float32
	frame     []float32
	spectrum  []complex64
	smoothed  []float64
	smoothing float64
	minDB     float64
	maxDB     float64
}

// NewAnalyser wraps s with an analysis tap.
func NewAnalyser(s beep.Streamer) (*Analyser, error) {
	plan, err := algofft.NewPlanReal32(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("create fft plan for size %d: %w", FFTSize, err)
	}
	return &Analyser{
		s:         s,
		ring:      make([]float32, analyserHistoryFrames),
		plan:      plan,
		window:    blackman(FFTSize),
		frame:     make([]float32, FFTSize),
		spectrum:  make([]complex64, FFTSize/2+1),
		smoothed:  make([]float64, FFTSize/2),
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
	}, nil
}

// Stream passes audio through while recording a mono mix.
func (a *Analyser) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.s.Stream(samples)
	a.mu.Lock()
	for i := range n {
		a.ring[a.pos] = float32((samples[i][0] + samples[i][1]) / 2)
		a.pos = (a.pos + 1) % len(a.ring)
	}
	a.mu.Unlock()
	return n, ok
}

// Err returns the underlying streamer's error.
func (a *Analyser) Err() error { return a.s.Err() }

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return FFTSize / 2 }

// FloatFrequencyData fills dst with the smoothed spectrum in decibels.
func (a *Analyser) FloatFrequencyData(dst []float64) {
	a.fftMu.Lock()
	defer a.fftMu.Unlock()
	a.analyse()
	for i := range min(len(dst), len(a.smoothed)) {
		dst[i] = toDecibels(a.smoothed[i])
	}
}

// ByteFrequencyData fills dst with the smoothed spectrum scaled from
// [minDecibels, maxDecibels] onto [0, 255].
func (a *Analyser) ByteFrequencyData(dst []byte) {
	a.fftMu.Lock()
	defer a.fftMu.Unlock()
	a.analyse()
	scale := 255 / (a.maxDB - a.minDB)
	for i := range min(len(dst), len(a.smoothed)) {
		v := scale * (toDecibels(a.smoothed[i]) - a.minDB)
		dst[i] = byte(max(0, min(v, 255)))
	}
}

func (a *Analyser) analyse() {
	a.mu.Lock()
	start := a.pos
	for i := range FFTSize {
		a.frame[i] = a.ring[(start+i)%len(a.ring)] * a.window[i]
	}
	a.mu.Unlock()

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		return
	}
	for i := range a.smoothed {
		c := a.spectrum[i]
		mag := math.Hypot(float64(real(c)), float64(imag(c))) / FFTSize
		a.smoothed[i] = a.smoothing*a.smoothed[i] + (1-a.smoothing)*mag
	}
}

func toDecibels(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}

func blackman(n int) []float32 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float32, n)
	for i := range n {
		x := float64(i) / float64(n)
		w[i] = float32(a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x))
	}
	return w
}
