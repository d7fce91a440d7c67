package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
)

// sine is an endless sine wave.
type sine struct {
	freq, sr float64
	n        int
}

func (s *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * float64(s.n) / s.sr)
		samples[i] = [2]float64{v, v}
		s.n++
	}
	return len(samples), true
}

func (s *sine) Err() error { return nil }

func TestPeakingResponseAtCenter(t *testing.T) {
	for _, gain := range []float64{-12, -6, 0, 3.5, 12} {
		p := newPeaking(beep.Silence(-1), 1000, bandQ, 44100)
		p.setGain(gain)
		if got := p.response(1000); math.Abs(got-gain) > 0.01 {
			t.Errorf("gain %v: response at center = %.3f", gain, got)
		}
	}
}

func TestPeakingFlatIsTransparent(t *testing.T) {
	p := newPeaking(&sine{freq: 440, sr: 44100}, 1000, bandQ, 44100)
	ref := &sine{freq: 440, sr: 44100}

	got := make([][2]float64, 512)
	want := make([][2]float64, 512)
	p.Stream(got)
	ref.Stream(want)

	for i := range got {
		if math.Abs(got[i][0]-want[i][0]) > 1e-9 {
			t.Fatalf("sample %d = %v, want %v", i, got[i][0], want[i][0])
		}
	}
}

func TestAnalyserPeakBin(t *testing.T) {
	const sr = 25600.0
	const bin = 16
	freq := bin * sr / FFTSize

	a, err := NewAnalyser(&sine{freq: freq, sr: sr})
	if err != nil {
		t.Fatalf("NewAnalyser() error: %v", err)
	}
	a.Stream(make([][2]float64, FFTSize*2))

	data := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(data)

	peak := 0
	for i, v := range data {
		if v > data[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("peak bin = %d, want %d", peak, bin)
	}
	if data[peak] == 0 {
		t.Error("peak magnitude = 0")
	}
}

func TestAnalyserPassesThrough(t *testing.T) {
	a, err := NewAnalyser(&sine{freq: 300, sr: 8000})
	if err != nil {
		t.Fatal(err)
	}
	ref := &sine{freq: 300, sr: 8000}

	got := make([][2]float64, 300)
	want := make([][2]float64, 300)
	a.Stream(got)
	ref.Stream(want)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("sample %d altered: %v != %v", i, got[i], want[i])
		}
	}
}

func TestAnalyserSilence(t *testing.T) {
	a, err := NewAnalyser(beep.Silence(-1))
	if err != nil {
		t.Fatal(err)
	}
	a.Stream(make([][2]float64, FFTSize))

	data := make([]byte, a.FrequencyBinCount())
	a.ByteFrequencyData(data)
	for i, v := range data {
		if v != 0 {
			t.Fatalf("bin %d = %d for silence", i, v)
		}
	}
}

func TestGraphOrder(t *testing.T) {
	g, err := newGraph(8000, [BandCount]float64{}, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if g.bands[0].s != beep.Streamer(g.slot) {
		t.Error("band 0 is not fed by the source slot")
	}
	for i := 1; i < BandCount; i++ {
		if g.bands[i].s != beep.Streamer(g.bands[i-1]) {
			t.Errorf("band %d is not fed by band %d", i, i-1)
		}
	}
	if g.analyser.s != beep.Streamer(g.bands[BandCount-1]) {
		t.Error("analyser is not fed by the last band")
	}
	if g.gain.s != beep.Streamer(g.analyser) {
		t.Error("gain is not fed by the analyser")
	}
}
