// Package eq is the five-band equalizer control surface. It holds the
// fader positions and forwards every change to the audio graph.
package eq

import (
	"fmt"
	"math"
	"sync"

	"github.com/tessro/station/internal/audio"
)

const (
	Bands = audio.BandCount
	MinDB = audio.MinGain
	MaxDB = audio.MaxGain
	Step  = 0.5
)

// Labels are the display names of the bands, low to high.
var Labels = [Bands]string{"60 Hz", "250 Hz", "1 kHz", "4 kHz", "12 kHz"}

// ShortLabels fit under a narrow fader.
var ShortLabels = [Bands]string{"60", "250", "1k", "4k", "12k"}

// BandSetter receives band gain changes. *audio.Controller implements it.
type BandSetter interface {
	SetBandGain(band int, dB float64)
}

// Preset is a named set of band gains.
type Preset int

const (
	PresetFlat Preset = iota
	PresetBassBoost
	PresetTrebleBoost
	PresetVocal
)

// Presets lists every preset in display order.
var Presets = []Preset{PresetBassBoost, PresetTrebleBoost, PresetVocal, PresetFlat}

func (p Preset) String() string {
	switch p {
	case PresetBassBoost:
		return "bass-boost"
	case PresetTrebleBoost:
		return "treble-boost"
	case PresetVocal:
		return "vocal"
	default:
		return "flat"
	}
}

// Gains returns the preset's band gains.
func (p Preset) Gains() [Bands]float64 {
	switch p {
	case PresetBassBoost:
		return [Bands]float64{8, 5, 0, -2, -3}
	case PresetTrebleBoost:
		return [Bands]float64{-3, -2, 0, 5, 8}
	case PresetVocal:
		return [Bands]float64{-2, 3, 5, 3, -2}
	default:
		return [Bands]float64{}
	}
}

// ParsePreset parses a preset name.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if p.String() == s {
			return p, nil
		}
	}
	return PresetFlat, fmt.Errorf("unknown preset: %s (must be bass-boost, treble-boost, vocal, or flat)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(b []byte) error {
	v, err := ParsePreset(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Snap clamps v into range and rounds it to the nearest step, halves up.
func Snap(v float64) float64 {
	v = max(MinDB, min(v, MaxDB))
	return math.Floor(v/Step+0.5) * Step
}

// Panel is the equalizer surface. It is safe for concurrent use; the
// lock is held while a change is forwarded so the panel and the graph
// never disagree.
type Panel struct {
	out BandSetter

	mu    sync.Mutex
	gains [Bands]float64
}

// NewPanel returns a flat panel forwarding to out. out may be nil.
func NewPanel(out BandSetter) *Panel {
	return &Panel{out: out}
}

// SetBand sets one band and forwards it. Invalid bands are ignored.
func (p *Panel) SetBand(band int, v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setLocked(band, v)
}

func (p *Panel) setLocked(band int, v float64) {
	if band < 0 || band >= Bands {
		return
	}
	v = Snap(v)
	p.gains[band] = v
	if p.out != nil {
		p.out.SetBandGain(band, v)
	}
}

// Nudge moves a band by delta steps.
func (p *Panel) Nudge(band, steps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if band < 0 || band >= Bands {
		return
	}
	p.setLocked(band, p.gains[band]+float64(steps)*Step)
}

// ApplyPreset sets all five bands from a preset.
func (p *Panel) ApplyPreset(preset Preset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, v := range preset.Gains() {
		p.setLocked(i, v)
	}
}

// Reset flattens every band.
func (p *Panel) Reset() {
	p.ApplyPreset(PresetFlat)
}

// Gains returns the current band gains.
func (p *Panel) Gains() [Bands]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gains
}

// Gain returns one band's gain.
func (p *Panel) Gain(band int) float64 {
	if band < 0 || band >= Bands {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gains[band]
}

// Matches returns the preset equal to the current gains, if any.
func (p *Panel) Matches() (Preset, bool) {
	gains := p.Gains()
	for _, preset := range Presets {
		if preset.Gains() == gains {
			return preset, true
		}
	}
	return PresetFlat, false
}
