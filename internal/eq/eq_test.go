package eq

import (
	"sync"
	"testing"
)

type recorder struct {
	calls [][2]float64
}

func (r *recorder) SetBandGain(band int, dB float64) {
	r.calls = append(r.calls, [2]float64{float64(band), dB})
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset Preset
		want   [Bands]float64
	}{
		{PresetBassBoost, [Bands]float64{8, 5, 0, -2, -3}},
		{PresetTrebleBoost, [Bands]float64{-3, -2, 0, 5, 8}},
		{PresetVocal, [Bands]float64{-2, 3, 5, 3, -2}},
		{PresetFlat, [Bands]float64{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			rec := &recorder{}
			p := NewPanel(rec)
			p.SetBand(2, 11)
			rec.calls = nil

			p.ApplyPreset(tt.preset)

			if p.Gains() != tt.want {
				t.Errorf("Gains() = %v, want %v", p.Gains(), tt.want)
			}
			if len(rec.calls) != Bands {
				t.Fatalf("forwarded %d calls, want %d", len(rec.calls), Bands)
			}
			for i, c := range rec.calls {
				if int(c[0]) != i || c[1] != tt.want[i] {
					t.Errorf("call %d = %v, want band %d = %v", i, c, i, tt.want[i])
				}
			}
		})
	}
}

// lockedSink keeps the last gain per band, like the audio graph.
type lockedSink struct {
	mu    sync.Mutex
	gains [Bands]float64
}

func (l *lockedSink) SetBandGain(band int, dB float64) {
	l.mu.Lock()
	l.gains[band] = dB
	l.mu.Unlock()
}

func TestConcurrentChangesStayInSync(t *testing.T) {
	sink := &lockedSink{}
	p := NewPanel(sink)

	var wg sync.WaitGroup
	for _, preset := range []Preset{PresetBassBoost, PresetTrebleBoost} {
		wg.Go(func() {
			for range 500 {
				p.ApplyPreset(preset)
			}
		})
	}
	wg.Go(func() {
		for i := range 500 {
			p.SetBand(i%Bands, float64(i%24-12))
			p.Nudge(i%Bands, 1)
		}
	})
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if got := p.Gains(); got != sink.gains {
		t.Errorf("panel %v, graph %v", got, sink.gains)
	}
}

func TestResetIsFlat(t *testing.T) {
	p := NewPanel(nil)
	p.ApplyPreset(PresetVocal)
	p.Reset()
	if p.Gains() != [Bands]float64{} {
		t.Errorf("Gains() = %v after Reset", p.Gains())
	}
}

func TestSetBandSnapsAndClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{3.3, 3.5},
		{3.2, 3},
		{-2.25, -2},
		{-2.75, -2.5},
		{15, 12},
		{-30, -12},
	}

	for _, tt := range tests {
		p := NewPanel(nil)
		p.SetBand(1, tt.in)
		if got := p.Gain(1); got != tt.want {
			t.Errorf("SetBand(1, %v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetBandInvalidIndex(t *testing.T) {
	rec := &recorder{}
	p := NewPanel(rec)
	p.SetBand(-1, 3)
	p.SetBand(Bands, 3)
	if len(rec.calls) != 0 {
		t.Errorf("forwarded %d calls for invalid bands", len(rec.calls))
	}
}

func TestNudge(t *testing.T) {
	p := NewPanel(nil)
	p.Nudge(0, 3)
	if p.Gain(0) != 1.5 {
		t.Errorf("Gain(0) = %v, want 1.5", p.Gain(0))
	}
	p.Nudge(0, -100)
	if p.Gain(0) != MinDB {
		t.Errorf("Gain(0) = %v, want %v", p.Gain(0), MinDB)
	}
}

func TestMatches(t *testing.T) {
	p := NewPanel(nil)
	p.ApplyPreset(PresetTrebleBoost)
	if got, ok := p.Matches(); !ok || got != PresetTrebleBoost {
		t.Errorf("Matches() = %v, %v", got, ok)
	}
	p.Nudge(0, 1)
	if _, ok := p.Matches(); ok {
		t.Error("Matches() = true after edit")
	}
}

func TestParsePreset(t *testing.T) {
	for _, preset := range Presets {
		got, err := ParsePreset(preset.String())
		if err != nil || got != preset {
			t.Errorf("ParsePreset(%q) = %v, %v", preset.String(), got, err)
		}
	}
	if _, err := ParsePreset("loudness"); err == nil {
		t.Error("ParsePreset(loudness) expected error")
	}
}

func TestFaderValueAt(t *testing.T) {
	f := Fader{Height: DefaultFaderHeight}
	tests := []struct {
		offset, want float64
	}{
		{0, 12},
		{120, -12},
		{60, 0},
		{30, 6},
		{-50, 12},
		{500, -12},
		{63, -0.5},
		{61, 0},
		{1, 12},
	}

	for _, tt := range tests {
		if got := f.ValueAt(tt.offset); got != tt.want {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestFaderOffsetOfInverts(t *testing.T) {
	f := Fader{Height: 120}
	for v := MinDB; v <= MaxDB; v += Step {
		if got := f.ValueAt(f.OffsetOf(v)); got != v {
			t.Errorf("ValueAt(OffsetOf(%v)) = %v", v, got)
		}
	}
}
