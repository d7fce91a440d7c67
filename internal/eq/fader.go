package eq

// DefaultFaderHeight is the fader track length in pixels.
const DefaultFaderHeight = 120

// Fader maps positions along a vertical track to gains. Offset 0 is the
// top of the track (+12 dB) and Height is the bottom (-12 dB).
type Fader struct {
	Height float64
}

// ValueAt returns the gain for an offset from the top of the track.
// Offsets outside the track are clamped first.
func (f Fader) ValueAt(offset float64) float64 {
	h := f.height()
	offset = max(0, min(offset, h))
	return Snap(MaxDB - offset/h*(MaxDB-MinDB))
}

// OffsetOf returns the offset from the top of the track for a gain.
func (f Fader) OffsetOf(v float64) float64 {
	v = max(MinDB, min(v, MaxDB))
	return (MaxDB - v) / (MaxDB - MinDB) * f.height()
}

func (f Fader) height() float64 {
	if f.Height <= 0 {
		return DefaultFaderHeight
	}
	return f.Height
}
