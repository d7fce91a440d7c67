// Package vibe derives a listening profile for a track from the live
// spectrum and the track's catalog metadata, and groups analysed tracks
// into adaptive playlists.
package vibe

import (
	"math"
	"strings"
	"time"

	"github.com/tessro/station/internal/core"
)

// SignatureBands is the number of spectrum samples in an energy signature.
const SignatureBands = 10

// Tempo is a coarse tempo bucket.
type Tempo string

const (
	TempoSlow   Tempo = "slow"
	TempoMedium Tempo = "medium"
	TempoFast   Tempo = "fast"
	TempoUltra  Tempo = "ultra"
)

// Vibe names.
const (
	LateNightFlow = "Late-Night Flow"
	DAOEnergy     = "DAO Energy"
	BuildMode     = "Build Mode"
	CosmicChill   = "Cosmic Chill"
	HypeWave      = "Hype Wave"
	Balanced      = "Balanced Vibes"
)

var colors = map[string]string{
	LateNightFlow: "#9333ea",
	DAOEnergy:     "#0ea5e9",
	BuildMode:     "#10b981",
	CosmicChill:   "#6366f1",
	HypeWave:      "#ef4444",
	Balanced:      "#f59e0b",
}

const defaultColor = "#6b7280"

// Profile is the analysis of one track.
type Profile struct {
	TrackID      string    `json:"track_id"`
	Energy       float64   `json:"energy"`
	Tempo        Tempo     `json:"tempo"`
	Mood         string    `json:"mood"`
	Vibe         string    `json:"vibe"`
	Color        string    `json:"color"`
	Signature    []int     `json:"signature"`
	Authenticity int       `json:"authenticity"`
	Cosigns      int       `json:"cosigns"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// Tap provides byte spectrum data, such as the audio controller.
type Tap interface {
	FrequencyBinCount() int
	FrequencyData(dst []byte)
}

// Analyzer builds profiles. With a nil tap every signature is flat at 50.
type Analyzer struct {
	tap Tap
	now func() time.Time
}

// NewAnalyzer returns an analyzer reading from tap.
func NewAnalyzer(tap Tap) *Analyzer {
	return &Analyzer{tap: tap, now: time.Now}
}

// Analyze profiles track using the spectrum at this instant.
func (a *Analyzer) Analyze(track core.Track) Profile {
	sig := a.Signature()
	energy := Energy(sig)
	tempo := DetectTempo(track.Duration, energy)
	mood := DetectMood(track, energy)
	v := Classify(energy, tempo, mood)
	return Profile{
		TrackID:      track.ID,
		Energy:       energy,
		Tempo:        tempo,
		Mood:         mood,
		Vibe:         v,
		Color:        Color(v),
		Signature:    sig,
		Authenticity: Authenticity(track),
		AnalyzedAt:   a.now(),
	}
}

// Signature samples SignatureBands evenly spaced bins of the spectrum.
func (a *Analyzer) Signature() []int {
	sig := make([]int, SignatureBands)
	if a.tap == nil {
		for i := range sig {
			sig[i] = 50
		}
		return sig
	}

	n := a.tap.FrequencyBinCount()
	data := make([]byte, n)
	a.tap.FrequencyData(data)
	step := n / SignatureBands
	for i := range sig {
		if idx := i * step; idx < n {
			sig[i] = int(data[idx])
		}
	}
	return sig
}

// Energy is the signature mean scaled to 0-100.
func Energy(sig []int) float64 {
	if len(sig) == 0 {
		return 0
	}
	sum := 0
	for _, v := range sig {
		sum += v
	}
	avg := float64(sum) / float64(len(sig))
	return math.Min(100, math.Max(0, avg/255*100))
}

// DetectTempo estimates a tempo bucket from track length and energy.
func DetectTempo(d time.Duration, energy float64) Tempo {
	secs := d.Seconds()
	if secs <= 0 {
		return TempoSlow
	}
	bpm := (240 / secs) * (energy / 50)
	switch {
	case bpm < 80:
		return TempoSlow
	case bpm < 120:
		return TempoMedium
	case bpm < 140:
		return TempoFast
	}
	return TempoUltra
}

// DetectMood prefers the catalog mood and otherwise infers one from
// energy and genre.
func DetectMood(track core.Track, energy float64) string {
	if track.Mood != "" {
		return strings.ToLower(track.Mood)
	}

	genre := strings.ToLower(track.Genre)
	has := func(s string) bool { return strings.Contains(genre, s) }
	switch {
	case energy > 75:
		if has("electronic") || has("dance") {
			return "energetic"
		}
		if has("rock") || has("metal") {
			return "intense"
		}
		return "upbeat"
	case energy > 50:
		if has("hip") {
			return "confident"
		}
		if has("pop") {
			return "cheerful"
		}
		return "balanced"
	}
	if has("ambient") || has("chill") {
		return "relaxed"
	}
	if has("sad") || has("blues") {
		return "melancholic"
	}
	return "mellow"
}

// Classify names the vibe. Rules are checked in order.
func Classify(energy float64, tempo Tempo, mood string) string {
	switch {
	case energy < 40 && (tempo == TempoSlow || tempo == TempoMedium):
		return LateNightFlow
	case energy > 70 && strings.Contains(mood, "confident"):
		return DAOEnergy
	case energy >= 50 && energy <= 70 && tempo == TempoMedium:
		return BuildMode
	case energy < 50 && strings.Contains(mood, "relaxed"):
		return CosmicChill
	case energy > 80:
		return HypeWave
	}
	return Balanced
}

// Color returns the hex colour of a vibe.
func Color(vibe string) string {
	if c, ok := colors[vibe]; ok {
		return c
	}
	return defaultColor
}

// Authenticity scores 0-100 how established a track looks from its
// metadata alone.
func Authenticity(t core.Track) int {
	score := 0
	if t.Artist.IsVerified {
		score += 30
	}
	if t.Artwork != "" {
		score += 15
	}
	switch {
	case t.PlayCount > 10000:
		score += 20
	case t.PlayCount > 1000:
		score += 10
	}
	switch {
	case t.FavoriteCount > 100:
		score += 15
	case t.FavoriteCount > 10:
		score += 10
	}
	if t.Genre != "" {
		score += 10
	}
	if !t.IsUnlisted {
		score += 10
	}
	return min(100, score)
}
