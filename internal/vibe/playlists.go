package vibe

import (
	"sort"

	"github.com/tessro/station/internal/core"
)

// Playlist is a group of tracks sharing a vibe.
type Playlist struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Vibe        string       `json:"vibe"`
	MinEnergy   float64      `json:"min_energy"`
	MaxEnergy   float64      `json:"max_energy"`
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
	Tracks      []core.Track `json:"tracks"`
}

func playlistTemplates() []Playlist {
	return []Playlist{
		{Name: LateNightFlow, Description: "Smooth, low-energy vibes for coding at 2 AM", Vibe: LateNightFlow, MinEnergy: 0, MaxEnergy: 40, Icon: "🌙"},
		{Name: DAOEnergy, Description: "High-energy tracks for building with your crew", Vibe: DAOEnergy, MinEnergy: 70, MaxEnergy: 100, Icon: "⚡"},
		{Name: BuildMode, Description: "Focused, balanced energy for deep work", Vibe: BuildMode, MinEnergy: 45, MaxEnergy: 70, Icon: "🏗"},
		{Name: CosmicChill, Description: "Relaxed atmospheric sounds for exploration", Vibe: CosmicChill, MinEnergy: 0, MaxEnergy: 50, Icon: "🌌"},
		{Name: HypeWave, Description: "Maximum energy for launches and celebrations", Vibe: HypeWave, MinEnergy: 80, MaxEnergy: 100, Icon: "🚀"},
	}
}

// AdaptivePlaylists sorts tracks with a profile into the vibe playlists.
// A track joins a playlist when its vibe matches and its energy is in
// range. Empty playlists are dropped; the rest are ordered by size.
func AdaptivePlaylists(tracks []core.Track, profiles map[string]Profile) []Playlist {
	lists := playlistTemplates()
	for i := range lists {
		lists[i].Color = Color(lists[i].Vibe)
	}

	for _, t := range tracks {
		p, ok := profiles[t.ID]
		if !ok {
			continue
		}
		for i := range lists {
			pl := &lists[i]
			if p.Vibe == pl.Vibe && p.Energy >= pl.MinEnergy && p.Energy <= pl.MaxEnergy {
				pl.Tracks = append(pl.Tracks, t)
			}
		}
	}

	out := lists[:0]
	for _, pl := range lists {
		if len(pl.Tracks) > 0 {
			out = append(out, pl)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Tracks) > len(out[j].Tracks) })
	return out
}
