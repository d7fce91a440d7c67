package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/spectrum"
)

// TrackOptions labels tracks for a picker. The value is the track's
// index in tracks.
func TrackOptions(tracks []core.Track) []huh.Option[int] {
	options := make([]huh.Option[int], len(tracks))
	for i, t := range tracks {
		label := t.DisplayName()
		if t.Duration > 0 {
			label = fmt.Sprintf("%s (%d:%02d)", label, int(t.Duration.Minutes()), int(t.Duration.Seconds())%60)
		}
		options[i] = huh.NewOption(label, i)
	}
	return options
}

// PickTrack asks the user to choose one of tracks and returns its index.
func PickTrack(title string, tracks []core.Track) (int, error) {
	if len(tracks) == 0 {
		return 0, fmt.Errorf("no tracks to choose from")
	}
	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(TrackOptions(tracks)...).
				Height(min(len(tracks)+2, 15)).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}

// PickPreset asks for an equalizer preset, starting on current.
func PickPreset(current eq.Preset) (eq.Preset, error) {
	var options []huh.Option[eq.Preset]
	for _, p := range eq.Presets {
		options = append(options, huh.NewOption(p.String(), p))
	}

	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[eq.Preset]().
				Title("Equalizer preset").
				Description("Applied at startup and saved to the config file").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return current, fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}

// PickVisualizer asks for a spectrum mode, starting on current.
func PickVisualizer(current spectrum.Mode) (spectrum.Mode, error) {
	var options []huh.Option[spectrum.Mode]
	for _, m := range spectrum.Modes {
		options = append(options, huh.NewOption(m.String(), m))
	}

	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[spectrum.Mode]().
				Title("Visualizer").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return current, fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}

// ConfirmClear asks before wiping part of the library.
func ConfirmClear(what string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Clear %s?", what)).
		Description("This cannot be undone").
		Affirmative("Clear").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}
