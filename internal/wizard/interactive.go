// Package wizard holds the interactive prompts the CLI falls back to
// when an argument is missing and stdout is a terminal.
package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetSearchFunc sets the search function for the search wizard.
func (i *Interactive) SetSearchFunc(fn SearchFunc) {
	i.searchFunc = fn
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSearch launches the search wizard if interactive mode is available.
// Returns the selected result, or nil if cancelled or not interactive.
func (i *Interactive) PromptSearch(query string) (*SearchResult, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSearch(i.searchFunc, query)
}

// PromptTrack lets the user choose from tracks. ok is false when not
// interactive.
func (i *Interactive) PromptTrack(title string, tracks []core.Track) (index int, ok bool, err error) {
	if !i.CanInteract() || len(tracks) == 0 {
		return 0, false, nil
	}
	index, err = PickTrack(title, tracks)
	return index, err == nil, err
}

// PromptPreset asks for an equalizer preset. ok is false when not
// interactive.
func (i *Interactive) PromptPreset(current eq.Preset) (eq.Preset, bool, error) {
	if !i.CanInteract() {
		return current, false, nil
	}
	p, err := PickPreset(current)
	return p, err == nil, err
}

// NeedsQuery returns true if a query argument is required but missing.
func NeedsQuery(args []string) bool {
	return len(args) == 0
}
