package spectrum

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = time.Second / 30

// FrameMsg asks the model to redraw the spectrum.
type FrameMsg struct {
	gen  int
	Time time.Time
}

// Animator schedules frame ticks for a bubbletea model while playback is
// running. Each Stop bumps a generation counter so ticks already in
// flight are dropped instead of rescheduling themselves.
type Animator struct {
	Interval time.Duration

	gen     int
	running bool
}

// Sync starts or stops the loop to match playing.
func (a *Animator) Sync(playing bool) tea.Cmd {
	if playing {
		return a.Start()
	}
	a.Stop()
	return nil
}

// Start begins the frame loop if it is not already running.
func (a *Animator) Start() tea.Cmd {
	if a.running {
		return nil
	}
	a.running = true
	a.gen++
	return a.tick()
}

// Stop cancels the frame loop. No further frames are scheduled.
func (a *Animator) Stop() {
	if !a.running {
		return
	}
	a.running = false
	a.gen++
}

// Running reports whether frames are being scheduled.
func (a *Animator) Running() bool {
	return a.running
}

// Update handles a frame tick. It reports whether the frame belongs to
// the current loop and returns the next tick.
func (a *Animator) Update(msg FrameMsg) (bool, tea.Cmd) {
	if !a.running || msg.gen != a.gen {
		return false, nil
	}
	return true, a.tick()
}

func (a *Animator) tick() tea.Cmd {
	gen := a.gen
	interval := a.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{gen: gen, Time: t}
	})
}

// Source is an analysis tap that can report whether audio is flowing.
type Source interface {
	IsPlaying() bool
	FrequencyBinCount() int
	FrequencyData(dst []byte)
}

// Loop samples src every interval while it is playing and passes the
// 64-bucket frame to fn. It returns when ctx is done.
func Loop(ctx context.Context, src Source, interval time.Duration, fn func([]byte)) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	data := make([]byte, src.FrequencyBinCount())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !src.IsPlaying() {
				continue
			}
			src.FrequencyData(data)
			fn(Downsample(data, Buckets))
		}
	}
}
