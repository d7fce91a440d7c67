package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/tessro/station/internal/errors"
)

// Output is the audio destination. Start is called at most once, with the
// tail of the graph. Lock and Unlock guard the graph against the output's
// own streaming goroutine.
type Output interface {
	Start(sr beep.SampleRate, s beep.Streamer) error
	Lock()
	Unlock()
	Suspend() error
	Resume() error
	Suspended() bool
	Close() error
}

// SpeakerOutput plays through the system sound card.
type SpeakerOutput struct {
	Buffer time.Duration

	mu        sync.Mutex
	started   bool
	suspended bool
}

// NewSpeakerOutput returns an output with the given speaker buffer length.
func NewSpeakerOutput(buffer time.Duration) *SpeakerOutput {
	if buffer <= 0 {
		buffer = time.Second / 10
	}
	return &SpeakerOutput{Buffer: buffer}
}

// Start initializes the speaker and begins streaming s.
func (o *SpeakerOutput) Start(sr beep.SampleRate, s beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return nil
	}
	if err := speaker.Init(sr, sr.N(o.Buffer)); err != nil {
		return fmt.Errorf("init speaker: %w: %v", errors.ErrNoAudioDevice, err)
	}
	speaker.Play(s)
	o.started = true
	return nil
}

func (o *SpeakerOutput) Lock()   { speaker.Lock() }
func (o *SpeakerOutput) Unlock() { speaker.Unlock() }

// Suspend pauses the sound card without touching the graph.
func (o *SpeakerOutput) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.started || o.suspended {
		return nil
	}
	if err := speaker.Suspend(); err != nil {
		return err
	}
	o.suspended = true
	return nil
}

// Resume restarts a suspended sound card.
func (o *SpeakerOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.suspended {
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return err
	}
	o.suspended = false
	return nil
}

func (o *SpeakerOutput) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

// Close releases the sound card.
func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		speaker.Clear()
		speaker.Close()
		o.started = false
	}
	return nil
}
