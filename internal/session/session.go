// Package session assembles a running station: the store, library,
// catalog client, audio controller, player, equalizer and vibe cache.
// The TUI, the headless player and the remote all drive one Session.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/tessro/station/internal/audio"
	"github.com/tessro/station/internal/audius"
	"github.com/tessro/station/internal/config"
	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/library"
	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/store"
	"github.com/tessro/station/internal/vibe"
)

// DefaultVibeDelay is how long a track plays before it is analysed.
const DefaultVibeDelay = time.Second

// Options configures Open. Nil fields select the real implementations
// described by Config.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	Store      store.Store
	Output     audio.Output
	Loader     audio.Loader
	HTTPClient *http.Client
	Rand       *rand.Rand
	VibeDelay  time.Duration
}

// Session owns the long-lived components. Close releases them.
type Session struct {
	Config  *config.Config
	Store   store.Store
	Library *library.Library
	Catalog *audius.Client
	Audio   *audio.Controller
	Player  *player.Player
	EQ      *eq.Panel
	Vibes   *vibe.Cache

	analyzer  *vibe.Analyzer
	vibeDelay time.Duration
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc

	cfgMu sync.Mutex // guards Config.Defaults after Open

	mu          sync.Mutex
	vibeTimer   *time.Timer
	shuffleDone bool
	closed      bool
}

var errNoTrack = errors.New("nothing is playing")

// Open builds a session from opts. The audio device is not touched until
// the first playback intent.
func Open(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	st := opts.Store
	if st == nil {
		db, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, errors.WithSuggestion(
				fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err),
				"Check that store.path is writable, or close other station processes")
		}
		if err := db.Prune(); err != nil {
			log.Warn("prune expired store entries", "error", err)
		}
		st = db
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		Config:    cfg,
		Store:     st,
		Library:   library.New(st),
		Vibes:     vibe.NewCache(st, cfg.Store.VibeTTLDuration()),
		vibeDelay: opts.VibeDelay,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	if s.vibeDelay <= 0 {
		s.vibeDelay = DefaultVibeDelay
	}

	s.Catalog = audius.New(audius.Options{
		DiscoveryURL: cfg.Catalog.DiscoveryURL,
		AppName:      cfg.Catalog.AppName,
		Timeout:      cfg.Catalog.TimeoutDuration(),
		HostTTL:      cfg.Catalog.HostTTLDuration(),
		ArtistTTL:    cfg.Catalog.ArtistTTLDuration(),
		Scheme:       schemeOf(cfg.Catalog.DiscoveryURL),
		Cache:        st,
		HTTPClient:   opts.HTTPClient,
		Logger:       log.With("component", "catalog"),
		Rand:         opts.Rand,
	})

	out := opts.Output
	if out == nil {
		out = audio.NewSpeakerOutput(cfg.Audio.Buffer())
	}
	loader := opts.Loader
	if loader == nil {
		l := audio.NewHTTPLoader(cfg.Catalog.TimeoutDuration())
		if n := cfg.Audio.MaxStreamBytes(); n > 0 {
			l.MaxBytes = n
		}
		loader = l
	}
	s.Audio = audio.New(audio.Options{
		Output:     out,
		Loader:     loader,
		Resolver:   s.Catalog,
		SampleRate: beep.SampleRate(cfg.Audio.SampleRate),
		Volume:     float64(cfg.Defaults.Volume) / 100,
		Logger:     log,
	})
	s.Player = player.New(ctx, s.Audio, player.Options{
		History: s.Library,
		Logger:  log,
		Rand:    opts.Rand,
	})
	s.EQ = eq.NewPanel(s.Audio)
	s.analyzer = vibe.NewAnalyzer(s.Audio)

	if preset, err := eq.ParsePreset(cfg.Defaults.Preset); err == nil {
		s.EQ.ApplyPreset(preset)
	}
	if mode, err := core.ParseRepeatMode(cfg.Defaults.Repeat); err == nil {
		s.Player.SetRepeatMode(mode)
	}
	s.Audio.AddListener(s.onAudioEvent)

	log.Debug("session open", "store", cfg.Store.Path, "catalog", cfg.Catalog.DiscoveryURL)
	return s, nil
}

// schemeOf picks the scheme used to reach discovered hosts. A plain-http
// discovery endpoint implies plain-http hosts.
func schemeOf(discoveryURL string) string {
	if strings.HasPrefix(discoveryURL, "http://") {
		return "http"
	}
	return "https"
}

// Close stops pending analysis, the audio graph and the store.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.vibeTimer != nil {
		s.vibeTimer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	return errors.Join(s.Audio.Close(), s.Store.Close())
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.log }
