package session

import (
	"time"

	"github.com/samber/lo"

	"github.com/tessro/station/internal/audio"
	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/vibe"
)

// onAudioEvent schedules a vibe analysis shortly after a track starts
// playing, giving the analyser time to fill.
func (s *Session) onAudioEvent(e audio.Event) {
	if e.Type != audio.EventPlaying || e.Track.ID == "" {
		return
	}
	track := e.Track

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.vibeTimer != nil {
		s.vibeTimer.Stop()
	}
	s.vibeTimer = time.AfterFunc(s.vibeDelay, func() { s.autoAnalyze(track) })
}

func (s *Session) autoAnalyze(track core.Track) {
	if cur, ok := s.Audio.Track(); !ok || cur.ID != track.ID || !s.Audio.IsPlaying() {
		return
	}
	if _, ok, err := s.Vibes.Get(track.ID); err != nil || ok {
		return
	}
	if _, err := s.analyze(track); err != nil {
		s.log.Warn("save vibe profile", "track", track.ID, "error", err)
	}
}

func (s *Session) analyze(track core.Track) (vibe.Profile, error) {
	p := s.analyzer.Analyze(track)
	if err := s.Vibes.Save(p); err != nil {
		return p, err
	}
	s.log.Debug("vibe analysed", "track", track.ID, "vibe", p.Vibe, "energy", p.Energy)
	saved, ok, err := s.Vibes.Get(track.ID)
	if err != nil || !ok {
		return p, err
	}
	return saved, nil
}

// Vibe returns the current track's profile, analysing it now if no
// cached profile exists.
func (s *Session) Vibe() (vibe.Profile, error) {
	cur, ok := s.Player.Current()
	if !ok {
		return vibe.Profile{}, errNoTrack
	}
	if p, ok, err := s.Vibes.Get(cur.ID); err != nil || ok {
		return p, err
	}
	return s.analyze(cur)
}

// Reanalyze replaces the current track's cached profile.
func (s *Session) Reanalyze() (vibe.Profile, error) {
	cur, ok := s.Player.Current()
	if !ok {
		return vibe.Profile{}, errNoTrack
	}
	return s.analyze(cur)
}

// Cosign cosigns the current track's vibe. It reports false when this
// listener already cosigned it.
func (s *Session) Cosign() (int, bool, error) {
	cur, ok := s.Player.Current()
	if !ok {
		return 0, false, errNoTrack
	}
	return s.Vibes.Cosign(cur.ID)
}

// Playlists buckets the queue, recently played and favorites into the
// adaptive vibe playlists. Tracks without a cached profile are skipped.
func (s *Session) Playlists() ([]vibe.Playlist, error) {
	profiles, err := s.Vibes.All()
	if err != nil {
		return nil, err
	}
	recent, err := s.Library.RecentTracks()
	if err != nil {
		return nil, err
	}
	favs, err := s.Library.Favorites()
	if err != nil {
		return nil, err
	}
	tracks := lo.UniqBy(lo.Flatten([][]core.Track{s.Player.Queue().Tracks, recent, favs}),
		func(t core.Track) string { return t.ID })
	return vibe.AdaptivePlaylists(tracks, profiles), nil
}
