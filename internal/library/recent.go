package library

import (
	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
)

// MaxRecent is the number of recently played tracks kept.
const MaxRecent = 50

// AddRecent records track as just played. A track already in the list
// moves to the front.
func (l *Library) AddRecent(track core.Track) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []core.HistoryEntry
	if err := l.load(keyRecent, &entries); err != nil {
		return err
	}
	entries = lo.Reject(entries, func(e core.HistoryEntry, _ int) bool {
		return e.Track.Same(track)
	})
	entries = append([]core.HistoryEntry{{Track: track, PlayedAt: l.now()}}, entries...)
	if len(entries) > MaxRecent {
		entries = entries[:MaxRecent]
	}
	return l.save(keyRecent, entries)
}

// Recent returns recently played tracks, newest first.
func (l *Library) Recent() ([]core.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []core.HistoryEntry
	if err := l.load(keyRecent, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RecentTracks returns just the tracks of Recent.
func (l *Library) RecentTracks() ([]core.Track, error) {
	entries, err := l.Recent()
	if err != nil {
		return nil, err
	}
	return lo.Map(entries, func(e core.HistoryEntry, _ int) core.Track { return e.Track }), nil
}

// ClearRecent forgets the play history.
func (l *Library) ClearRecent() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(bucket, keyRecent)
}

var _ core.History = (*Library)(nil)
