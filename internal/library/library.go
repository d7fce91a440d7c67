// Package library keeps the listener's local collections: recently
// played tracks, favorites, followed artists and sent tips.
package library

import (
	"fmt"
	"sync"
	"time"

	"github.com/tessro/station/internal/store"
)

const (
	bucket = "library"

	keyRecent    = "recent"
	keyFavorites = "favorites"
	keyFollows   = "follows"
	keyTips      = "tips"
)

// Library is a set of collections persisted in a store. Each collection
// is kept as one JSON document.
type Library struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// New returns a library backed by s.
func New(s store.Store, opts ...Option) *Library {
	l := &Library{store: s, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) load(key string, v any) error {
	if _, err := store.GetJSON(l.store, bucket, key, v); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

func (l *Library) save(key string, v any) error {
	if err := store.PutJSON(l.store, bucket, key, v, 0); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
