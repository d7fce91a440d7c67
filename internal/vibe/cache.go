package vibe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tessro/station/internal/store"
)

const (
	profileBucket = "vibes"
	cosignBucket  = "cosigns"
	markBucket    = "cosigned"

	// DefaultTTL is how long a profile is kept before it is re-analysed.
	DefaultTTL = 7 * 24 * time.Hour
)

// Cache persists profiles with a TTL and cosign counts without one.
type Cache struct {
	store store.Store
	ttl   time.Duration
}

// NewCache returns a cache over s. A ttl of zero selects DefaultTTL.
func NewCache(s store.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl}
}

// Save stores p, carrying over the track's cosign count.
func (c *Cache) Save(p Profile) error {
	n, err := c.Cosigns(p.TrackID)
	if err != nil {
		return err
	}
	p.Cosigns = n
	return store.PutJSON(c.store, profileBucket, p.TrackID, p, c.ttl)
}

// Get returns the cached profile for trackID.
func (c *Cache) Get(trackID string) (Profile, bool, error) {
	var p Profile
	ok, err := store.GetJSON(c.store, profileBucket, trackID, &p)
	return p, ok, err
}

// All returns every unexpired profile keyed by track id.
func (c *Cache) All() (map[string]Profile, error) {
	entries, err := c.store.List(profileBucket)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Profile, len(entries))
	for _, e := range entries {
		var p Profile
		if err := json.Unmarshal(e.Value, &p); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", e.Key, err)
		}
		out[e.Key] = p
	}
	return out, nil
}

// AddCosign increments the cosign count for trackID, updating a cached
// profile if present, and returns the new count.
func (c *Cache) AddCosign(trackID string) (int, error) {
	n, err := c.Cosigns(trackID)
	if err != nil {
		return 0, err
	}
	n++
	if err := c.store.Put(cosignBucket, trackID, []byte(strconv.Itoa(n)), 0); err != nil {
		return 0, err
	}

	if p, ok, err := c.Get(trackID); err == nil && ok {
		p.Cosigns = n
		if err := store.PutJSON(c.store, profileBucket, trackID, p, c.ttl); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Cosigns returns the cosign count for trackID.
func (c *Cache) Cosigns(trackID string) (int, error) {
	data, ok, err := c.store.Get(cosignBucket, trackID)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Cosign adds this listener's cosign for trackID. A track can be
// cosigned once; later calls return the count with added false.
func (c *Cache) Cosign(trackID string) (n int, added bool, err error) {
	_, done, err := c.store.Get(markBucket, trackID)
	if err != nil {
		return 0, false, err
	}
	if done {
		n, err = c.Cosigns(trackID)
		return n, false, err
	}
	if n, err = c.AddCosign(trackID); err != nil {
		return n, false, err
	}
	return n, true, c.store.Put(markBucket, trackID, []byte("1"), 0)
}

// Cosigned reports whether this listener already cosigned trackID.
func (c *Cache) Cosigned(trackID string) (bool, error) {
	_, ok, err := c.store.Get(markBucket, trackID)
	return ok, err
}
