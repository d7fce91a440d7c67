// Package store is the key-value capability behind the local libraries
// and caches. Values live in named buckets and may carry a time-to-live.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Entry is one stored value.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry has a TTL that has passed at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Store is a bucketed key-value store. A ttl of zero means the entry
// never expires. Expired entries are invisible to Get and List.
type Store interface {
	Get(bucket, key string) ([]byte, bool, error)
	Put(bucket, key string, value []byte, ttl time.Duration) error
	Delete(bucket, key string) error
	List(bucket string) ([]Entry, error)
	Clear(bucket string) error
	Close() error
}

// Clock returns the current time.
type Clock func() time.Time

// GetJSON decodes the value at bucket/key into v.
func GetJSON(s Store, bucket, key string, v any) (bool, error) {
	data, ok, err := s.Get(bucket, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it at bucket/key.
func PutJSON(s Store, bucket, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return s.Put(bucket, key, data, ttl)
}
