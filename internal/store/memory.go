package store

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	now     Clock
	buckets map[string]map[string]Entry
	closed  bool
}

// NewMemory returns an empty store using clock, or time.Now if nil.
func NewMemory(clock Clock) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{now: clock, buckets: map[string]map[string]Entry{}}
}

func (m *Memory) Get(bucket, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	e, ok := m.buckets[bucket][key]
	if !ok || e.Expired(m.now()) {
		return nil, false, nil
	}
	return slices.Clone(e.Value), true, nil
}

func (m *Memory) Put(bucket, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	b := m.buckets[bucket]
	if b == nil {
		b = map[string]Entry{}
		m.buckets[bucket] = b
	}
	now := m.now()
	e := Entry{Key: key, Value: slices.Clone(value), UpdatedAt: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	b[key] = e
	return nil
}

func (m *Memory) Delete(bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.buckets[bucket], key)
	return nil
}

func (m *Memory) List(bucket string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	now := m.now()
	var out []Entry
	for _, e := range m.buckets[bucket] {
		if e.Expired(now) {
			continue
		}
		e.Value = slices.Clone(e.Value)
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (m *Memory) Clear(bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.buckets, bucket)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
