package core

import (
	"context"
	"time"
)

// Catalog supplies ordered track lists for the queue.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]Track, error)
	Trending(ctx context.Context, period TimeRange, genre string, limit int) ([]Track, error)
	UserTracks(ctx context.Context, artistID string, limit int) ([]Track, error)
}

// StreamResolver turns a track into a playable URL.
type StreamResolver interface {
	StreamURL(ctx context.Context, track Track) (string, error)
}

// History receives every track that starts playing.
type History interface {
	AddRecent(track Track) error
}

// HistoryEntry represents a recently played track.
type HistoryEntry struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// TimeRange is a trending window.
type TimeRange string

const (
	TimeWeek    TimeRange = "week"
	TimeMonth   TimeRange = "month"
	TimeYear    TimeRange = "year"
	TimeAllTime TimeRange = "allTime"
)

// ParseTimeRange validates a trending window name.
func ParseTimeRange(s string) (TimeRange, bool) {
	switch TimeRange(s) {
	case TimeWeek, TimeMonth, TimeYear, TimeAllTime:
		return TimeRange(s), true
	case "all", "alltime", "all-time":
		return TimeAllTime, true
	}
	return "", false
}
