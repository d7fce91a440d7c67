package core

import (
	"strings"
	"time"
)

// Artist is the uploader of a track.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Handle     string `json:"handle"`
	IsVerified bool   `json:"is_verified"`
	Picture    string `json:"picture,omitempty"`
	Followers  int    `json:"followers,omitempty"`
	TrackCount int    `json:"track_count,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// Track represents a playable catalog track. Two tracks are the same
// track when their IDs match.
type Track struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Permalink     string        `json:"permalink,omitempty"`
	Duration      time.Duration `json:"duration"`
	Artist        Artist        `json:"artist"`
	Artwork       string        `json:"artwork,omitempty"`
	Genre         string        `json:"genre,omitempty"`
	Mood          string        `json:"mood,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	PlayCount     int           `json:"play_count"`
	FavoriteCount int           `json:"favorite_count"`
	RepostCount   int           `json:"repost_count"`
	IsUnlisted    bool          `json:"is_unlisted,omitempty"`
	ReleaseDate   string        `json:"release_date,omitempty"`
}

// Same reports whether t and other identify the same catalog entry.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

// DisplayName returns "Artist - Title".
func (t Track) DisplayName() string {
	if t.Artist.Name == "" {
		return t.Title
	}
	return t.Artist.Name + " - " + t.Title
}

// ParseTags splits a comma-separated tag list, dropping blanks.
func ParseTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
