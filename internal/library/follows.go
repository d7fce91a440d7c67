package library

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
)

// Follow is a followed artist.
type Follow struct {
	ArtistID     string    `json:"artist_id"`
	ArtistName   string    `json:"artist_name"`
	ArtistHandle string    `json:"artist_handle"`
	FollowedAt   time.Time `json:"followed_at"`
}

func (l *Library) follows() ([]Follow, error) {
	var follows []Follow
	if err := l.load(keyFollows, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

// Follow starts following artist. Following an artist twice is a no-op.
func (l *Library) Follow(artist core.Artist) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	follows, err := l.follows()
	if err != nil {
		return err
	}
	if lo.ContainsBy(follows, func(f Follow) bool { return f.ArtistID == artist.ID }) {
		return nil
	}
	follows = append([]Follow{{
		ArtistID:     artist.ID,
		ArtistName:   artist.Name,
		ArtistHandle: artist.Handle,
		FollowedAt:   l.now(),
	}}, follows...)
	return l.save(keyFollows, follows)
}

// Unfollow stops following the artist with id.
func (l *Library) Unfollow(artistID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	follows, err := l.follows()
	if err != nil {
		return err
	}
	kept := lo.Reject(follows, func(f Follow, _ int) bool { return f.ArtistID == artistID })
	if len(kept) == len(follows) {
		return nil
	}
	return l.save(keyFollows, kept)
}

// ToggleFollow follows or unfollows artist and reports whether the
// artist is now followed.
func (l *Library) ToggleFollow(artist core.Artist) (bool, error) {
	following, err := l.IsFollowing(artist.ID)
	if err != nil {
		return false, err
	}
	if following {
		return false, l.Unfollow(artist.ID)
	}
	return true, l.Follow(artist)
}

// IsFollowing reports whether the artist with id is followed.
func (l *Library) IsFollowing(artistID string) (bool, error) {
	follows, err := l.Follows()
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(follows, func(f Follow) bool { return f.ArtistID == artistID }), nil
}

// Follows returns followed artists, newest first.
func (l *Library) Follows() ([]Follow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.follows()
}

// FollowCount returns the number of followed artists.
func (l *Library) FollowCount() (int, error) {
	follows, err := l.Follows()
	return len(follows), err
}

// ExportFollows returns the follow list as indented JSON.
func (l *Library) ExportFollows() ([]byte, error) {
	follows, err := l.Follows()
	if err != nil {
		return nil, err
	}
	if follows == nil {
		follows = []Follow{}
	}
	return json.MarshalIndent(follows, "", "  ")
}
