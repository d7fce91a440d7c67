package audius

import (
	"time"

	"github.com/tessro/station/internal/core"
)

// convertTrack converts an Audius track to a core track.
func convertTrack(t Track) core.Track {
	return core.Track{
		ID:            t.ID,
		Title:         t.Title,
		Permalink:     t.Permalink,
		Duration:      time.Duration(t.Duration) * time.Second,
		Artist:        convertUser(t.User),
		Artwork:       t.Artwork.pick("480x480", "150x150", "1000x1000"),
		Genre:         t.Genre,
		Mood:          t.Mood,
		Tags:          core.ParseTags(t.Tags),
		PlayCount:     t.PlayCount,
		FavoriteCount: t.FavoriteCount,
		RepostCount:   t.RepostCount,
		IsUnlisted:    t.IsUnlisted,
		ReleaseDate:   t.ReleaseDate,
	}
}

func convertTracks(tracks []Track) []core.Track {
	out := make([]core.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		out = append(out, convertTrack(t))
	}
	return out
}

// convertUser converts an Audius user to a core artist.
func convertUser(u User) core.Artist {
	return core.Artist{
		ID:         u.ID,
		Name:       u.Name,
		Handle:     u.Handle,
		IsVerified: u.IsVerified,
		Picture:    u.ProfilePicture.pick("480x480", "150x150", "1000x1000"),
		Followers:  u.FollowerCount,
		TrackCount: u.TrackCount,
		Bio:        u.Bio,
	}
}
