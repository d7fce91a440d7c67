package audius

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/store"
)

func limitParams(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) tracks(ctx context.Context, path string, params url.Values) ([]core.Track, error) {
	var resp response[[]Track]
	if err := c.Get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return convertTracks(resp.Data), nil
}

// Search returns tracks matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.Track, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	q := limitParams(limit)
	q.Set("query", query)
	return c.tracks(ctx, "/v1/tracks/search", q)
}

// Trending returns trending tracks for period, optionally restricted to genre.
func (c *Client) Trending(ctx context.Context, period core.TimeRange, genre string, limit int) ([]core.Track, error) {
	q := limitParams(limit)
	if period != "" {
		q.Set("time", string(period))
	}
	if genre != "" {
		q.Set("genre", genre)
	}
	return c.tracks(ctx, "/v1/tracks/trending", q)
}

// GenreTracks searches for genre and keeps only tracks tagged with exactly
// that genre, compared case-insensitively.
func (c *Client) GenreTracks(ctx context.Context, genre string, limit int) ([]core.Track, error) {
	tracks, err := c.Search(ctx, genre, limit)
	if err != nil {
		return nil, err
	}
	return lo.Filter(tracks, func(t core.Track, _ int) bool {
		return strings.EqualFold(t.Genre, genre)
	}), nil
}

// DefaultGenreLimit is the result size of GenreDeep when limit is zero.
const DefaultGenreLimit = 150

// GenreDeep combines monthly trending for genre with GenreTracks, drops
// duplicates and orders the result by play count. It fails only when
// both sources fail.
func (c *Client) GenreDeep(ctx context.Context, genre string, limit int) ([]core.Track, error) {
	if limit <= 0 {
		limit = DefaultGenreLimit
	}
	half := limit / 2

	var (
		wg                sync.WaitGroup
		trending, matched []core.Track
		trendErr, findErr error
	)
	wg.Go(func() { trending, trendErr = c.Trending(ctx, core.TimeMonth, genre, half) })
	wg.Go(func() { matched, findErr = c.GenreTracks(ctx, genre, half) })
	wg.Wait()

	if trendErr != nil && findErr != nil {
		return nil, fmt.Errorf("genre %q: %w", genre, errors.Join(trendErr, findErr))
	}
	if trendErr != nil {
		c.logger.Warn("genre trending failed", "genre", genre, "err", trendErr)
	}
	if findErr != nil {
		c.logger.Warn("genre search failed", "genre", genre, "err", findErr)
	}

	all := lo.UniqBy(append(trending, matched...), func(t core.Track) string { return t.ID })
	sort.SliceStable(all, func(i, j int) bool { return all[i].PlayCount > all[j].PlayCount })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Track returns the track with id.
func (c *Client) Track(ctx context.Context, id string) (core.Track, error) {
	var resp response[Track]
	if err := c.Get(ctx, "/v1/tracks/"+url.PathEscape(id), nil, &resp); err != nil {
		if IsNotFound(err) {
			return core.Track{}, fmt.Errorf("%w: %s", errors.ErrTrackNotFound, id)
		}
		return core.Track{}, err
	}
	if resp.Data.ID == "" {
		return core.Track{}, fmt.Errorf("%w: %s", errors.ErrTrackNotFound, id)
	}
	return convertTrack(resp.Data), nil
}

// User returns the artist with id. Results are cached for the artist TTL.
func (c *Client) User(ctx context.Context, id string) (core.Artist, error) {
	var artist core.Artist
	if ok, err := store.GetJSON(c.cache, "artists", id, &artist); err == nil && ok {
		return artist, nil
	}

	var resp response[User]
	if err := c.Get(ctx, "/v1/users/"+url.PathEscape(id), nil, &resp); err != nil {
		if IsNotFound(err) {
			return core.Artist{}, errors.WithSuggestion(
				fmt.Errorf("%w: %s", errors.ErrArtistNotFound, id),
				"Run 'station artist <name>' to search by name")
		}
		return core.Artist{}, err
	}
	if resp.Data.ID == "" {
		return core.Artist{}, fmt.Errorf("%w: %s", errors.ErrArtistNotFound, id)
	}

	artist = convertUser(resp.Data)
	if err := store.PutJSON(c.cache, "artists", id, artist, c.artistTTL); err != nil {
		c.logger.Warn("cache artist", "id", id, "err", err)
	}
	return artist, nil
}

// ForgetUser drops the cached artist with id, or every cached artist
// when id is empty.
func (c *Client) ForgetUser(id string) error {
	if id == "" {
		return c.cache.Clear("artists")
	}
	return c.cache.Delete("artists", id)
}

// UserTracks returns tracks uploaded by the artist with id.
func (c *Client) UserTracks(ctx context.Context, id string, limit int) ([]core.Track, error) {
	return c.tracks(ctx, "/v1/users/"+url.PathEscape(id)+"/tracks", limitParams(limit))
}

// SearchUsers returns artists matching query.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]core.Artist, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	q := limitParams(limit)
	q.Set("query", query)

	var resp response[[]User]
	if err := c.Get(ctx, "/v1/users/search", q, &resp); err != nil {
		return nil, err
	}
	return lo.Map(resp.Data, func(u User, _ int) core.Artist { return convertUser(u) }), nil
}

var (
	_ core.Catalog        = (*Client)(nil)
	_ core.StreamResolver = (*Client)(nil)
)
