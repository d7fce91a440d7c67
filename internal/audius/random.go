package audius

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/errors"
)

// DiscoveryGenres are the genres the random loader samples from.
var DiscoveryGenres = []string{
	"Electronic", "Hip-Hop/Rap", "Alternative", "Pop", "R&B/Soul",
	"Rock", "Dance & EDM", "Latin", "House", "Techno",
}

var discoveryQueries = []string{"beats", "remix", "original", "live"}

const (
	randomGenres       = 4
	maxTracksPerArtist = 3
	DefaultRandomLimit = 100
)

// RandomTracks mixes trending tracks from several periods, a few random
// genres and one random search into a shuffled list with at most three
// tracks per artist. Failed sources are reported in the result's Errors;
// when every source fails it falls back to weekly trending.
func (c *Client) RandomTracks(ctx context.Context, limit int) (*errors.PartialResult[[]core.Track], error) {
	if limit <= 0 {
		limit = DefaultRandomLimit
	}
	if _, err := c.Host(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	genres := lo.Map(c.rng.Perm(len(DiscoveryGenres))[:randomGenres], func(i, _ int) string {
		return DiscoveryGenres[i]
	})
	query := discoveryQueries[c.rng.IntN(len(discoveryQueries))]
	c.mu.Unlock()

	type source struct {
		name  string
		fetch func() ([]core.Track, error)
	}
	var sources []source
	for _, period := range []core.TimeRange{core.TimeWeek, core.TimeMonth, core.TimeYear} {
		sources = append(sources, source{
			name:  "trending " + string(period),
			fetch: func() ([]core.Track, error) { return c.Trending(ctx, period, "", 30) },
		})
	}
	for _, genre := range genres {
		sources = append(sources, source{
			name:  "genre " + genre,
			fetch: func() ([]core.Track, error) { return c.Trending(ctx, core.TimeWeek, genre, 25) },
		})
	}
	sources = append(sources, source{
		name:  "search " + query,
		fetch: func() ([]core.Track, error) { return c.Search(ctx, query, 30) },
	})

	results := make([][]core.Track, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Go(func() {
			results[i], errs[i] = src.fetch()
			if errs[i] != nil {
				errs[i] = fmt.Errorf("%s: %w", src.name, errs[i])
			}
		})
	}
	wg.Wait()

	result := &errors.PartialResult[[]core.Track]{}
	for _, err := range errs {
		result.AddError(err)
	}

	if len(result.Errors) == len(sources) {
		c.logger.Warn("random sources all failed, falling back to trending", "err", result.Err())
		tracks, err := c.Trending(ctx, core.TimeWeek, "", 50)
		if err != nil {
			return nil, fmt.Errorf("random tracks: %w", errors.Join(result.Err(), err))
		}
		c.shuffle(tracks)
		result.Data = tracks
		return result, nil
	}

	result.Data = c.mixTracks(lo.Flatten(results), limit)
	return result, nil
}

// mixTracks dedupes by id, caps each artist at maxTracksPerArtist, then
// orders by play count with enough noise that every call differs.
func (c *Client) mixTracks(all []core.Track, limit int) []core.Track {
	perArtist := make(map[string]int)
	seen := make(map[string]bool)
	var kept []core.Track
	for _, t := range all {
		if t.ID == "" || t.Artist.ID == "" || seen[t.ID] {
			continue
		}
		if perArtist[t.Artist.ID] >= maxTracksPerArtist {
			continue
		}
		seen[t.ID] = true
		perArtist[t.Artist.ID]++
		kept = append(kept, t)
	}

	c.shuffle(kept)

	c.mu.Lock()
	keys := make(map[string]float64, len(kept))
	for _, t := range kept {
		keys[t.ID] = float64(t.PlayCount)*0.0001 + c.rng.Float64()
	}
	c.mu.Unlock()
	sort.SliceStable(kept, func(i, j int) bool { return keys[kept[i].ID] > keys[kept[j].ID] })

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func (c *Client) shuffle(tracks []core.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rng.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
}
