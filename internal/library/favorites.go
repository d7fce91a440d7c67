package library

import (
	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
)

// ToggleFavorite adds track to the front of the favorites, or removes it
// if it is already there. It reports whether the track is now a favorite.
func (l *Library) ToggleFavorite(track core.Track) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var favs []core.Track
	if err := l.load(keyFavorites, &favs); err != nil {
		return false, err
	}

	_, idx, found := lo.FindIndexOf(favs, track.Same)
	if found {
		favs = append(favs[:idx], favs[idx+1:]...)
	} else {
		favs = append([]core.Track{track}, favs...)
	}
	if err := l.save(keyFavorites, favs); err != nil {
		return false, err
	}
	return !found, nil
}

// IsFavorite reports whether the track with id is a favorite.
func (l *Library) IsFavorite(id string) (bool, error) {
	favs, err := l.Favorites()
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(favs, func(t core.Track) bool { return t.ID == id }), nil
}

// Favorites returns favorite tracks, most recently added first.
func (l *Library) Favorites() ([]core.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var favs []core.Track
	if err := l.load(keyFavorites, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

// ClearFavorites removes every favorite.
func (l *Library) ClearFavorites() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(bucket, keyFavorites)
}
