package audius

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/store"
)

func init() {
	baseRetryWait = time.Millisecond
}

type fakeAPI struct {
	*httptest.Server
	discoveries atomic.Int32
	requests    atomic.Int32
	mux         *http.ServeMux
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{mux: http.NewServeMux()}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			api.discoveries.Add(1)
			writeJSON(w, map[string]any{"data": []string{api.URL}})
			return
		}
		api.requests.Add(1)
		if got := r.URL.Query().Get("app_name"); got != "test" {
			http.Error(w, "missing app_name", http.StatusBadRequest)
			return
		}
		api.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.Close)
	return api
}

func (api *fakeAPI) client() *Client {
	return New(Options{
		DiscoveryURL: api.URL,
		AppName:      "test",
		Scheme:       "http",
		Rand:         rand.New(rand.NewPCG(1, 2)),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func wireTrack(id, artistID string, plays int, genre string) Track {
	return Track{
		ID:        id,
		Title:     "Title " + id,
		Duration:  200,
		PlayCount: plays,
		Genre:     genre,
		User:      User{ID: artistID, Name: "Artist " + artistID, Handle: "h" + artistID},
	}
}

func TestDiscoverStripsSchemeAndCaches(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	host, err := c.Host(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(host, "://") {
		t.Errorf("host %q still has a scheme", host)
	}
	if _, err := c.Host(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := api.discoveries.Load(); n != 1 {
		t.Errorf("discoveries = %d, want 1", n)
	}
}

func TestDiscoverUsesSharedCache(t *testing.T) {
	api := newFakeAPI(t)
	cache := store.NewMemory(nil)

	for range 2 {
		c := New(Options{DiscoveryURL: api.URL, AppName: "test", Scheme: "http", Cache: cache})
		if _, err := c.Host(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := api.discoveries.Load(); n != 1 {
		t.Errorf("discoveries = %d, want 1", n)
	}
}

func TestDiscoverNoHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []string{}})
	}))
	defer srv.Close()

	c := New(Options{DiscoveryURL: srv.URL})
	_, err := c.Host(context.Background())
	if !errors.Is(err, errors.ErrNoHosts) {
		t.Errorf("err = %v, want ErrNoHosts", err)
	}
}

func TestDiscoverBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{"https://node.example.com/"})
	}))
	defer srv.Close()

	c := New(Options{DiscoveryURL: srv.URL})
	host, err := c.Host(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if host != "node.example.com" {
		t.Errorf("host = %q", host)
	}
}

func TestStreamURL(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	got, err := c.StreamURL(context.Background(), core.Track{ID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	want := api.URL + "/v1/tracks/abc/stream?app_name=test"
	if got != want {
		t.Errorf("StreamURL = %q, want %q", got, want)
	}

	if _, err := c.StreamURL(context.Background(), core.Track{}); !errors.Is(err, errors.ErrTrackNotFound) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestSearchConvertsTracks(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/tracks/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "lofi" || r.URL.Query().Get("limit") != "5" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		tr := wireTrack("t1", "u1", 42, "Lo-Fi")
		tr.Tags = "chill, study,"
		tr.Artwork = Images{"150x150": "small", "480x480": "medium"}
		writeJSON(w, response[[]Track]{Data: []Track{tr, {Title: "no id"}}})
	})

	tracks, err := api.client().Search(context.Background(), "lofi", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.Duration != 200*time.Second {
		t.Errorf("Duration = %v", tr.Duration)
	}
	if tr.Artist.Handle != "hu1" {
		t.Errorf("Artist = %+v", tr.Artist)
	}
	if tr.Artwork != "medium" {
		t.Errorf("Artwork = %q", tr.Artwork)
	}
	if len(tr.Tags) != 2 || tr.Tags[1] != "study" {
		t.Errorf("Tags = %v", tr.Tags)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := New(Options{DiscoveryURL: "http://127.0.0.1:0"})
	if _, err := c.Search(context.Background(), "  ", 10); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRetriesServerErrors(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v1/tracks/trending", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, response[[]Track]{Data: []Track{wireTrack("t1", "u1", 1, "")}})
	})

	tracks, err := api.client().Trending(context.Background(), core.TimeWeek, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || calls.Load() != 3 {
		t.Errorf("tracks=%d calls=%d", len(tracks), calls.Load())
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v1/tracks/trending", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		writeJSON(w, map[string]string{"message": "slow down"})
	})

	_, err := api.client().Trending(context.Background(), core.TimeWeek, "", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Message != "slow down" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !errors.Is(err, errors.ErrRateLimited) {
		t.Error("429 should match ErrRateLimited")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGenreDeep(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/tracks/trending", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("time") != "month" || r.URL.Query().Get("genre") != "House" {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		writeJSON(w, response[[]Track]{Data: []Track{
			wireTrack("a", "u1", 10, "House"),
			wireTrack("b", "u2", 500, "House"),
		}})
	})
	api.mux.HandleFunc("/v1/tracks/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response[[]Track]{Data: []Track{
			wireTrack("b", "u2", 500, "house"),
			wireTrack("c", "u3", 100, "House"),
			wireTrack("d", "u4", 9999, "Techno"),
		}})
	})

	tracks, err := api.client().GenreDeep(context.Background(), "House", 10)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, tr := range tracks {
		got = append(got, tr.ID)
	}
	if want := "b,c,a"; strings.Join(got, ",") != want {
		t.Errorf("GenreDeep = %v, want %s", got, want)
	}
}

func TestGenreDeepPartialFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/tracks/trending", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})
	api.mux.HandleFunc("/v1/tracks/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response[[]Track]{Data: []Track{wireTrack("c", "u3", 100, "Jazz")}})
	})

	tracks, err := api.client().GenreDeep(context.Background(), "Jazz", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 {
		t.Errorf("got %d tracks, want 1", len(tracks))
	}
}

func TestUserIsCached(t *testing.T) {
	api := newFakeAPI(t)
	var calls atomic.Int32
	api.mux.HandleFunc("/v1/users/u1", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, response[User]{Data: User{ID: "u1", Name: "One", FollowerCount: 12}})
	})
	api.mux.HandleFunc("/v1/users/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	c := api.client()
	for range 2 {
		a, err := c.User(context.Background(), "u1")
		if err != nil {
			t.Fatal(err)
		}
		if a.Followers != 12 {
			t.Errorf("Followers = %d", a.Followers)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	if err := c.ForgetUser("u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.User(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls after forget = %d, want 2", calls.Load())
	}

	_, err := c.User(context.Background(), "missing")
	if !errors.Is(err, errors.ErrArtistNotFound) {
		t.Errorf("missing user err = %v", err)
	}
}

func TestUserTracksAndSearchUsers(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/users/u1/tracks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response[[]Track]{Data: []Track{wireTrack("t1", "u1", 1, "")}})
	})
	api.mux.HandleFunc("/v1/users/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response[[]User]{Data: []User{{ID: "u1", Name: "One", IsVerified: true}}})
	})

	c := api.client()
	tracks, err := c.UserTracks(context.Background(), "u1", 20)
	if err != nil || len(tracks) != 1 {
		t.Fatalf("UserTracks = %v, %v", tracks, err)
	}
	artists, err := c.SearchUsers(context.Background(), "one", 5)
	if err != nil || len(artists) != 1 || !artists[0].IsVerified {
		t.Fatalf("SearchUsers = %v, %v", artists, err)
	}
}

func TestTrackByID(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/tracks/t1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, response[Track]{Data: wireTrack("t1", "u1", 3, "House")})
	})
	api.mux.HandleFunc("/v1/tracks/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	c := api.client()
	tr, err := c.Track(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Title != "Title t1" || tr.Artist.ID != "u1" || tr.Duration != 200*time.Second {
		t.Errorf("track = %+v", tr)
	}

	if _, err := c.Track(context.Background(), "gone"); !errors.Is(err, errors.ErrTrackNotFound) {
		t.Errorf("missing track err = %v", err)
	}
}

func TestRandomTracksCapsPerArtist(t *testing.T) {
	api := newFakeAPI(t)
	var n atomic.Int32
	serve := func(w http.ResponseWriter, r *http.Request) {
		base := n.Add(1) * 100
		var tracks []Track
		for i := range 5 {
			// every source returns five tracks by the same artist plus one shared id
			tracks = append(tracks, wireTrack(fmt.Sprint(base+int32(i)), "same", i, ""))
		}
		tracks = append(tracks, wireTrack("shared", "other", 1, ""))
		writeJSON(w, response[[]Track]{Data: tracks})
	}
	api.mux.HandleFunc("/v1/tracks/trending", serve)
	api.mux.HandleFunc("/v1/tracks/search", serve)

	result, err := api.client().RandomTracks(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result.ErrorSummary())
	}
	perArtist := map[string]int{}
	ids := map[string]bool{}
	for _, tr := range result.Data {
		perArtist[tr.Artist.ID]++
		if ids[tr.ID] {
			t.Errorf("duplicate track %s", tr.ID)
		}
		ids[tr.ID] = true
	}
	if perArtist["same"] != maxTracksPerArtist || perArtist["other"] != 1 {
		t.Errorf("perArtist = %v", perArtist)
	}
}

func TestRandomTracksFallsBack(t *testing.T) {
	api := newFakeAPI(t)
	api.mux.HandleFunc("/v1/tracks/trending", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") == "50" {
			writeJSON(w, response[[]Track]{Data: []Track{wireTrack("f1", "u1", 1, ""), wireTrack("f2", "u2", 1, "")}})
			return
		}
		http.Error(w, "nope", http.StatusBadRequest)
	})
	api.mux.HandleFunc("/v1/tracks/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})

	result, err := api.client().RandomTracks(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Data) != 2 {
		t.Errorf("fallback tracks = %d, want 2", len(result.Data))
	}
	if len(result.Errors) != 3+randomGenres+1 {
		t.Errorf("errors = %d", len(result.Errors))
	}
}
