package library

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/store"
)

type tick struct {
	now time.Time
}

func (c *tick) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	clk := &tick{now: time.Unix(1_700_000_000, 0)}
	return New(store.NewMemory(nil), WithClock(clk.Now))
}

func track(id string) core.Track {
	return core.Track{
		ID:     id,
		Title:  "Track " + id,
		Artist: core.Artist{ID: "a" + id, Name: "Artist " + id, Handle: "artist" + id},
	}
}

func ids(tracks []core.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddRecentMovesToFront(t *testing.T) {
	lib := newTestLibrary(t)
	for _, id := range []string{"1", "2", "3", "2"} {
		if err := lib.AddRecent(track(id)); err != nil {
			t.Fatalf("AddRecent(%s): %v", id, err)
		}
	}

	got, err := lib.RecentTracks()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"2", "3", "1"}; !equal(ids(got), want) {
		t.Errorf("recent = %v, want %v", ids(got), want)
	}
}

func TestAddRecentCaps(t *testing.T) {
	lib := newTestLibrary(t)
	for i := range MaxRecent + 5 {
		if err := lib.AddRecent(track(fmt.Sprint(i))); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := lib.Recent()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != MaxRecent {
		t.Fatalf("len = %d, want %d", len(entries), MaxRecent)
	}
	if entries[0].Track.ID != fmt.Sprint(MaxRecent+4) {
		t.Errorf("newest = %s", entries[0].Track.ID)
	}
	if !entries[0].PlayedAt.After(entries[1].PlayedAt) {
		t.Error("entries not newest first")
	}
}

func TestToggleFavorite(t *testing.T) {
	lib := newTestLibrary(t)

	tests := []struct {
		id      string
		wantFav bool
		want    []string
	}{
		{"1", true, []string{"1"}},
		{"2", true, []string{"2", "1"}},
		{"1", false, []string{"2"}},
		{"1", true, []string{"1", "2"}},
	}

	for _, tt := range tests {
		fav, err := lib.ToggleFavorite(track(tt.id))
		if err != nil {
			t.Fatal(err)
		}
		if fav != tt.wantFav {
			t.Errorf("ToggleFavorite(%s) = %v, want %v", tt.id, fav, tt.wantFav)
		}
		got, _ := lib.Favorites()
		if !equal(ids(got), tt.want) {
			t.Errorf("after toggling %s favorites = %v, want %v", tt.id, ids(got), tt.want)
		}
	}

	if ok, _ := lib.IsFavorite("2"); !ok {
		t.Error("IsFavorite(2) = false")
	}
	if err := lib.ClearFavorites(); err != nil {
		t.Fatal(err)
	}
	if got, _ := lib.Favorites(); len(got) != 0 {
		t.Errorf("favorites after clear = %v", ids(got))
	}
}

func TestFollows(t *testing.T) {
	lib := newTestLibrary(t)
	a := core.Artist{ID: "a1", Name: "One", Handle: "one"}
	b := core.Artist{ID: "a2", Name: "Two", Handle: "two"}

	if err := lib.Follow(a); err != nil {
		t.Fatal(err)
	}
	if err := lib.Follow(a); err != nil {
		t.Fatal(err)
	}
	if on, err := lib.ToggleFollow(b); err != nil || !on {
		t.Fatalf("ToggleFollow(b) = %v, %v", on, err)
	}

	if n, _ := lib.FollowCount(); n != 2 {
		t.Errorf("FollowCount = %d, want 2", n)
	}
	follows, _ := lib.Follows()
	if follows[0].ArtistID != "a2" {
		t.Errorf("newest follow = %s, want a2", follows[0].ArtistID)
	}

	if on, _ := lib.ToggleFollow(a); on {
		t.Error("ToggleFollow(a) should unfollow")
	}
	if ok, _ := lib.IsFollowing("a1"); ok {
		t.Error("still following a1")
	}

	data, err := lib.ExportFollows()
	if err != nil {
		t.Fatal(err)
	}
	var exported []Follow
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(exported) != 1 || exported[0].ArtistHandle != "two" {
		t.Errorf("exported = %+v", exported)
	}
}

func TestExportEmpty(t *testing.T) {
	lib := newTestLibrary(t)
	data, err := lib.ExportTips()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("ExportTips = %s, want []", data)
	}
}

func TestAddTipValidates(t *testing.T) {
	lib := newTestLibrary(t)

	tests := []struct {
		name   string
		amount string
		token  Token
	}{
		{"bad amount", "lots", TokenETH},
		{"bad token", "1", Token("DOGE")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := lib.AddTip(TipRequest{Track: track("1"), Amount: tt.amount, Token: tt.token}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTipStats(t *testing.T) {
	lib := newTestLibrary(t)

	add := func(id, amount string, token Token, tipper string) {
		t.Helper()
		if _, err := lib.AddTip(TipRequest{Track: track(id), Amount: amount, Token: token, Tipper: tipper}); err != nil {
			t.Fatal(err)
		}
	}
	add("1", "0.5", TokenETH, "0xABC")
	add("2", "10", TokenAUDIO, "0xabc")
	add("1", "2", TokenBSTN, "0xdef")

	stats, err := lib.TipStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalTips != 3 {
		t.Errorf("TotalTips = %d", stats.TotalTips)
	}
	if stats.TotalByToken[TokenETH] != 0.5 || stats.TotalByToken[TokenAUDIO] != 10 || stats.TotalByToken[TokenBSTN] != 2 {
		t.Errorf("TotalByToken = %v", stats.TotalByToken)
	}
	if len(stats.TopArtists) != 2 || stats.TopArtists[0].ArtistID != "a2" {
		t.Fatalf("TopArtists = %+v", stats.TopArtists)
	}
	if a := stats.TopArtists[1]; a.TipCount != 2 || a.TotalAmount != 2.5 {
		t.Errorf("a1 totals = %+v", a)
	}
	if stats.RecentTips[0].TrackID != "1" || stats.RecentTips[0].Token != TokenBSTN {
		t.Errorf("newest tip = %+v", stats.RecentTips[0])
	}

	sent, _ := lib.TipsBySender("0xabc")
	if len(sent) != 2 {
		t.Errorf("TipsBySender = %d tips, want 2", len(sent))
	}
	artist, _ := lib.ArtistTips("a1")
	if len(artist) != 2 {
		t.Errorf("ArtistTips = %d tips, want 2", len(artist))
	}
}

func TestTipsCap(t *testing.T) {
	lib := newTestLibrary(t)
	for i := range MaxTips + 3 {
		if _, err := lib.AddTip(TipRequest{Track: track(fmt.Sprint(i)), Amount: "1", Token: TokenAUDIO}); err != nil {
			t.Fatal(err)
		}
	}
	tips, _ := lib.Tips()
	if len(tips) != MaxTips {
		t.Errorf("len = %d, want %d", len(tips), MaxTips)
	}
	stats := ComputeTipStats(tips)
	if len(stats.TopArtists) != 10 || len(stats.RecentTips) != 10 {
		t.Errorf("top=%d recent=%d, want 10 each", len(stats.TopArtists), len(stats.RecentTips))
	}
}

func TestParseToken(t *testing.T) {
	if tok, err := ParseToken("audio"); err != nil || tok != TokenAUDIO {
		t.Errorf("ParseToken(audio) = %v, %v", tok, err)
	}
	if _, err := ParseToken("btc"); err == nil {
		t.Error("expected error for btc")
	}
}
