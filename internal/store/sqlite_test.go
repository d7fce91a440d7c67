package store

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s.SetClock(clk.Now)

	if err := PutJSON(s, "favorites", "t1", item{Name: "one"}, 0); err != nil {
		t.Fatalf("PutJSON() error: %v", err)
	}
	if err := s.Put("cache", "host", []byte("h1"), time.Minute); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// Reopen to check the data was persisted.
	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	s.SetClock(clk.Now)

	var got item
	ok, err := GetJSON(s, "favorites", "t1", &got)
	if err != nil || !ok || got.Name != "one" {
		t.Errorf("GetJSON() = %+v, %v, %v", got, ok, err)
	}
	if v, ok, _ := s.Get("cache", "host"); !ok || string(v) != "h1" {
		t.Errorf("Get(cache, host) = %q, %v", v, ok)
	}

	clk.now = clk.now.Add(2 * time.Minute)
	if _, ok, _ := s.Get("cache", "host"); ok {
		t.Error("expired entry still returned")
	}
	if err := s.Prune(); err != nil {
		t.Errorf("Prune() error: %v", err)
	}
}

func TestSQLiteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "station.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestSQLiteListAndClear(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "station.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, k := range []string{"b", "a", "c"} {
		if err := s.Put("follows", k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List("follows")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Key != "a" {
		t.Errorf("List() = %+v, want 3 entries sorted by key", entries)
	}

	if err := s.Delete("follows", "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear("follows"); err != nil {
		t.Fatal(err)
	}
	entries, _ = s.List("follows")
	if len(entries) != 0 {
		t.Errorf("List() after Clear = %d entries", len(entries))
	}
}
