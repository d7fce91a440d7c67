package core

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func tracks(ids ...string) []Track {
	ts := make([]Track, len(ids))
	for i, id := range ids {
		ts[i] = Track{ID: id, Title: "Track " + id}
	}
	return ts
}

func ids(ts []Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func seeded(seed uint64) QueueOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestSetQueueClampsStart(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		start int
		want  int
	}{
		{"in range", []string{"a", "b", "c"}, 1, 1},
		{"negative", []string{"a", "b", "c"}, -4, 0},
		{"past end", []string{"a", "b", "c"}, 10, 2},
		{"empty", nil, 3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.SetQueue(tracks(tt.ids...), tt.start)
			if q.Index() != tt.want {
				t.Errorf("Index() = %d, want %d", q.Index(), tt.want)
			}
			cur, ok := q.Current()
			if len(tt.ids) == 0 {
				if ok {
					t.Errorf("Current() = %v, want none", cur)
				}
				return
			}
			if !ok || cur.ID != tt.ids[tt.want] {
				t.Errorf("Current() = %q, want %q", cur.ID, tt.ids[tt.want])
			}
		})
	}
}

func TestSetQueueCopiesInput(t *testing.T) {
	in := tracks("a", "b")
	q := NewQueue()
	q.SetQueue(in, 0)
	in[0].ID = "mutated"

	if got := ids(q.Tracks()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Tracks() = %v, want [a b]", got)
	}
}

func TestNextScenario(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("A", "B", "C"), 0)

	for _, want := range []string{"B", "C", "C", "C"} {
		got, ok := q.Next()
		if !ok || got.ID != want {
			t.Fatalf("Next() = %q, want %q", got.ID, want)
		}
	}
	if !q.AtEnd() {
		t.Error("AtEnd() = false at last track with repeat off")
	}
}

func TestNextRepeatAllIsCyclic(t *testing.T) {
	for n := 1; n <= 6; n++ {
		ts := tracks("a", "b", "c", "d", "e", "f")[:n]
		for start := range n {
			q := NewQueue()
			q.SetQueue(ts, start)
			q.SetRepeatMode(RepeatAll)
			before, _ := q.Current()
			for range n {
				q.Next()
			}
			after, _ := q.Current()
			if !after.Same(before) {
				t.Errorf("n=%d start=%d: after %d nexts got %q, want %q", n, start, n, after.ID, before.ID)
			}
		}
	}
}

func TestNextRepeatOneStays(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("a", "b", "c"), 1)
	q.SetRepeatMode(RepeatOne)

	for range 3 {
		got, _ := q.Next()
		if got.ID != "b" {
			t.Fatalf("Next() = %q, want b", got.ID)
		}
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		repeat RepeatMode
		want   string
	}{
		{"moves back", 2, RepeatOff, "b"},
		{"stays at start", 0, RepeatOff, "a"},
		{"wraps with repeat all", 0, RepeatAll, "c"},
		{"repeat one still moves", 1, RepeatOne, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.SetQueue(tracks("a", "b", "c"), tt.start)
			q.SetRepeatMode(tt.repeat)
			got, ok := q.Previous()
			if !ok || got.ID != tt.want {
				t.Errorf("Previous() = %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestEmptyQueueNavigation(t *testing.T) {
	q := NewQueue()
	if _, ok := q.Next(); ok {
		t.Error("Next() on empty queue returned a track")
	}
	if _, ok := q.Previous(); ok {
		t.Error("Previous() on empty queue returned a track")
	}
	q.Jump(3)
	if q.Index() != -1 {
		t.Errorf("Index() = %d after Jump on empty queue, want -1", q.Index())
	}
	q.Remove(0)
	q.ToggleShuffle()
	if _, ok := q.Current(); ok {
		t.Error("Current() on empty queue returned a track")
	}
}

func TestJumpClamps(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("a", "b", "c"), 0)

	q.Jump(7)
	if q.Index() != 2 {
		t.Errorf("Jump(7) index = %d, want 2", q.Index())
	}
	q.Jump(-1)
	if q.Index() != 0 {
		t.Errorf("Jump(-1) index = %d, want 0", q.Index())
	}
}

func TestShuffleKeepsCurrentTrack(t *testing.T) {
	for seed := range uint64(50) {
		q := NewQueue(seeded(seed))
		q.SetQueue(tracks("a", "b", "c", "d", "e", "f", "g"), 3)
		before, _ := q.Current()

		q.ToggleShuffle()

		if !q.Shuffled() {
			t.Fatal("Shuffled() = false after enabling")
		}
		after, _ := q.Current()
		if !after.Same(before) {
			t.Fatalf("seed %d: current = %q after shuffle, want %q", seed, after.ID, before.ID)
		}
		if q.Index() != 3 {
			t.Fatalf("seed %d: index moved to %d", seed, q.Index())
		}
		got := ids(q.Tracks())
		slices.Sort(got)
		if !slices.Equal(got, []string{"a", "b", "c", "d", "e", "f", "g"}) {
			t.Fatalf("seed %d: shuffled queue %v is not a permutation", seed, got)
		}
	}
}

func TestShuffleScenarioFirstTrack(t *testing.T) {
	q := NewQueue(seeded(7))
	q.SetQueue(tracks("A", "B", "C"), 0)
	q.ToggleShuffle()

	if q.Tracks()[0].ID != "A" {
		t.Errorf("Tracks()[0] = %q, want A", q.Tracks()[0].ID)
	}
}

func TestShuffleRoundTrip(t *testing.T) {
	orig := []string{"a", "b", "c", "d", "e"}
	for toggles := 1; toggles <= 7; toggles += 2 {
		q := NewQueue(seeded(uint64(toggles)))
		q.SetQueue(tracks(orig...), 2)
		for range toggles {
			q.ToggleShuffle()
			q.Next()
		}
		// Odd number of toggles leaves shuffle on; one more turns it off.
		q.ToggleShuffle()

		if q.Shuffled() {
			t.Fatal("Shuffled() = true after final toggle")
		}
		if got := ids(q.Tracks()); !slices.Equal(got, orig) {
			t.Errorf("toggles=%d: Tracks() = %v, want %v", toggles, got, orig)
		}
	}
}

func TestUnshuffleRelocatesByID(t *testing.T) {
	q := NewQueue(seeded(3))
	q.SetQueue(tracks("a", "b", "c", "d"), 0)
	q.ToggleShuffle()
	q.Jump(2)
	playing, _ := q.Current()

	q.ToggleShuffle()

	cur, _ := q.Current()
	if !cur.Same(playing) {
		t.Errorf("Current() = %q after unshuffle, want %q", cur.ID, playing.ID)
	}
	if q.Index() != slices.Index([]string{"a", "b", "c", "d"}, playing.ID) {
		t.Errorf("Index() = %d, want original position of %q", q.Index(), playing.ID)
	}
}

func TestUnshuffleAfterRemovalsStaysInRange(t *testing.T) {
	q := NewQueue(seeded(11))
	q.SetQueue(tracks("a", "b", "c", "d"), 3)
	q.ToggleShuffle()
	q.Remove(0)
	q.Remove(0)
	q.Remove(0)

	q.ToggleShuffle()

	if q.Index() < 0 || q.Index() >= q.Len() {
		t.Errorf("Index() = %d out of range for len %d", q.Index(), q.Len())
	}
	if _, ok := q.Current(); !ok {
		t.Error("Current() = none on non-empty queue")
	}
}

func TestAdd(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("a", "b"), 1)
	q.Add(Track{ID: "c"})

	if got := ids(q.Tracks()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Tracks() = %v", got)
	}
	if got := ids(q.Original()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Original() = %v", got)
	}
	if q.Index() != 1 {
		t.Errorf("Index() = %d, want 1", q.Index())
	}
}

func TestAddToEmptyQueueSelectsFirst(t *testing.T) {
	q := NewQueue()
	q.Add(Track{ID: "a"})
	if cur, ok := q.Current(); !ok || cur.ID != "a" {
		t.Errorf("Current() = %q, %v; want a", cur.ID, ok)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		remove    int
		wantIndex int
		wantIDs   []string
	}{
		{"current keeps predecessor", 2, 2, 1, []string{"a", "b", "d"}},
		{"before current", 2, 0, 1, []string{"b", "c", "d"}},
		{"after current", 1, 3, 1, []string{"a", "b", "c"}},
		{"current at zero", 0, 0, 0, []string{"b", "c", "d"}},
		{"out of range", 1, 9, 1, []string{"a", "b", "c", "d"}},
		{"last element while current", 3, 3, 2, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.SetQueue(tracks("a", "b", "c", "d"), tt.current)
			q.Remove(tt.remove)

			if q.Index() != tt.wantIndex {
				t.Errorf("Index() = %d, want %d", q.Index(), tt.wantIndex)
			}
			if got := ids(q.Tracks()); !slices.Equal(got, tt.wantIDs) {
				t.Errorf("Tracks() = %v, want %v", got, tt.wantIDs)
			}
			if got := ids(q.Original()); !slices.Equal(got, tt.wantIDs) {
				t.Errorf("Original() = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestRemoveOnlyTrack(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("a"), 0)
	q.Remove(0)

	if q.Index() != -1 {
		t.Errorf("Index() = %d, want -1", q.Index())
	}
	if !q.IsEmpty() {
		t.Error("IsEmpty() = false")
	}
}

func TestRemoveWhileShuffledUsesIdentifier(t *testing.T) {
	q := NewQueue(seeded(5))
	q.SetQueue(tracks("a", "b", "c", "d"), 0)
	q.ToggleShuffle()
	removed := q.Tracks()[1].ID
	q.Remove(1)

	if slices.Contains(ids(q.Original()), removed) {
		t.Errorf("Original() still contains %q", removed)
	}
	if q.Len() != 3 || len(q.Original()) != 3 {
		t.Errorf("lengths = %d/%d, want 3/3", q.Len(), len(q.Original()))
	}
}

func TestRemoveDuplicateKeepsOrdersAligned(t *testing.T) {
	q := NewQueue(seeded(3))
	q.SetQueue(tracks("a", "b", "a"), 0)
	q.Remove(2)

	if got := ids(q.Tracks()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Tracks() = %v, want [a b]", got)
	}
	if got := ids(q.Original()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Original() = %v, want [a b]", got)
	}

	q.ToggleShuffle()
	q.ToggleShuffle()
	if got := ids(q.Tracks()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("after shuffle round trip Tracks() = %v, want [a b]", got)
	}
}

func TestRemoveDuplicateWhileShuffledMatchesOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		tracks []Track
		remove int
		want   []string
	}{
		{"first of two", tracks("a", "b", "a"), 0, []string{"b", "a"}},
		{"second of two", tracks("a", "b", "a"), 2, []string{"a", "b"}},
		{"unique", tracks("a", "b", "a"), 1, []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.SetQueue(tt.tracks, 0)
			// Shuffled play order identical to the original isolates the
			// occurrence mapping from the permutation.
			q.shuffle = true
			q.Remove(tt.remove)

			if got := ids(q.Original()); !slices.Equal(got, tt.want) {
				t.Errorf("Original() = %v, want %v", got, tt.want)
			}
			if q.Len() != len(q.Original()) {
				t.Errorf("lengths = %d/%d", q.Len(), len(q.Original()))
			}
		})
	}
}

func TestUpcoming(t *testing.T) {
	q := NewQueue()
	q.SetQueue(tracks("a", "b", "c"), 0)
	if got := ids(q.Upcoming()); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Upcoming() = %v", got)
	}
	q.Jump(2)
	if got := q.Upcoming(); got != nil {
		t.Errorf("Upcoming() at end = %v, want nil", got)
	}
}

func TestRepeatMode(t *testing.T) {
	if got := RepeatOff.Next().Next().Next(); got != RepeatOff {
		t.Errorf("cycle returned %v, want off", got)
	}
	if RepeatOff.Next() != RepeatAll || RepeatAll.Next() != RepeatOne {
		t.Error("cycle order must be off, all, one")
	}

	for _, s := range []string{"off", "one", "all"} {
		m, err := ParseRepeatMode(s)
		if err != nil {
			t.Fatalf("ParseRepeatMode(%q) error: %v", s, err)
		}
		if m.String() != s {
			t.Errorf("round trip %q = %q", s, m.String())
		}
	}
	if _, err := ParseRepeatMode("sometimes"); err == nil {
		t.Error("ParseRepeatMode(sometimes) expected error")
	}
}
