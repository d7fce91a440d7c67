package core

import (
	"math/rand/v2"
	"slices"
)

// Queue is the ordered play sequence plus current position and mode
// state. Create one with NewQueue. A Queue is not safe for concurrent use.
type Queue struct {
	tracks   []Track
	original []Track
	current  int
	shuffle  bool
	repeat   RepeatMode
	rng      *rand.Rand
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) QueueOption {
	return func(q *Queue) {
		q.rng = r
	}
}

// NewQueue returns an empty queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{current: -1}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SetQueue replaces the queue and its original order. The start index is
// clamped into range, or set to -1 when tracks is empty.
func (q *Queue) SetQueue(tracks []Track, start int) {
	q.tracks = slices.Clone(tracks)
	q.original = slices.Clone(tracks)
	q.current = q.clamp(start)
}

// ToggleShuffle flips shuffle. Enabling shuffle permutes the original
// order and swaps the playing track back into the current position.
// Disabling restores the original order and relocates the current index
// by identifier.
func (q *Queue) ToggleShuffle() {
	cur, hasCur := q.Current()
	q.shuffle = !q.shuffle

	if q.shuffle {
		shuffled := slices.Clone(q.original)
		q.permute(shuffled)
		if hasCur {
			if i := indexOf(shuffled, cur.ID); i >= 0 && i != q.current && q.current < len(shuffled) {
				shuffled[i], shuffled[q.current] = shuffled[q.current], shuffled[i]
			}
		}
		q.tracks = shuffled
		return
	}

	q.tracks = slices.Clone(q.original)
	if hasCur {
		if i := indexOf(q.tracks, cur.ID); i >= 0 {
			q.current = i
		}
	}
	// The playing track may have been removed while shuffled.
	q.current = q.clamp(q.current)
}

func (q *Queue) permute(ts []Track) {
	intn := rand.IntN
	if q.rng != nil {
		intn = q.rng.IntN
	}
	for i := len(ts) - 1; i > 0; i-- {
		j := intn(i + 1)
		ts[i], ts[j] = ts[j], ts[i]
	}
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(m RepeatMode) {
	q.repeat = m
}

// Repeat returns the repeat mode.
func (q *Queue) Repeat() RepeatMode {
	return q.repeat
}

// Shuffled reports whether shuffle is enabled.
func (q *Queue) Shuffled() bool {
	return q.shuffle
}

// Next advances according to the repeat mode and returns the resulting
// track. RepeatOne stays put. At the end, RepeatAll wraps to the start and
// RepeatOff stays on the last track. It returns false only when the queue
// is empty.
func (q *Queue) Next() (Track, bool) {
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	switch {
	case q.repeat == RepeatOne:
	case q.current < len(q.tracks)-1:
		q.current++
	case q.repeat == RepeatAll:
		q.current = 0
	}
	return q.Current()
}

// AtEnd reports whether Next would not move to a different position
// because the queue is exhausted.
func (q *Queue) AtEnd() bool {
	return len(q.tracks) == 0 || (q.repeat == RepeatOff && q.current >= len(q.tracks)-1)
}

// Previous is the mirror of Next, except that RepeatOne still moves back.
func (q *Queue) Previous() (Track, bool) {
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	switch {
	case q.current > 0:
		q.current--
	case q.repeat == RepeatAll:
		q.current = len(q.tracks) - 1
	default:
		q.current = 0
	}
	return q.Current()
}

// Jump moves to index, clamped into range. It is a no-op on an empty queue.
func (q *Queue) Jump(index int) {
	if len(q.tracks) == 0 {
		return
	}
	q.current = q.clamp(index)
}

// Add appends a track to both the play order and the original order.
func (q *Queue) Add(t Track) {
	q.tracks = append(q.tracks, t)
	q.original = append(q.original, t)
	if q.current < 0 {
		q.current = 0
	}
}

// Remove deletes the track at index from the play order and the matching
// entry from the original order. Unshuffled, the two orders are the same
// so the entry goes by position. Shuffled, a track queued more than once
// removes the original occurrence with the same rank, so the second "A"
// in play order takes the second "A" in original order. When the removed
// position is at or before the current one, the current index moves back
// by one so it keeps pointing at the same logical track (or its
// predecessor).
func (q *Queue) Remove(index int) {
	if index < 0 || index >= len(q.tracks) {
		return
	}
	i := index
	if q.shuffle {
		i = nthIndexOf(q.original, q.tracks[index].ID, occurrence(q.tracks, index))
	}
	q.tracks = slices.Delete(q.tracks, index, index+1)
	if i >= 0 && i < len(q.original) {
		q.original = slices.Delete(q.original, i, i+1)
	}
	if index <= q.current && q.current > 0 {
		q.current--
	}
	q.current = q.clamp(q.current)
}

// Current returns the track at the current index.
func (q *Queue) Current() (Track, bool) {
	if q.current < 0 || q.current >= len(q.tracks) {
		return Track{}, false
	}
	return q.tracks[q.current], true
}

// Index returns the current index, or -1 when the queue is empty.
func (q *Queue) Index() int {
	return q.current
}

// IndexOf returns the play-order position of the track with id, or -1.
func (q *Queue) IndexOf(id string) int {
	return indexOf(q.tracks, id)
}

// Tracks returns a copy of the play order.
func (q *Queue) Tracks() []Track {
	return slices.Clone(q.tracks)
}

// Original returns a copy of the original order.
func (q *Queue) Original() []Track {
	return slices.Clone(q.original)
}

// Upcoming returns tracks after the current position.
func (q *Queue) Upcoming() []Track {
	if q.current < 0 || q.current >= len(q.tracks)-1 {
		return nil
	}
	return slices.Clone(q.tracks[q.current+1:])
}

// Len returns the total number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

func (q *Queue) clamp(i int) int {
	if len(q.tracks) == 0 {
		return -1
	}
	return max(0, min(i, len(q.tracks)-1))
}

func indexOf(ts []Track, id string) int {
	return slices.IndexFunc(ts, func(t Track) bool { return t.ID == id })
}

// occurrence counts the entries before index sharing its identifier.
func occurrence(ts []Track, index int) int {
	n := 0
	for _, t := range ts[:index] {
		if t.ID == ts[index].ID {
			n++
		}
	}
	return n
}

// nthIndexOf returns the position of the nth (zero-based) entry with id,
// falling back to the last one seen, or -1 when there is none.
func nthIndexOf(ts []Track, id string, n int) int {
	last := -1
	for i, t := range ts {
		if t.ID != id {
			continue
		}
		if n == 0 {
			return i
		}
		n--
		last = i
	}
	return last
}
