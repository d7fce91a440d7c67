package components

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/player"
)

func TestSeekBarTimeAt(t *testing.T) {
	tests := []struct {
		name     string
		x, width int
		duration time.Duration
		want     time.Duration
	}{
		{"start", 0, 100, 200 * time.Second, 0},
		{"middle", 50, 100, 200 * time.Second, 100 * time.Second},
		{"end", 100, 100, 200 * time.Second, 200 * time.Second},
		{"left of bar", -5, 100, 200 * time.Second, 0},
		{"right of bar", 150, 100, 200 * time.Second, 200 * time.Second},
		{"no duration", 50, 100, 0, 0},
		{"no width", 5, 0, time.Minute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (SeekBar{}).TimeAt(tt.x, tt.width, tt.duration); got != tt.want {
				t.Errorf("TimeAt(%d, %d, %v) = %v, want %v", tt.x, tt.width, tt.duration, got, tt.want)
			}
		})
	}
}

func TestSeekBarDrag(t *testing.T) {
	b := NewSeekBar()
	b.X, b.Y = 10, 5
	b.Render(0, time.Minute, 60)

	if _, ok := b.Press(5, 5, time.Minute); ok {
		t.Fatal("press left of the bar started a drag")
	}
	if got, ok := b.Press(40, 5, time.Minute); !ok || got != 30*time.Second {
		t.Fatalf("Press = %v, %v", got, ok)
	}
	if label := b.HoverLabel(time.Minute); label != "0:30" {
		t.Errorf("HoverLabel = %q", label)
	}

	// Dragging keeps tracking off the bar's row.
	if got, ok := b.Hover(100, 9, time.Minute); !ok || got != time.Minute {
		t.Errorf("Hover while dragging = %v, %v", got, ok)
	}
	got, ok := b.Release(25, 9, time.Minute)
	if !ok || got != 15*time.Second {
		t.Errorf("Release = %v, %v", got, ok)
	}
	if b.Dragging() || b.HoverLabel(time.Minute) != "" {
		t.Error("drag state survived release")
	}
	if _, ok := b.Release(25, 5, time.Minute); ok {
		t.Error("release without press reported a seek")
	}
}

func TestEqualizerHit(t *testing.T) {
	e := NewEqualizer()
	e.Render([eq.Bands]float64{}, 0, 0, 50, 31, true)
	// rows = 25, tracks start at y 3, fader height 24

	tests := []struct {
		x, y     int
		wantBand int
		wantDB   float64
		wantOK   bool
	}{
		{2, 3, 0, 12, true},
		{2 + faderColumn, 3 + 12, 1, 0, true},
		{2 + 4*faderColumn, 3 + 24, 4, -12, true},
		{2, 2, 0, 0, false},
		{2 + 5*faderColumn, 10, 0, 0, false},
	}
	for _, tt := range tests {
		band, dB, ok := e.Hit(tt.x, tt.y)
		if ok != tt.wantOK || (ok && (band != tt.wantBand || dB != tt.wantDB)) {
			t.Errorf("Hit(%d, %d) = %d, %v, %v; want %d, %v, %v",
				tt.x, tt.y, band, dB, ok, tt.wantBand, tt.wantDB, tt.wantOK)
		}
	}

	if _, _, ok := e.Press(2+2*faderColumn, 9); !ok || e.Band != 2 {
		t.Fatalf("Press did not select band 2")
	}
	if band, dB, ok := e.Drag(3); !ok || band != 2 || dB != 12 {
		t.Errorf("Drag = %d, %v, %v", band, dB, ok)
	}
	e.Release()
	if _, _, ok := e.Drag(3); ok {
		t.Error("Drag after Release")
	}
}

func TestEqualizerBandWraps(t *testing.T) {
	e := NewEqualizer()
	e.Left()
	if e.Band != eq.Bands-1 {
		t.Errorf("Left from 0 = %d", e.Band)
	}
	e.Right()
	if e.Band != 0 {
		t.Errorf("Right from last = %d", e.Band)
	}
}

func TestQueueFollow(t *testing.T) {
	q := NewQueue()
	q.Follow(3)
	if q.Cursor() != 3 {
		t.Fatalf("cursor = %d, want 3", q.Cursor())
	}
	q.Up()
	q.Follow(3)
	if q.Cursor() != 2 {
		t.Errorf("cursor moved without a track change: %d", q.Cursor())
	}
	q.Follow(4)
	if q.Cursor() != 4 {
		t.Errorf("cursor = %d, want 4", q.Cursor())
	}

	state := player.QueueState{Index: 0, Tracks: []core.Track{{ID: "1", Title: "One"}}}
	out := q.Render(state, 40, 10, true)
	if !strings.Contains(out, "One") || q.Cursor() != 0 {
		t.Errorf("render did not clamp the cursor: %d\n%s", q.Cursor(), out)
	}
}

func TestFit(t *testing.T) {
	title, artist := fit("Short", "Band", 40)
	if title != "Short" || artist != "Band" {
		t.Errorf("fit changed strings that fit: %q %q", title, artist)
	}
	title, artist = fit(strings.Repeat("t", 40), strings.Repeat("a", 40), 30)
	if n := len(title) + len(artist); n > 30 {
		t.Errorf("fit returned %d cells, want <= 30", n)
	}
	if len(artist) < 8 {
		t.Errorf("artist squeezed to %d cells", len(artist))
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]int{0, 50, 100, -3, 140}); got != "▁▄█▁█" {
		t.Errorf("Sparkline = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{65 * time.Second, "1:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{2*time.Minute + 29600*time.Millisecond, "2:30"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
