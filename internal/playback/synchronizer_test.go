package playback

import (
	"math"
	"testing"

	"github.com/mgpai22/katha/internal/subtitle"
)

func twoSegmentTrack() *subtitle.Track {
	return subtitle.NewTrack([]subtitle.Segment{
		{StartTime: "00:00:01,000", EndTime: "00:00:03,000", Text: "A", OriginalText: "A"},
		{StartTime: "00:00:04,000", EndTime: "00:00:06,000", Text: "B", OriginalText: "B"},
	})
}

func TestFindActive(t *testing.T) {
	track := twoSegmentTrack()

	tests := []struct {
		name    string
		seconds float64
		want    string
		active  bool
	}{
		{"before first segment", 0.0, "", false},
		{"inside first segment", 2.0, "A", true},
		{"exact start boundary", 1.0, "A", true},
		{"exact end boundary", 3.0, "A", true},
		{"gap between segments", 3.5, "", false},
		{"inside second segment", 5.0, "B", true},
		{"after last segment", 7.0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, ok := FindActive(track, tt.seconds)
			if ok != tt.active {
				t.Fatalf("FindActive(%v): active=%v, want %v", tt.seconds, ok, tt.active)
			}
			if ok && seg.Text != tt.want {
				t.Errorf("FindActive(%v) = %q, want %q", tt.seconds, seg.Text, tt.want)
			}
		})
	}
}

func TestFindActiveEmptyTrack(t *testing.T) {
	if _, ok := FindActive(nil, 1.0); ok {
		t.Error("nil track should never have an active segment")
	}
	if _, ok := FindActive(subtitle.NewTrack(nil), 1.0); ok {
		t.Error("empty track should never have an active segment")
	}
}

func TestFindActiveOverlapFirstWins(t *testing.T) {
	track := subtitle.NewTrack([]subtitle.Segment{
		{StartTime: "00:00:01,000", EndTime: "00:00:05,000", Text: "first"},
		{StartTime: "00:00:02,000", EndTime: "00:00:06,000", Text: "second"},
	})

	seg, ok := FindActive(track, 3.0)
	if !ok || seg.Text != "first" {
		t.Errorf("overlap: expected first segment to win, got %q (ok=%v)", seg.Text, ok)
	}
}

func TestFindActiveToleratesMalformedTimestamps(t *testing.T) {
	// malformed timestamps degrade to 0 rather than breaking the scan
	track := subtitle.NewTrack([]subtitle.Segment{
		{StartTime: "garbage", EndTime: "also garbage", Text: "broken"},
		{StartTime: "00:00:02,000", EndTime: "00:00:04,000", Text: "good"},
	})

	seg, ok := FindActive(track, 3.0)
	if !ok || seg.Text != "good" {
		t.Errorf("expected %q, got %q (ok=%v)", "good", seg.Text, ok)
	}

	// at t=0 the broken segment's degenerate 0..0 range matches
	seg, ok = FindActive(track, 0)
	if !ok || seg.Text != "broken" {
		t.Errorf("at t=0 expected degenerate segment, got %q (ok=%v)", seg.Text, ok)
	}
}

func TestSynchronizerTickChangeDetection(t *testing.T) {
	track := twoSegmentTrack()
	sync := NewSynchronizer()

	steps := []struct {
		seconds     float64
		wantText    string
		wantChanged bool
	}{
		{0.0, "", false},  // blank is the initial state
		{1.5, "A", true},  // enters A
		{2.0, "A", false}, // still A
		{3.5, "", true},   // gap
		{5.0, "B", true},  // enters B
		{4.2, "B", false}, // backward jump inside B
		{0.0, "", true},   // reset to start
	}

	for i, step := range steps {
		text, changed := sync.Tick(track, step.seconds)
		if text != step.wantText || changed != step.wantChanged {
			t.Errorf("step %d (t=%v): got (%q, %v), want (%q, %v)",
				i, step.seconds, text, changed, step.wantText, step.wantChanged)
		}
	}
}

func TestSynchronizerTrackReplacement(t *testing.T) {
	sync := NewSynchronizer()

	text, _ := sync.Tick(twoSegmentTrack(), 2.0)
	if text != "A" {
		t.Fatalf("expected A, got %q", text)
	}

	replacement := subtitle.NewTrack([]subtitle.Segment{
		{StartTime: "00:00:01,000", EndTime: "00:00:03,000", Text: "new"},
	})

	text, changed := sync.Tick(replacement, 2.0)
	if text != "new" || !changed {
		t.Errorf("after replacement: got (%q, %v), want (new, true)", text, changed)
	}

	sync.Reset()
	text, changed = sync.Tick(nil, 2.0)
	if text != "" || changed {
		t.Errorf("after clear: got (%q, %v), want (\"\", false)", text, changed)
	}
}

type fakeClock struct {
	position float64
	playing  bool
}

func (c *fakeClock) Seek(seconds float64) { c.position = seconds }
func (c *fakeClock) Play()                { c.playing = true }

func TestSeekToSegment(t *testing.T) {
	track := twoSegmentTrack()
	clock := &fakeClock{}

	SeekToSegment(clock, track.Segments[1])

	if math.Abs(clock.position-4.0) > 1e-9 {
		t.Errorf("expected clock at 4.0, got %v", clock.position)
	}
	if !clock.playing {
		t.Error("seek should resume playback")
	}

	// the landing instant must be recognized as that segment's start
	seg, ok := FindActive(track, clock.position)
	if !ok || seg.Text != "B" {
		t.Errorf("after seek, expected active segment B, got %q (ok=%v)", seg.Text, ok)
	}
}

func TestSeekToMalformedTimestamp(t *testing.T) {
	clock := &fakeClock{position: 42}
	SeekTo(clock, "not a timestamp")
	if clock.position != 0 {
		t.Errorf("malformed timestamp should seek to 0, got %v", clock.position)
	}
}
