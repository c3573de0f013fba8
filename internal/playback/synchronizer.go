package playback

import (
	"fmt"

	"github.com/mgpai22/katha/internal/subtitle"
)

// Clock is the external media clock. The synchronizer only ever reads
// playback time through the values handed to it; Seek and Play are the
// two side effects it may request.
type Clock interface {
	// Seek moves the playhead to the given position in seconds.
	Seek(seconds float64)
	// Play resumes playback.
	Play()
}

// FindActive returns the first segment in track order whose time range
// contains the given instant (inclusive on both ends). When segments
// improperly overlap the first match wins; that is a deliberate
// deterministic policy, not conflict resolution. A nil or empty track,
// or an instant in a gap, yields no active segment.
//
// The scan is linear and stateless: it assumes nothing about previous
// calls, so backward clock jumps and track replacement need no special
// handling. Tracks are small (tens to low hundreds of segments), so a
// per-tick scan is the deliberate simplicity-over-performance choice.
func FindActive(track *subtitle.Track, seconds float64) (subtitle.Segment, bool) {
	if track.IsEmpty() {
		return subtitle.Segment{}, false
	}

	for _, seg := range track.Segments {
		start := subtitle.ParseTimestamp(seg.StartTime)
		end := subtitle.ParseTimestamp(seg.EndTime)
		if seconds >= start && seconds <= end {
			return seg, true
		}
	}

	return subtitle.Segment{}, false
}

// ActiveText returns the displayable text at the given instant, or the
// empty string when no segment is active. A blank result is the expected
// steady state between spoken lines, not an error.
func ActiveText(track *subtitle.Track, seconds float64) string {
	seg, ok := FindActive(track, seconds)
	if !ok {
		return ""
	}
	return seg.Text
}

// Synchronizer maps a continuously advancing playback clock onto a track.
// Its only state is the last text it computed, kept for change detection
// so callers can avoid re-rendering an unchanged line.
type Synchronizer struct {
	lastText string
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Tick recomputes the active text for the given instant and reports
// whether it changed since the previous tick. Transitions are driven
// purely by the clock value and the (replaceable) track reference,
// never by history.
func (s *Synchronizer) Tick(track *subtitle.Track, seconds float64) (string, bool) {
	text := ActiveText(track, seconds)
	changed := text != s.lastText
	s.lastText = text
	return text, changed
}

// Reset clears the change-detection state to a blank display. Used when
// the track is replaced or cleared.
func (s *Synchronizer) Reset() {
	s.lastText = ""
}

// SeekToSegment jumps the external clock to the segment's start and
// resumes playback. The conversion uses the same timestamp parser as
// FindActive, so the landing instant is always recognized as that
// segment's start on the next tick.
func SeekToSegment(clock Clock, seg subtitle.Segment) {
	SeekTo(clock, seg.StartTime)
}

// SeekTo jumps the external clock to an arbitrary timestamp string.
// A malformed or absent timestamp degrades to 0 rather than failing.
func SeekTo(clock Clock, timestamp string) {
	clock.Seek(subtitle.ParseTimestamp(timestamp))
	clock.Play()
}

// Describe renders a segment's time range for logs and previews.
func Describe(seg subtitle.Segment) string {
	return fmt.Sprintf("%s --> %s", seg.StartTime, seg.EndTime)
}
