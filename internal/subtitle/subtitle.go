package subtitle

import (
	"errors"
)

// ErrNoSegments is returned when a document yields zero valid subtitle
// blocks. Individual malformed blocks are skipped silently; a document
// with nothing usable at all is the one condition callers must act on.
var ErrNoSegments = errors.New("no valid subtitles found")

// Segment is one timed subtitle entry. StartTime and EndTime are kept in
// the canonical SRT text form HH:MM:SS,mmm; ParseTimestamp converts them
// to seconds on demand. Text is what playback displays; OriginalText is
// the untranslated transcription and equals Text when no translation
// occurred. SRT has no slot for OriginalText, so it is lost on export.
type Segment struct {
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Text         string `json:"text"`
	OriginalText string `json:"originalText"`
}

// Track is an ordered set of segments, insertion order == chronological
// order. Tracks are replaced wholesale on re-generation, upload, or clear;
// nothing in this package mutates a track after construction.
type Track struct {
	Segments []Segment
	Language string
}

func NewTrack(segments []Segment) *Track {
	return &Track{Segments: segments}
}

// IsEmpty reports whether the track is absent or has no segments.
func (t *Track) IsEmpty() bool {
	return t == nil || len(t.Segments) == 0
}
