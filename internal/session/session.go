package session

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mgpai22/katha/internal/playback"
	"github.com/mgpai22/katha/internal/subtitle"
)

var ErrNoTrack = errors.New("no subtitle track loaded")

// Renderer receives the active text (or blank) on every change. It is
// the on-screen overlay collaborator; no timing metadata is exposed
// beyond the line to display.
type Renderer interface {
	Display(text string)
}

// Session wires a subtitle track to a playback clock and a renderer.
// It owns the current track and replaces the reference atomically on
// upload, generation, or clear: a tick that started against the old
// track completes against it, the next tick sees the new one. Tracks
// are immutable once constructed, so no torn reads are possible.
type Session struct {
	track    atomic.Pointer[subtitle.Track]
	sync     *playback.Synchronizer
	clock    playback.Clock
	renderer Renderer
}

// New creates a session bound to the given clock and renderer. Either
// may be nil for callers that only need track management and export.
func New(clock playback.Clock, renderer Renderer) *Session {
	return &Session{
		sync:     playback.NewSynchronizer(),
		clock:    clock,
		renderer: renderer,
	}
}

// LoadSRT replaces the current track with one parsed from SRT text.
// Malformed blocks are dropped silently per the codec's lenient policy;
// only a document with zero usable blocks is an error the caller must
// act on. The number of skipped blocks is returned for callers that
// want to surface a partial-success warning.
func (s *Session) LoadSRT(text string) (int, error) {
	track, skipped := subtitle.Parse(text)
	if track.IsEmpty() {
		return skipped, subtitle.ErrNoSegments
	}

	s.replace(track)
	return skipped, nil
}

// SetTrack replaces the current track wholesale, e.g. with the result
// of an AI generation run.
func (s *Session) SetTrack(track *subtitle.Track) {
	if track.IsEmpty() {
		s.Clear()
		return
	}
	s.replace(track)
}

// SetSegments replaces the current track with one built from already
// validated segments, the AI ingestion path. An empty slice clears.
func (s *Session) SetSegments(segments []subtitle.Segment, language string) {
	if len(segments) == 0 {
		s.Clear()
		return
	}
	track := subtitle.NewTrack(segments)
	track.Language = language
	s.replace(track)
}

// Clear drops the current track. The next tick renders blank.
func (s *Session) Clear() {
	s.track.Store(nil)
	s.sync.Reset()
	if s.renderer != nil {
		s.renderer.Display("")
	}
}

// Track returns the current track, or nil when none is loaded.
func (s *Session) Track() *subtitle.Track {
	return s.track.Load()
}

// ExportSRT serializes the current track, renumbered from 1 in current
// order. Translation provenance (OriginalText) is not representable in
// SRT and is intentionally lost.
func (s *Session) ExportSRT() (string, error) {
	track := s.track.Load()
	if track.IsEmpty() {
		return "", ErrNoTrack
	}
	return subtitle.Serialize(track), nil
}

// HandleTimeUpdate is the clock-source callback: it recomputes the
// active text for the given instant and pushes it to the renderer only
// when it changed. Calls are serialized by the single-threaded event
// loop of the host; a fresh scan per call means backward jumps and
// clock resets need no special handling.
func (s *Session) HandleTimeUpdate(seconds float64) {
	text, changed := s.sync.Tick(s.track.Load(), seconds)
	if changed && s.renderer != nil {
		s.renderer.Display(text)
	}
}

// ActiveText returns the displayable text at the given instant without
// touching renderer or change-detection state.
func (s *Session) ActiveText(seconds float64) string {
	return playback.ActiveText(s.track.Load(), seconds)
}

// SeekToSegment jumps the external clock to the start of the segment at
// the given zero-based index and resumes playback.
func (s *Session) SeekToSegment(index int) error {
	track := s.track.Load()
	if track.IsEmpty() {
		return ErrNoTrack
	}
	if index < 0 || index >= len(track.Segments) {
		return fmt.Errorf("segment index %d out of range (0-%d)",
			index, len(track.Segments)-1)
	}
	if s.clock == nil {
		return errors.New("no playback clock attached")
	}

	playback.SeekToSegment(s.clock, track.Segments[index])
	return nil
}

func (s *Session) replace(track *subtitle.Track) {
	s.track.Store(track)
	s.sync.Reset()
}
