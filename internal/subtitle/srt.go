package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// two strict timestamps around an arrow, optionally padded
	timingLineRegex = regexp.MustCompile(
		`^(\d{2,}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2,}:\d{2}:\d{2},\d{3})$`,
	)

	// one or more blank lines, tolerating stray spaces/tabs on them
	blockSplitRegex = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)*`)
)

// Parse converts an SRT document into a Track. Parsing is lenient: a
// block with fewer than three lines, or whose second line is not a
// timing range, is dropped rather than failing the whole document. The
// index line is informational and never validated against position.
// The returned count reports how many blocks were dropped so callers
// can surface a partial-success warning if they want to.
//
// Parse never fails; an empty track is the signal for unusable input.
func Parse(input string) (*Track, int) {
	input = strings.TrimPrefix(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.TrimSpace(input)

	var segments []Segment
	skipped := 0

	if input == "" {
		return NewTrack(segments), 0
	}

	for _, block := range blockSplitRegex.Split(input, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			skipped++
			continue
		}

		// lines[0] is the index; discarded
		matches := timingLineRegex.FindStringSubmatch(strings.TrimSpace(lines[1]))
		if matches == nil {
			skipped++
			continue
		}

		text := strings.TrimSpace(strings.Join(lines[2:], "\n"))

		segments = append(segments, Segment{
			StartTime:    matches[1],
			EndTime:      matches[2],
			Text:         text,
			OriginalText: text,
		})
	}

	return NewTrack(segments), skipped
}

// Serialize renders the track as SRT text. Indices are renumbered from 1
// in current track order regardless of any original numbering, the arrow
// carries exactly one space on each side, and every block ends with a
// blank line. OriginalText is intentionally not written: the format has
// no field for it.
func Serialize(track *Track) string {
	if track.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	for i, seg := range track.Segments {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", seg.StartTime, seg.EndTime)
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// Open reads and parses an SRT file. Unlike Parse it reports failure:
// unreadable files return the underlying error, and a document producing
// zero valid blocks returns ErrNoSegments.
func Open(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRT file: %w", err)
	}

	track, _ := Parse(string(data))
	if track.IsEmpty() {
		return nil, ErrNoSegments
	}

	return track, nil
}

// Write serializes the track to an SRT file, creating parent directories
// as needed.
func Write(track *Track, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(Serialize(track)), 0644)
}
