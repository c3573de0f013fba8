package transcribe

import (
	"strings"

	"github.com/mgpai22/katha/internal/subtitle"
)

// rawSegment is the provider wire shape: start/end in float seconds.
type rawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ingestSegments validates provider output at the trust boundary before
// it enters the subtitle model. Entries are repaired where possible
// (negative times clamp to zero, inverted ranges are swapped) and
// dropped where not (empty text, zero-length ranges). Offset shifts the
// whole chunk into the original recording's timeline.
func ingestSegments(raw []rawSegment, offset float64) []subtitle.Segment {
	segments := make([]subtitle.Segment, 0, len(raw))

	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}

		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}
		if end < start {
			start, end = end, start
		}
		if end == start {
			continue
		}

		startTS := subtitle.FormatTimestamp(start + offset)
		endTS := subtitle.FormatTimestamp(end + offset)

		segments = append(segments, subtitle.Segment{
			StartTime:    startTS,
			EndTime:      endTS,
			Text:         text,
			OriginalText: text,
		})
	}

	return segments
}
