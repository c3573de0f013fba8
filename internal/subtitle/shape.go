package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Shaper normalizes raw transcription segments for display: overlong
// entries are split across multiple segments and text is wrapped to at
// most two balanced lines.
type Shaper struct {
	MaxCharsPerLine  int
	MaxLinesPerEntry int
	MaxEntrySeconds  float64
}

func NewShaper() *Shaper {
	return &Shaper{
		MaxCharsPerLine:  42, // standard subtitle line length
		MaxLinesPerEntry: 2,  // most players render two lines
		MaxEntrySeconds:  7,
	}
}

// Shape rewrites a segment sequence so every entry fits the display
// limits. Empty-text segments are dropped. Timestamps stay in canonical
// text form; splits divide the original time range evenly.
func (g *Shaper) Shape(segments []Segment) []Segment {
	var shaped []Segment

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		start := ParseTimestamp(seg.StartTime)
		end := ParseTimestamp(seg.EndTime)

		if !g.needsSplit(text, end-start) {
			shaped = append(shaped, Segment{
				StartTime:    seg.StartTime,
				EndTime:      seg.EndTime,
				Text:         g.wrap(text),
				OriginalText: g.wrap(text),
			})
			continue
		}

		shaped = append(shaped, g.split(text, start, end)...)
	}

	return shaped
}

func (g *Shaper) needsSplit(text string, duration float64) bool {
	if utf8.RuneCountInString(text) > g.MaxCharsPerLine*g.MaxLinesPerEntry {
		return true
	}
	return duration > g.MaxEntrySeconds
}

// split distributes words across enough entries that each fits both the
// character and duration limits, dividing the time range evenly.
func (g *Shaper) split(text string, start, end float64) []Segment {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxChars := g.MaxCharsPerLine * g.MaxLinesPerEntry
	totalChars := utf8.RuneCountInString(text)

	numSplits := (totalChars + maxChars - 1) / maxChars
	if numSplits < 1 {
		numSplits = 1
	}
	if end > start {
		durationSplits := int((end-start)/g.MaxEntrySeconds) + 1
		if durationSplits > numSplits {
			numSplits = durationSplits
		}
	}

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	perSplit := (end - start) / float64(numSplits)

	var segments []Segment
	cursor := start

	for i := 0; i < numSplits && len(words) > 0; i++ {
		take := wordsPerSplit
		if take > len(words) {
			take = len(words)
		}

		chunk := strings.Join(words[:take], " ")
		words = words[take:]

		segEnd := cursor + perSplit
		if len(words) == 0 {
			segEnd = end
		}

		segments = append(segments, Segment{
			StartTime:    FormatTimestamp(cursor),
			EndTime:      FormatTimestamp(segEnd),
			Text:         g.wrap(chunk),
			OriginalText: g.wrap(chunk),
		})

		cursor = segEnd
	}

	return segments
}

// wrap breaks text near its midpoint into two lines when it exceeds the
// single-line limit. Text that cannot be split stays on one line.
func (g *Shaper) wrap(text string) string {
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // joining space
		}
		diff := currentLen - middle
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" +
			strings.Join(words[bestSplit:], " ")
	}

	return text
}
