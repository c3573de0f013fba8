package subtitle

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestShapeDropsEmptySegments(t *testing.T) {
	shaper := NewShaper()

	shaped := shaper.Shape([]Segment{
		{StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "   "},
		{StartTime: "00:00:03,000", EndTime: "00:00:04,000", Text: "kept"},
	})

	if len(shaped) != 1 || shaped[0].Text != "kept" {
		t.Errorf("expected only the non-empty segment, got %+v", shaped)
	}
}

func TestShapeKeepsShortSegments(t *testing.T) {
	shaper := NewShaper()

	in := Segment{StartTime: "00:00:01,000", EndTime: "00:00:03,000", Text: "Short line"}
	shaped := shaper.Shape([]Segment{in})

	if len(shaped) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(shaped))
	}
	if shaped[0].StartTime != in.StartTime || shaped[0].EndTime != in.EndTime {
		t.Errorf("timing should be unchanged, got %s --> %s",
			shaped[0].StartTime, shaped[0].EndTime)
	}
	if shaped[0].OriginalText != shaped[0].Text {
		t.Errorf("OriginalText should mirror Text, got %q", shaped[0].OriginalText)
	}
}

func TestShapeSplitsLongText(t *testing.T) {
	shaper := NewShaper()

	longText := strings.Repeat("word ", 40) // 200 chars, well over 84
	shaped := shaper.Shape([]Segment{
		{StartTime: "00:00:00,000", EndTime: "00:00:10,000", Text: strings.TrimSpace(longText)},
	})

	if len(shaped) < 2 {
		t.Fatalf("expected long text to split, got %d segments", len(shaped))
	}

	// continuity: each split starts where the previous ended, last ends
	// at the original end time
	for i := 1; i < len(shaped); i++ {
		if shaped[i].StartTime != shaped[i-1].EndTime {
			t.Errorf("split %d not contiguous: %s vs %s",
				i, shaped[i-1].EndTime, shaped[i].StartTime)
		}
	}
	if last := shaped[len(shaped)-1]; last.EndTime != "00:00:10,000" {
		t.Errorf("last split should end at original end, got %s", last.EndTime)
	}

	for i, seg := range shaped {
		for _, line := range strings.Split(seg.Text, "\n") {
			if utf8.RuneCountInString(line) > shaper.MaxCharsPerLine {
				t.Errorf("segment %d line too long: %q", i, line)
			}
		}
	}
}

func TestShapeSplitsLongDuration(t *testing.T) {
	shaper := NewShaper()

	shaped := shaper.Shape([]Segment{
		{StartTime: "00:00:00,000", EndTime: "00:00:20,000", Text: "a few words spoken very slowly"},
	})

	if len(shaped) < 2 {
		t.Fatalf("expected duration split, got %d segments", len(shaped))
	}
}

func TestWrapBalancesLines(t *testing.T) {
	shaper := NewShaper()

	text := "this line is definitely too long to fit on one subtitle line"
	wrapped := shaper.wrap(text)

	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), wrapped)
	}
	if strings.Join(strings.Fields(wrapped), " ") != text {
		t.Errorf("wrap should preserve words, got %q", wrapped)
	}
}

func TestWrapLeavesShortTextAlone(t *testing.T) {
	shaper := NewShaper()
	if got := shaper.wrap("short"); got != "short" {
		t.Errorf("expected unchanged text, got %q", got)
	}
}
