package transcribe

import (
	"testing"
)

func TestIngestSegments(t *testing.T) {
	raw := []rawSegment{
		{Start: 0, End: 2.5, Text: "  Hello there  "},
		{Start: 3, End: 3, Text: "zero length"},     // dropped
		{Start: 5, End: 4, Text: "inverted range"},  // repaired by swap
		{Start: -1, End: 1, Text: "negative start"}, // clamped
		{Start: 6, End: 8, Text: "   "},             // empty after trim
	}

	segments := ingestSegments(raw, 0)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segments), segments)
	}

	if segments[0].Text != "Hello there" {
		t.Errorf("text should be trimmed, got %q", segments[0].Text)
	}
	if segments[0].StartTime != "00:00:00,000" || segments[0].EndTime != "00:00:02,500" {
		t.Errorf("unexpected timing: %s --> %s", segments[0].StartTime, segments[0].EndTime)
	}
	if segments[0].OriginalText != segments[0].Text {
		t.Errorf("OriginalText should equal Text at ingestion")
	}

	if segments[1].StartTime != "00:00:04,000" || segments[1].EndTime != "00:00:05,000" {
		t.Errorf("inverted range not repaired: %s --> %s",
			segments[1].StartTime, segments[1].EndTime)
	}

	if segments[2].StartTime != "00:00:00,000" || segments[2].EndTime != "00:00:01,000" {
		t.Errorf("negative start not clamped: %s --> %s",
			segments[2].StartTime, segments[2].EndTime)
	}
}

func TestIngestSegmentsAppliesChunkOffset(t *testing.T) {
	raw := []rawSegment{
		{Start: 1, End: 2, Text: "shifted"},
	}

	segments := ingestSegments(raw, 60)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartTime != "00:01:01,000" || segments[0].EndTime != "00:01:02,000" {
		t.Errorf("offset not applied: %s --> %s",
			segments[0].StartTime, segments[0].EndTime)
	}
}

func TestIngestSegmentsEmpty(t *testing.T) {
	if got := ingestSegments(nil, 0); len(got) != 0 {
		t.Errorf("expected no segments, got %+v", got)
	}
}
