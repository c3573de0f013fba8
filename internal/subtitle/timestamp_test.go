package subtitle

import (
	"math"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty string", "", 0},
		{"whitespace only", "   ", 0},
		{"zero", "00:00:00,000", 0},
		{"simple", "00:01:02,500", 62.5},
		{"hours", "01:00:00,000", 3600},
		{"full precision", "02:34:56,789", 2*3600 + 34*60 + 56.789},
		{"garbage", "bad", 0},
		{"two parts only", "01:02", 0},
		{"missing milliseconds", "00:00:05", 5},
		{"multi-digit hours", "123:00:01,000", 123*3600 + 1},
		{"non-numeric component", "aa:bb:cc,dd", 0},
		{"partial garbage", "00:aa:10,000", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.input)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00,000"},
		{"negative clamps", -5, "00:00:00,000"},
		{"simple", 62.5, "00:01:02,500"},
		{"sub-second", 0.042, "00:00:00,042"},
		{"hours", 3723.456, "01:02:03,456"},
		{"long video", 100*3600 + 1.5, "100:00:01,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	// seeking to a formatted timestamp must land on the same instant
	for _, seconds := range []float64{0, 1.5, 62.5, 3599.999, 7261.042} {
		ts := FormatTimestamp(seconds)
		got := ParseTimestamp(ts)
		if math.Abs(got-seconds) > 0.001 {
			t.Errorf("round trip %v -> %q -> %v", seconds, ts, got)
		}
	}
}
