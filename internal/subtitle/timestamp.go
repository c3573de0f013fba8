package subtitle

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp converts an SRT timestamp of the form HH:MM:SS,mmm to
// floating-point seconds. It never fails: an empty string or anything
// with fewer than three colon-separated parts degrades to 0, and any
// non-numeric component counts as 0. Hour fields longer than two digits
// are parsed as-is without range validation.
func ParseTimestamp(ts string) float64 {
	if strings.TrimSpace(ts) == "" {
		return 0
	}

	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 3 {
		return 0
	}

	hours := atoiOrZero(parts[0])
	minutes := atoiOrZero(parts[1])

	secParts := strings.SplitN(parts[2], ",", 2)
	seconds := atoiOrZero(secParts[0])
	millis := 0
	if len(secParts) == 2 {
		millis = atoiOrZero(secParts[1])
	}

	return float64(hours)*3600 +
		float64(minutes)*60 +
		float64(seconds) +
		float64(millis)/1000
}

// FormatTimestamp renders seconds in the canonical HH:MM:SS,mmm form.
// Negative inputs clamp to zero. Hours widen past two digits if needed.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	totalMillis := int64(seconds*1000 + 0.5)
	hours := totalMillis / 3600000
	minutes := (totalMillis / 60000) % 60
	secs := (totalMillis / 1000) % 60
	millis := totalMillis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
