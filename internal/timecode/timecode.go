// Package timecode converts between whole seconds and the mm:ss strings shown
// and typed by users.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a duration string to seconds. It accepts "mm:ss" and a bare
// integer; a bare integer of at most two digits is read as minutes, anything
// longer as seconds ("5" is 5:00, "90" is 90:00, "300" is 05:00).
// Input that cannot be parsed yields 0. Parse never panics.
func Parse(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if strings.Contains(text, ":") {
		parts := strings.Split(text, ":")
		if len(parts) != 2 {
			return 0
		}
		minutes := nonNegative(parts[0])
		seconds := nonNegative(parts[1])
		if minutes > (math.MaxInt-seconds)/60 {
			return 0
		}
		return minutes*60 + seconds
	}

	n := nonNegative(text)
	if len(text) <= 2 {
		return n * 60
	}
	return n
}

// Format renders seconds as zero-padded "mm:ss". Minutes are not capped at 59.
// Negative input renders as "00:00".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatTotal renders seconds as "15m 30s", the form used for session totals.
func FormatTotal(seconds int) string {
	if seconds < 0 {
		return "0m 0s"
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// Pace converts a speed in km/h to a per-kilometre pace in "mm:ss".
// Speeds at or below zero have no pace and render as "--:--".
func Pace(speedKph float64) string {
	if speedKph <= 0 || math.IsNaN(speedKph) || math.IsInf(speedKph, 0) {
		return "--:--"
	}
	return Format(int(math.Round(3600 / speedKph)))
}

func nonNegative(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
