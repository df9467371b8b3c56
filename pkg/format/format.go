// Package format renders counts, durations and sizes for display.
package format

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Number renders a view count: 2000000 -> "2.0M", 1500 -> "1.5K", 999 -> "999".
func Number(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}

// Duration renders seconds as M:SS, or H:MM:SS from one hour on.
func Duration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	secs := seconds % 60
	if minutes >= 60 {
		return fmt.Sprintf("%d:%02d:%02d", minutes/60, minutes%60, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// Filesize renders a byte count in IEC units ("0B" for unknown sizes).
func Filesize(bytes int64) string {
	if bytes <= 0 {
		return "0B"
	}
	return humanize.IBytes(uint64(bytes))
}
