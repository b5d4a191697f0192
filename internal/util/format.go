package util

import (
	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in IEC units (e.g. "1.5 GiB")
func FormatBytes(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}

// FormatCount renders an integer with thousands separators
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
