package ccs

import (
	"fmt"
	"time"
)

// FormatRelTime formats a duration as CCS RELTIME (H:MM:SS.mmm, with a
// single leading minus for durations before the contest start).
func FormatRelTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	millis := d.Milliseconds() % 1000
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, hours, minutes, seconds, millis)
}

// FormatTime formats an absolute timestamp as CCS TIME
// (yyyy-MM-dd'T'HH:mm:ss.SSS with a +hh:mm offset, or Z for UTC).
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}
