package schedule

import (
	"fmt"
	"time"
)

// FormatCountdown renders the time left until a restart as "Xd Xh Xm", "H:MM:SS" or "M:SS"
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
}

// FormatCompact renders a duration as "Xh Ym", "Xh", "Ym" or "<1m"
func FormatCompact(d time.Duration) string {
	minutes := int64(d / time.Minute)
	if minutes < 1 {
		return "<1m"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
