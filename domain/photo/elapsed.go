package photo

import (
	"fmt"
	"time"
)

// FormatElapsed renders the time between taken and now as a coarse phrase
// using the largest whole unit: "3 years ago", "2 months ago", "5 days
// ago", or "Today". Capture dates in the future clamp to "Today" rather
// than producing a negative phrase. Pure function of its inputs.
func FormatElapsed(taken, now time.Time) string {
	days := int(now.Sub(taken).Hours() / 24)
	if days < 0 {
		days = 0
	}
	switch {
	case days >= 365:
		return pluralAgo(days/365, "year")
	case days >= 30:
		return pluralAgo(days/30, "month")
	case days >= 1:
		return pluralAgo(days, "day")
	default:
		return "Today"
	}
}

// FormatDate renders the capture date for the overlay, or "Unknown date"
// when the record carries no timestamp.
func FormatDate(rec CaptureRecord) string {
	if !rec.HasTimestamp() {
		return "Unknown date"
	}
	return rec.Taken.Format("2006-01-02")
}

func pluralAgo(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
