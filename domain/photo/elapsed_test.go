package photo

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		taken time.Time
		want  string
	}{
		{"same instant", now, "Today"},
		{"same day", now.Add(-6 * time.Hour), "Today"},
		{"one day", now.AddDate(0, 0, -1), "1 day ago"},
		{"five days", now.AddDate(0, 0, -5), "5 days ago"},
		{"one month", now.AddDate(0, 0, -31), "1 month ago"},
		{"two months", now.AddDate(0, 0, -65), "2 months ago"},
		{"400 days is a year", now.AddDate(0, 0, -400), "1 year ago"},
		{"three years", now.AddDate(-3, 0, -10), "3 years ago"},
		{"future clamps", now.AddDate(0, 0, 1), "Today"},
	}
	for _, tc := range cases {
		if got := FormatElapsed(tc.taken, now); got != tc.want {
			t.Fatalf("%s: FormatElapsed = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatElapsed_Deterministic(t *testing.T) {
	now := time.Now()
	taken := now.AddDate(-1, -2, -3)
	a := FormatElapsed(taken, now)
	b := FormatElapsed(taken, now)
	if a != b {
		t.Fatalf("FormatElapsed not deterministic: %q vs %q", a, b)
	}
}

func TestFormatDate(t *testing.T) {
	rec := CaptureRecord{
		Taken:  time.Date(2021, 6, 5, 9, 30, 0, 0, time.UTC),
		Source: SourceMetadata,
	}
	if got := FormatDate(rec); got != "2021-06-05" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(CaptureRecord{Source: SourceUnavailable}); got != "Unknown date" {
		t.Fatalf("FormatDate unavailable = %q", got)
	}
}
