package model

import "time"

// ActivityEntry is one line of the activity feed: who earned which badge.
type ActivityEntry struct {
	User  string `json:"user"`
	Badge string `json:"badge"`
	Date  string `json:"date"`
}

// PrependActivity returns feed with e in front, capped at limit entries.
// The input slice is not modified.
func PrependActivity(feed []ActivityEntry, e ActivityEntry, limit int) []ActivityEntry {
	n := len(feed) + 1
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]ActivityEntry, 0, n)
	out = append(out, e)
	for _, old := range feed {
		if len(out) == n {
			break
		}
		out = append(out, old)
	}
	return out
}

// FormatAwardDate renders an award timestamp the way the server stores it.
func FormatAwardDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
