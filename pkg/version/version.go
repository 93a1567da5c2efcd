// Package version holds build-time version info injected via ldflags.
//
// Set at compile time:
//
//	go build -ldflags "-X github.com/NicolasHaas/badgeboard/pkg/version.tag=v0.3.0
//	  -X github.com/NicolasHaas/badgeboard/pkg/version.commit=abc1234
//	  -X github.com/NicolasHaas/badgeboard/pkg/version.date=2026-01-01"
package version

// Populated by -ldflags "-X ...". Defaults are used for local dev builds.
var (
	tag    = ""
	commit = "unknown"
	date   = "unknown"
)

// String returns the tag, the short commit, or "dev" for local builds.
func String() string {
	if tag != "" {
		return tag
	}
	if commit != "unknown" {
		return commit
	}
	return "dev"
}

// Full returns "tag (commit) built date" or a sensible fallback.
func Full() string {
	if tag != "" {
		return tag + " (" + commit + ") built " + date
	}
	if commit != "unknown" {
		return commit + " built " + date
	}
	return "dev"
}

// UserAgent is the User-Agent sent by the HTTP and WebSocket clients.
func UserAgent() string {
	return "badgeboard-go/" + String()
}
