// Package store provides client-local persistence: a small key/value
// LocalStorage backed by SQLite (or memory, for tests), the SessionStore
// that owns the persisted login, and theme Preferences.
package store

// LocalStorage is a string key/value medium that survives process restarts.
// Implementations must make SetItem a single atomic write so a concurrent
// reader never observes a partially written value.
type LocalStorage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool, error)

	// SetItem creates or replaces the value under key.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Close releases the underlying medium.
	Close() error
}

// Keys used by the client.
const (
	KeyCurrentUser = "currentUser"
	KeyTheme       = "theme"
)
