// Package snapshot provides the persistent key-value store the
// synchronization store hydrates from and persists to. Absent or unreadable
// data is an empty cache, never an error.
package snapshot

// Store is a minimal string key-value store with explicit erase.
type Store interface {
	// Read returns the stored value for key, or ("", false) when absent.
	Read(key string) (string, bool)
	// Write stores the value under key, replacing any previous value.
	Write(key, value string)
	// Clear erases the value stored under key.
	Clear(key string)
}
