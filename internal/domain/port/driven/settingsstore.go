package driven

import "context"

// SettingsStore defines the driven port for the named key/value settings
// (options) store. Writes are atomic per key.
type SettingsStore interface {
	// Get returns the stored value and whether it exists.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set stores or replaces the value.
	Set(ctx context.Context, name, value string) error

	// SetIfAbsent stores value only when name has no value yet. It returns the
	// value that is stored after the call, which is the existing one when the
	// name was already set.
	SetIfAbsent(ctx context.Context, name, value string) (string, error)

	// Delete removes the value. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}
