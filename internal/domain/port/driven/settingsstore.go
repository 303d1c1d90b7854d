package driven

import "context"

// Well-known settings keys.
const (
	SettingPageSize   = "page_size"
	SettingBackendURL = "backend_url"
)

// SettingsStore defines the driven port for local panel preferences.
type SettingsStore interface {
	// Get retrieves a setting value. Returns ("", nil) when the key is unset
	// — callers apply defaults.
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or replaces a setting value.
	Set(ctx context.Context, key, value string) error

	// All returns every stored setting keyed by name.
	All(ctx context.Context) (map[string]string, error)
}
