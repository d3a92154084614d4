package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService resolves and edits application settings.
type SettingsService interface {
	// Get returns the validated settings: defaults overlaid with stored configuration.
	Get() (domain.Settings, error)

	// Validate checks settings against their constraints.
	Validate(settings domain.Settings) error

	// Set parses and stores a single setting by its configuration key.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies again.
	Reset(key string) error

	// List returns every known key with its effective value.
	List() ([]domain.SettingEntry, error)

	// Keys returns the recognised configuration keys.
	Keys() []string
}
