package driven

// ConfigStore persists settings as values under dot-separated keys such as
// "embedding.base_url". A write is durable once Set or Unset returns.
type ConfigStore interface {
	// Get returns the stored value and whether key is set.
	Get(key string) (any, bool)

	// Set stores value under key.
	Set(key string, value any) error

	// Unset removes key so its default applies again. Unsetting a missing key is a no-op.
	Unset(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Path names where values are persisted.
	Path() string
}
