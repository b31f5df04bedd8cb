package driving

import "github.com/custodia-labs/docrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns settings merged from defaults, the config file and the environment.
	Get() (*domain.AppSettings, error)

	// Set stores one dotted config key.
	Set(key, value string) error

	// Unset removes a key from the config file.
	Unset(key string) error

	// Path returns the config file location.
	Path() string

	// Keys lists every key Set accepts.
	Keys() []string
}
