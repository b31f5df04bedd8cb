package driven

// ConfigStore holds dot-keyed settings such as "llm.temperature".
// Values keep the type the decoder produced; getters convert and report
// the zero value for missing keys or mismatched types.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts any integer shape and whole floats.
	GetInt(key string) int

	// GetFloat widens integers. The boolean is false for missing keys
	// and non-numeric values.
	GetFloat(key string) (float64, bool)

	GetBool(key string) bool

	// Set stores a value and persists it. A failed write leaves the
	// previous value in place.
	Set(key string, value any) error

	// Delete removes a key and persists the change. Missing keys are not an error.
	Delete(key string) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values with the stored ones.
	Load() error

	// Path returns where the values are stored.
	Path() string
}
