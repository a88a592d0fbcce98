package filesystem

import "maps"

// Reserved configuration keys understood by every adapter.
const (
	// OptionVisibility selects the visibility of written or copied files.
	OptionVisibility = "visibility"

	// OptionDirectoryVisibility selects the visibility of created directories.
	OptionDirectoryVisibility = "directory_visibility"

	// OptionRetainVisibility controls whether Copy carries over the source
	// visibility when no explicit visibility is given. Defaults to true.
	OptionRetainVisibility = "retain_visibility"

	// OptionChecksumAlgorithm selects the algorithm used by ChecksumProvider.
	OptionChecksumAlgorithm = "checksum_algo"
)

// Config is an immutable set of per-call options.
//
// Backend-specific options (content type, cache headers, encryption...) are
// carried verbatim; each adapter decides which keys it honours.
type Config struct {
	values map[string]any
}

// NewConfig returns a Config holding a copy of values.
func NewConfig(values map[string]any) Config {
	return Config{values: maps.Clone(values)}
}

// Get returns the raw value stored under key.
func (c Config) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value under key when it is a non-empty string.
func (c Config) String(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case Visibility:
		return string(s), s != ""
	default:
		return "", false
	}
}

// Bool returns the boolean under key, or fallback when missing or not a bool.
func (c Config) Bool(key string, fallback bool) bool {
	if v, ok := c.values[key].(bool); ok {
		return v
	}
	return fallback
}

// Visibility returns the value of OptionVisibility.
func (c Config) Visibility() (Visibility, bool) {
	s, ok := c.String(OptionVisibility)
	return Visibility(s), ok
}

// Extend returns a new Config where values override existing keys.
func (c Config) Extend(values map[string]any) Config {
	merged := maps.Clone(c.values)
	if merged == nil {
		merged = make(map[string]any, len(values))
	}
	maps.Copy(merged, values)
	return Config{values: merged}
}

// WithDefaults returns a new Config where defaults fill in missing keys only.
func (c Config) WithDefaults(defaults map[string]any) Config {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]any, len(c.values))
	}
	maps.Copy(merged, c.values)
	return Config{values: merged}
}

// Len returns the number of options set.
func (c Config) Len() int {
	return len(c.values)
}
