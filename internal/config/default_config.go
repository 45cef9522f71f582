package config

// LoadDefaultConfig returns the built-in configuration, kept behind a
// constructor so callers never share one mutable instance
func LoadDefaultConfig() (*Config, error) {
	return DefaultConfig(), nil
}
