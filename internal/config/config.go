package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default compile settings
const (
	// DefaultMaxNodes bounds the control-flow graph arena per compilation
	// unit. 0 falls back to the compiler's built-in cap.
	DefaultMaxNodes = 0

	// DefaultUnreachableSeverity is how unreachable-code findings are
	// reported when the config does not promote them
	DefaultUnreachableSeverity = "warning"
)

// Config represents the main configuration structure
type Config struct {
	// Compile holds protocol compilation configuration
	Compile CompileConfig `json:"compile" mapstructure:"compile" yaml:"compile"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Input holds file collection configuration
	Input InputConfig `json:"input" mapstructure:"input" yaml:"input"`

	// Performance holds parallel execution configuration
	Performance PerformanceConfig `json:"performance,omitempty" mapstructure:"performance" yaml:"performance"`
}

// PerformanceConfig holds configuration for parallel execution
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent file compilations; 0 uses a
	// conservative default
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole compile run; 0 uses the default
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// CompileConfig holds configuration for the compilation pipeline
type CompileConfig struct {
	// FailOnUnreachable promotes unreachable-code findings to errors
	FailOnUnreachable bool `json:"fail_on_unreachable" mapstructure:"fail_on_unreachable" yaml:"fail_on_unreachable"`

	// MaxNodes caps the graph arena per compilation unit; 0 means the
	// compiler default
	MaxNodes int `json:"max_nodes" mapstructure:"max_nodes" yaml:"max_nodes"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, surface
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether to show per-protocol tree listings
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// Directory specifies the output directory for generated files
	// (empty = write to stdout)
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// InputConfig holds configuration for protocol file collection
type InputConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether directories are walked recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Compile: CompileConfig{
			FailOnUnreachable: false,
			MaxNodes:          DefaultMaxNodes,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.ssn"},
			ExcludePatterns: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
			},
			Recursive:      true,
			FollowSymlinks: false,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context. If
// no explicit path is given the config file is discovered relative to
// the target being compiled.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per load avoids shared global state
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common
// locations, starting at the compiled path and walking upward
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"sessc.yaml",
		"sessc.yml",
		".sessc.yaml",
		".sessc.yml",
		"sessc.json",
		".sessc.json",
	}

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "sessc"), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "sessc")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	// SESSC_CONFIG environment variable as a last resort
	if envConfig := os.Getenv("SESSC_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Compile.MaxNodes < 0 {
		return fmt.Errorf("compile.max_nodes must be >= 0, got %d", c.Compile.MaxNodes)
	}

	validFormats := map[string]bool{
		"text":    true,
		"json":    true,
		"yaml":    true,
		"surface": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, surface", c.Output.Format)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("compile", config.Compile)
	v.Set("output", config.Output)
	v.Set("input", config.Input)

	return v.WriteConfig()
}
