package service

import (
	"fmt"

	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.CompileRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	return c.convertToCompileRequest(cfg), nil
}

// LoadDefaultConfig loads the default configuration, discovering a
// sessc.yaml near the working directory when one exists
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.CompileRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return c.convertToCompileRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	cfg = config.DefaultConfig()
	return c.convertToCompileRequest(cfg)
}

// MergeConfig merges CLI flags with configuration file. Explicit CLI
// values win; zero values leave the base untouched.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.CompileRequest, override *domain.CompileRequest) *domain.CompileRequest {
	merged := *base

	// Paths always come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	if override.ShowDetails {
		merged.ShowDetails = override.ShowDetails
	}

	if override.FailOnUnreachable {
		merged.FailOnUnreachable = override.FailOnUnreachable
	}

	if override.MaxNodes > 0 {
		merged.MaxNodes = override.MaxNodes
	}

	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}

	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}

	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// ValidateConfig validates the request before compilation starts
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.CompileRequest) error {
	if req.MaxNodes < 0 {
		return fmt.Errorf("max_nodes cannot be negative, got %d", req.MaxNodes)
	}

	validFormats := map[domain.OutputFormat]bool{
		domain.OutputFormatText:    true,
		domain.OutputFormatJSON:    true,
		domain.OutputFormatYAML:    true,
		domain.OutputFormatSurface: true,
	}
	if !validFormats[req.OutputFormat] {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, surface)",
			req.OutputFormat)
	}

	return nil
}

func (c *ConfigurationLoaderImpl) convertToCompileRequest(cfg *config.Config) *domain.CompileRequest {
	return &domain.CompileRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		ShowDetails:  cfg.Output.ShowDetails,

		FailOnUnreachable: cfg.Compile.FailOnUnreachable,
		MaxNodes:          cfg.Compile.MaxNodes,

		Recursive:       cfg.Input.Recursive,
		IncludePatterns: cfg.Input.IncludePatterns,
		ExcludePatterns: cfg.Input.ExcludePatterns,
	}
}
