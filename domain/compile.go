package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText    OutputFormat = "text"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatSurface OutputFormat = "surface"
)

// CompileRequest represents a request to compile protocol files
type CompileRequest struct {
	// Input files or directories to compile
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	ShowDetails  bool

	// Diagnostics policy
	FailOnUnreachable bool

	// Resource bound for a single compilation unit's node arena
	MaxNodes int

	// Configuration
	ConfigPath string

	// File collection options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// ProtocolResult is the outcome of lowering a single protocol declaration
type ProtocolResult struct {
	Name string `json:"name" yaml:"name"`

	// Target is the lowered tree; nil when the protocol carried a fatal
	// diagnostic and no tree was emitted
	Target *Target `json:"target,omitempty" yaml:"target,omitempty"`
}

// FileResult is the outcome of compiling one protocol file
type FileResult struct {
	FilePath    string           `json:"file_path" yaml:"file_path"`
	Protocols   []ProtocolResult `json:"protocols" yaml:"protocols"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Success     bool             `json:"success" yaml:"success"`
}

// CompileSummary provides aggregate statistics over a compile run
type CompileSummary struct {
	FilesCompiled  int `json:"files_compiled" yaml:"files_compiled"`
	FilesFailed    int `json:"files_failed" yaml:"files_failed"`
	TotalProtocols int `json:"total_protocols" yaml:"total_protocols"`
	ErrorCount     int `json:"error_count" yaml:"error_count"`
	WarningCount   int `json:"warning_count" yaml:"warning_count"`
}

// CompileResponse represents the complete result of a compile run
type CompileResponse struct {
	Files   []FileResult   `json:"files" yaml:"files"`
	Summary CompileSummary `json:"summary" yaml:"summary"`

	// Warnings and issues outside any single file
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// Success reports whether every file compiled without fatal diagnostics
func (r *CompileResponse) Success() bool {
	return r.Summary.FilesFailed == 0 && len(r.Errors) == 0
}

// CompilerService defines the core business logic for protocol compilation
type CompilerService interface {
	// Compile compiles all protocol files named by the request
	Compile(ctx context.Context, req CompileRequest) (*CompileResponse, error)

	// CompileFile compiles a single protocol file
	CompileFile(ctx context.Context, filePath string, req CompileRequest) (*FileResult, error)
}

// ProtocolFileReader defines file collection and reading operations
type ProtocolFileReader interface {
	// CollectProtocolFiles recursively finds all protocol files in the given paths
	CollectProtocolFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsValidProtocolFile checks if a file is a protocol source file
	IsValidProtocolFile(path string) bool

	// FileExists checks if a file exists and returns an error if not
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting compile results
type OutputFormatter interface {
	// Format formats the compile response according to the specified format
	Format(response *CompileResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *CompileResponse, format OutputFormat, writer io.Writer) error

	// WriteDetailed writes the text format with per-protocol tree listings
	WriteDetailed(response *CompileResponse, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*CompileRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *CompileRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *CompileRequest, override *CompileRequest) *CompileRequest
}
