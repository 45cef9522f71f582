package app

import (
	"context"
	"fmt"
	"os"

	"github.com/sessionkit/sessc/domain"
)

// CompileUseCase orchestrates the protocol compilation workflow
type CompileUseCase struct {
	service      domain.CompilerService
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	fileHelper   *FileHelper
}

// NewCompileUseCase creates a new compile use case
func NewCompileUseCase(
	service domain.CompilerService,
	formatter domain.OutputFormatter,
	configLoader domain.ConfigurationLoader,
) *CompileUseCase {
	return &CompileUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		fileHelper:   NewFileHelper(),
	}
}

// Execute performs the complete compilation workflow: config merge, file
// collection, compilation, and output formatting
func (uc *CompileUseCase) Execute(ctx context.Context, req domain.CompileRequest) (*domain.CompileResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	req = uc.mergeWithConfig(req)

	response, err := uc.service.Compile(ctx, req)
	if err != nil {
		return nil, err
	}

	writer := req.OutputWriter
	if writer == nil {
		writer = os.Stdout
	}
	if req.ShowDetails && (req.OutputFormat == domain.OutputFormatText || req.OutputFormat == "") {
		err = uc.formatter.WriteDetailed(response, writer)
	} else {
		err = uc.formatter.Write(response, req.OutputFormat, writer)
	}
	if err != nil {
		return nil, domain.NewOutputError("failed to write output", err)
	}

	return response, nil
}

// CompileFile compiles a single protocol file without output formatting
func (uc *CompileUseCase) CompileFile(ctx context.Context, filePath string, req domain.CompileRequest) (*domain.FileResult, error) {
	if !uc.fileHelper.IsValidProtocolFile(filePath) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a protocol source file: %s", filePath), nil)
	}

	exists, err := uc.fileHelper.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	return uc.service.CompileFile(ctx, filePath, req)
}

// mergeWithConfig layers the request over file-based configuration when a
// loader is present. CLI flags in the request win over the file.
func (uc *CompileUseCase) mergeWithConfig(req domain.CompileRequest) domain.CompileRequest {
	if uc.configLoader == nil {
		return req
	}

	var base *domain.CompileRequest
	if req.ConfigPath != "" {
		loaded, err := uc.configLoader.LoadConfig(req.ConfigPath)
		if err == nil {
			base = loaded
		}
	}
	if base == nil {
		base = uc.configLoader.LoadDefaultConfig()
	}

	return *uc.configLoader.MergeConfig(base, &req)
}

func (uc *CompileUseCase) validateRequest(req domain.CompileRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	if req.MaxNodes < 0 {
		return fmt.Errorf("max nodes cannot be negative")
	}

	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatSurface, "":
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	return nil
}

// CompileUseCaseBuilder provides a builder pattern for creating CompileUseCase
type CompileUseCaseBuilder struct {
	service      domain.CompilerService
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	fileHelper   *FileHelper
}

// NewCompileUseCaseBuilder creates a new builder
func NewCompileUseCaseBuilder() *CompileUseCaseBuilder {
	return &CompileUseCaseBuilder{}
}

// WithCompilerService sets the compiler service
func (b *CompileUseCaseBuilder) WithCompilerService(s domain.CompilerService) *CompileUseCaseBuilder {
	b.service = s
	return b
}

// WithOutputFormatter sets the output formatter
func (b *CompileUseCaseBuilder) WithOutputFormatter(f domain.OutputFormatter) *CompileUseCaseBuilder {
	b.formatter = f
	return b
}

// WithConfigurationLoader sets the configuration loader
func (b *CompileUseCaseBuilder) WithConfigurationLoader(l domain.ConfigurationLoader) *CompileUseCaseBuilder {
	b.configLoader = l
	return b
}

// WithFileHelper sets the file helper
func (b *CompileUseCaseBuilder) WithFileHelper(fh *FileHelper) *CompileUseCaseBuilder {
	b.fileHelper = fh
	return b
}

// Build creates the CompileUseCase
func (b *CompileUseCaseBuilder) Build() (*CompileUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("compiler service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := &CompileUseCase{
		service:      b.service,
		formatter:    b.formatter,
		configLoader: b.configLoader,
		fileHelper:   b.fileHelper,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	return uc, nil
}
