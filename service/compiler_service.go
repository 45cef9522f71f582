package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/compiler"
	"github.com/sessionkit/sessc/internal/parser"
	"github.com/sessionkit/sessc/internal/version"
)

// CompilerServiceImpl implements the CompilerService interface
type CompilerServiceImpl struct {
	fileReader domain.ProtocolFileReader
	executor   domain.ParallelExecutor
	progress   domain.ProgressManager
}

// NewCompilerService creates a new compiler service
func NewCompilerService(fileReader domain.ProtocolFileReader) *CompilerServiceImpl {
	return &CompilerServiceImpl{
		fileReader: fileReader,
		executor:   NewParallelExecutor(),
	}
}

// NewCompilerServiceWithProgress creates a compiler service that reports
// per-file progress while compiling
func NewCompilerServiceWithProgress(fileReader domain.ProtocolFileReader, pm domain.ProgressManager) *CompilerServiceImpl {
	return &CompilerServiceImpl{
		fileReader: fileReader,
		executor:   NewParallelExecutor(),
		progress:   pm,
	}
}

// Compile compiles every protocol file named by the request
func (s *CompilerServiceImpl) Compile(ctx context.Context, req domain.CompileRequest) (*domain.CompileResponse, error) {
	files, err := s.fileReader.CollectProtocolFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect protocol files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no protocol files found in the specified paths", nil)
	}

	var progress domain.TaskProgress = &NoOpTaskProgress{}
	if s.progress != nil {
		progress = s.progress.StartTask("Compiling protocols", len(files))
	}
	defer progress.Complete()

	results := make([]domain.FileResult, len(files))
	var mu sync.Mutex

	tasks := make([]domain.ExecutableTask, 0, len(files))
	for i, file := range files {
		i := i
		tasks = append(tasks, &compileFileTask{
			service: s,
			file:    file,
			req:     req,
			done: func(r *domain.FileResult) {
				mu.Lock()
				results[i] = *r
				mu.Unlock()
				progress.Increment(1)
			},
		})
	}

	if err := s.executor.Execute(ctx, tasks); err != nil {
		return nil, domain.NewCompileError("compilation aborted", err)
	}

	return s.buildResponse(results), nil
}

// CompileFile compiles a single protocol file. Parse and compile
// diagnostics are reported through the result rather than the error
// return, which is reserved for I/O failures.
func (s *CompilerServiceImpl) CompileFile(ctx context.Context, filePath string, req domain.CompileRequest) (*domain.FileResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	src, err := s.fileReader.ReadFile(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(fmt.Sprintf("failed to read %s", filePath), err)
	}

	result := &domain.FileResult{FilePath: filePath}

	unit, err := parser.Parse(filePath, src)
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, parseDiagnostic(filePath, err))
		return result, nil
	}

	compiled := compiler.Compile(unit, compiler.Options{
		FailOnUnreachable: req.FailOnUnreachable,
		MaxNodes:          req.MaxNodes,
	})
	result.Diagnostics = compiled.Diagnostics
	result.Success = !compiled.Fatal
	for _, p := range compiled.Protocols {
		result.Protocols = append(result.Protocols, domain.ProtocolResult{
			Name:   p.Name,
			Target: p.Target,
		})
	}
	return result, nil
}

func (s *CompilerServiceImpl) buildResponse(results []domain.FileResult) *domain.CompileResponse {
	sort.Slice(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})

	resp := &domain.CompileResponse{
		Files:       results,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}
	for _, r := range results {
		resp.Summary.TotalProtocols += len(r.Protocols)
		if r.Success {
			resp.Summary.FilesCompiled++
		} else {
			resp.Summary.FilesFailed++
		}
		errs, warns := domain.CountBySeverity(r.Diagnostics)
		resp.Summary.ErrorCount += errs
		resp.Summary.WarningCount += warns
	}
	return resp
}

func parseDiagnostic(filePath string, err error) domain.Diagnostic {
	d := domain.Diagnostic{
		Code:     domain.DiagParseError,
		Severity: domain.SeverityError,
		Message:  err.Error(),
		File:     filePath,
	}
	if pe, ok := err.(*parser.ParseError); ok {
		d.Message = pe.Msg
		d.Span = domain.Span{StartLine: pe.Line, StartCol: pe.Col, EndLine: pe.Line, EndCol: pe.Col}
	}
	return d
}

// compileFileTask adapts one file compilation to the executor's task model
type compileFileTask struct {
	service *CompilerServiceImpl
	file    string
	req     domain.CompileRequest
	done    func(*domain.FileResult)
}

func (t *compileFileTask) Name() string { return t.file }

func (t *compileFileTask) IsEnabled() bool { return true }

func (t *compileFileTask) Execute(ctx context.Context) (interface{}, error) {
	result, err := t.service.CompileFile(ctx, t.file, t.req)
	if err != nil {
		result = &domain.FileResult{
			FilePath: t.file,
			Diagnostics: []domain.Diagnostic{{
				Code:     domain.DiagParseError,
				Severity: domain.SeverityError,
				Message:  err.Error(),
				File:     t.file,
			}},
		}
	}
	t.done(result)
	return result, nil
}
