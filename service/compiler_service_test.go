package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sessionkit/sessc/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestCompileFile_CleanProtocol(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "ping.ssn", `
protocol Ping {
    send Ping;
    recv Pong;
}
`)

	svc := NewCompilerService(NewProtocolFileReader())
	result, err := svc.CompileFile(context.Background(), path, domain.CompileRequest{})
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, diagnostics: %v", result.Diagnostics)
	}
	if len(result.Protocols) != 1 {
		t.Fatalf("expected 1 protocol, got %d", len(result.Protocols))
	}
	if result.Protocols[0].Name != "Ping" {
		t.Errorf("protocol name = %q, want Ping", result.Protocols[0].Name)
	}
	if result.Protocols[0].Target == nil {
		t.Error("clean protocol should have a lowered tree")
	}
}

func TestCompileFile_ParseError(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "bad.ssn", "protocol Bad { send A }\n")

	svc := NewCompilerService(NewProtocolFileReader())
	result, err := svc.CompileFile(context.Background(), path, domain.CompileRequest{})
	if err != nil {
		t.Fatalf("parse errors should be diagnostics, not errors: %v", err)
	}

	if result.Success {
		t.Error("parse failure should not be a success")
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(result.Diagnostics))
	}

	d := result.Diagnostics[0]
	if d.Code != domain.DiagParseError {
		t.Errorf("diagnostic code = %s, want parse-error", d.Code)
	}
	if d.Span.StartLine != 1 {
		t.Errorf("diagnostic line = %d, want 1", d.Span.StartLine)
	}
}

func TestCompileFile_MissingFile(t *testing.T) {
	svc := NewCompilerService(NewProtocolFileReader())

	_, err := svc.CompileFile(context.Background(), "/nonexistent/p.ssn", domain.CompileRequest{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCompileFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewCompilerService(NewProtocolFileReader())
	_, err := svc.CompileFile(ctx, "any.ssn", domain.CompileRequest{})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCompile_MultipleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.ssn", "protocol A { send X; }\n")
	writeFile(t, tmpDir, "b.ssn", "protocol B { recv Y; }\n")
	writeFile(t, tmpDir, "broken.ssn", "protocol C { call Missing; }\n")

	svc := NewCompilerService(NewProtocolFileReader())
	resp, err := svc.Compile(context.Background(), domain.CompileRequest{
		Paths:     []string{tmpDir},
		Recursive: true,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(resp.Files) != 3 {
		t.Fatalf("expected 3 file results, got %d", len(resp.Files))
	}

	// Results are sorted by path
	if filepath.Base(resp.Files[0].FilePath) != "a.ssn" {
		t.Errorf("first result = %s, want a.ssn", resp.Files[0].FilePath)
	}

	if resp.Summary.FilesCompiled != 2 {
		t.Errorf("FilesCompiled = %d, want 2", resp.Summary.FilesCompiled)
	}
	if resp.Summary.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", resp.Summary.FilesFailed)
	}
	if resp.Summary.TotalProtocols != 3 {
		t.Errorf("TotalProtocols = %d, want 3", resp.Summary.TotalProtocols)
	}
	if resp.Summary.ErrorCount == 0 {
		t.Error("ErrorCount should count the undefined callee")
	}
	if resp.GeneratedAt == "" || resp.Version == "" {
		t.Error("response metadata should be populated")
	}
}

func TestCompile_NoFilesFound(t *testing.T) {
	tmpDir := t.TempDir()

	svc := NewCompilerService(NewProtocolFileReader())
	_, err := svc.Compile(context.Background(), domain.CompileRequest{
		Paths:     []string{tmpDir},
		Recursive: true,
	})
	if err == nil {
		t.Fatal("expected error when no protocol files found")
	}

	domainErr, ok := err.(domain.DomainError)
	if !ok {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if domainErr.Code != domain.ErrCodeInvalidInput {
		t.Errorf("error code = %s, want %s", domainErr.Code, domain.ErrCodeInvalidInput)
	}
}

func TestCompile_FailOnUnreachablePromotes(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "leaky.ssn", `
protocol Leaky {
    send Data;
    end;
    recv Never;
}
`)

	svc := NewCompilerService(NewProtocolFileReader())

	// Default: a warning, compilation succeeds
	resp, err := svc.Compile(context.Background(), domain.CompileRequest{
		Paths:     []string{tmpDir},
		Recursive: true,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if resp.Summary.FilesFailed != 0 {
		t.Errorf("unreachable code should be a warning by default, failed=%d", resp.Summary.FilesFailed)
	}
	if resp.Summary.WarningCount != 1 {
		t.Errorf("WarningCount = %d, want 1", resp.Summary.WarningCount)
	}

	// Promoted: an error, compilation fails
	resp, err = svc.Compile(context.Background(), domain.CompileRequest{
		Paths:             []string{tmpDir},
		Recursive:         true,
		FailOnUnreachable: true,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if resp.Summary.FilesFailed != 1 {
		t.Errorf("promoted unreachable code should fail the file, failed=%d", resp.Summary.FilesFailed)
	}
	if resp.Summary.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", resp.Summary.ErrorCount)
	}
}

func TestCompile_MaxNodesLimit(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "big.ssn", `
protocol Big {
    send A;
    send B;
    send C;
}
`)

	svc := NewCompilerService(NewProtocolFileReader())
	resp, err := svc.Compile(context.Background(), domain.CompileRequest{
		Paths:     []string{tmpDir},
		Recursive: true,
		MaxNodes:  2,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if resp.Summary.FilesFailed != 1 {
		t.Errorf("exceeding the node budget should fail the file, failed=%d", resp.Summary.FilesFailed)
	}
}
