package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sessionkit/sessc/domain"
	"gopkg.in/yaml.v3"
)

func sampleResponse() *domain.CompileResponse {
	tree := &domain.Target{
		Kind: domain.TargetSend, Type: "Ping",
		Then: &domain.Target{
			Kind: domain.TargetRecv, Type: "Pong",
			Then: &domain.Target{Kind: domain.TargetDone},
		},
	}

	return &domain.CompileResponse{
		Files: []domain.FileResult{
			{
				FilePath: "ping.ssn",
				Protocols: []domain.ProtocolResult{
					{Name: "Ping", Target: tree},
				},
				Success: true,
			},
			{
				FilePath: "broken.ssn",
				Protocols: []domain.ProtocolResult{
					{Name: "Broken", Target: nil},
				},
				Diagnostics: []domain.Diagnostic{
					{
						Code:     domain.DiagStructuralError,
						Severity: domain.SeverityError,
						Message:  "call references undefined protocol Missing",
						Protocol: "Broken",
						File:     "broken.ssn",
						Span:     domain.Span{StartLine: 3, StartCol: 5},
					},
				},
				Success: false,
			},
		},
		Summary: domain.CompileSummary{
			FilesCompiled:  1,
			FilesFailed:    1,
			TotalProtocols: 2,
			ErrorCount:     1,
		},
		GeneratedAt: "2025-01-01T00:00:00Z",
		Version:     "test",
	}
}

func TestFormatText(t *testing.T) {
	formatter := NewOutputFormatter()

	out, err := formatter.Format(sampleResponse(), domain.OutputFormatText)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	for _, want := range []string{
		"=== Protocol Compilation ===",
		"Files compiled: 1",
		"Files failed: 1",
		"ping.ssn: ok",
		"broken.ssn: FAILED",
		"protocol Ping: 3 nodes",
		"protocol Broken: no output",
		"call references undefined protocol Missing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q", want)
		}
	}

	// Without details no tree listing should appear
	if strings.Contains(out, "send Ping;") {
		t.Error("plain text output should not include tree listings")
	}
}

func TestWriteDetailedIncludesTrees(t *testing.T) {
	formatter := NewOutputFormatter()

	var buf bytes.Buffer
	if err := formatter.WriteDetailed(sampleResponse(), &buf); err != nil {
		t.Fatalf("WriteDetailed failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "protocol Ping {") {
		t.Error("detailed output should include the surface tree")
	}
	if !strings.Contains(out, "send Ping;") {
		t.Error("detailed output should include tree statements")
	}
}

func TestFormatJSON(t *testing.T) {
	formatter := NewOutputFormatter()

	out, err := formatter.Format(sampleResponse(), domain.OutputFormatJSON)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded domain.CompileResponse
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded.Files) != 2 {
		t.Errorf("expected 2 files, got %d", len(decoded.Files))
	}
	if decoded.Files[0].Protocols[0].Name != "Ping" {
		t.Errorf("protocol name = %q, want Ping", decoded.Files[0].Protocols[0].Name)
	}
	if decoded.Files[0].Protocols[0].Target.Kind != domain.TargetSend {
		t.Errorf("tree root kind = %s, want send", decoded.Files[0].Protocols[0].Target.Kind)
	}
}

func TestFormatYAML(t *testing.T) {
	formatter := NewOutputFormatter()

	out, err := formatter.Format(sampleResponse(), domain.OutputFormatYAML)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded domain.CompileResponse
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	if decoded.Summary.TotalProtocols != 2 {
		t.Errorf("expected 2 protocols in summary, got %d", decoded.Summary.TotalProtocols)
	}
}

func TestFormatSurface(t *testing.T) {
	formatter := NewOutputFormatter()

	out, err := formatter.Format(sampleResponse(), domain.OutputFormatSurface)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if !strings.Contains(out, "protocol Ping {") {
		t.Error("surface output missing protocol declaration")
	}
	if !strings.Contains(out, "recv Pong;") {
		t.Error("surface output missing recv statement")
	}
	// Protocols without trees are skipped
	if strings.Contains(out, "Broken") {
		t.Error("surface output should skip protocols without trees")
	}
}

func TestFormatUnsupported(t *testing.T) {
	formatter := NewOutputFormatter()

	_, err := formatter.Format(sampleResponse(), domain.OutputFormat("xml"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	domainErr, ok := err.(domain.DomainError)
	if !ok {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if domainErr.Code != domain.ErrCodeUnsupportedFormat {
		t.Errorf("error code = %s, want %s", domainErr.Code, domain.ErrCodeUnsupportedFormat)
	}
}

func TestFormatSurfaceSeparatesProtocols(t *testing.T) {
	resp := sampleResponse()
	resp.Files[1].Protocols[0].Target = &domain.Target{Kind: domain.TargetDone}

	formatter := NewOutputFormatter()
	out, err := formatter.Format(resp, domain.OutputFormatSurface)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if !strings.Contains(out, "}\n\nprotocol Broken {") {
		t.Errorf("declarations should be separated by a blank line:\n%s", out)
	}
}
