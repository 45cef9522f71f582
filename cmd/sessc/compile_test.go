package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProtocolFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write protocol file: %v", err)
	}
	return path
}

const cleanProtocol = `
protocol Ping {
    send Ping;
    recv Pong;
}
`

const unreachableProtocol = `
protocol Leaky {
    send Data;
    end;
    recv Never;
}
`

func TestCompileCommand_JSONOutputToFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "ping.ssn", cleanProtocol)
	outPath := filepath.Join(tmpDir, "result.json")

	cmd := compileCmd()
	cmd.SetArgs([]string{"--json", "-o", outPath, tmpDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("compile command failed: %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	out := string(content)
	if !strings.Contains(out, `"files"`) {
		t.Error("JSON output missing files section")
	}
	if !strings.Contains(out, `"Ping"`) {
		t.Error("JSON output missing protocol name")
	}
	if !strings.Contains(out, `"summary"`) {
		t.Error("JSON output missing summary section")
	}
}

func TestCompileCommand_SurfaceOutput(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "ping.ssn", cleanProtocol)
	outPath := filepath.Join(tmpDir, "canonical.ssn")

	cmd := compileCmd()
	cmd.SetArgs([]string{"--surface", "-o", outPath, tmpDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("compile --surface failed: %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	out := string(content)
	if !strings.Contains(out, "protocol Ping") {
		t.Errorf("surface output missing protocol declaration:\n%s", out)
	}
	if !strings.Contains(out, "send Ping;") {
		t.Errorf("surface output missing send statement:\n%s", out)
	}
}

func TestCompileCommand_FatalDiagnostics(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "broken.ssn", `
protocol Broken {
    call Missing;
}
`)
	outPath := filepath.Join(tmpDir, "result.json")

	cmd := compileCmd()
	cmd.SetArgs([]string{"--json", "-o", outPath, tmpDir})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error for protocol with fatal diagnostics")
	}
	if !strings.Contains(err.Error(), "compilation failed") {
		t.Errorf("Expected compilation failure error, got: %v", err)
	}
}

func TestCompileCommand_NoProtocolFiles(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := compileCmd()
	cmd.SetArgs([]string{"--json", tmpDir})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for directory without protocol files")
	}
}

func TestCheckCommand_CleanProtocol(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "ping.ssn", cleanProtocol)

	cmd := checkCmd()
	cmd.SetArgs([]string{tmpDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("check should pass for clean protocol, got: %v", err)
	}
}

func TestCheckCommand_UnreachableCode(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "leaky.ssn", unreachableProtocol)

	cmd := checkCmd()
	cmd.SetArgs([]string{tmpDir})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected check to fail for unreachable code")
	}

	exitErr, ok := err.(*CheckExitError)
	if !ok {
		t.Fatalf("Expected *CheckExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.Code)
	}
}

func TestCheckCommand_AllowUnreachable(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "leaky.ssn", unreachableProtocol)

	cmd := checkCmd()
	cmd.SetArgs([]string{"--allow-unreachable", tmpDir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("check --allow-unreachable should pass, got: %v", err)
	}
}

func TestCheckCommand_StructuralError(t *testing.T) {
	tmpDir := t.TempDir()
	writeProtocolFile(t, tmpDir, "broken.ssn", `
protocol Broken {
    break;
}
`)

	cmd := checkCmd()
	cmd.SetArgs([]string{"--allow-unreachable", tmpDir})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected check to fail for structural error")
	}

	exitErr, ok := err.(*CheckExitError)
	if !ok {
		t.Fatalf("Expected *CheckExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.Code)
	}
}
