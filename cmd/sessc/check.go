package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/config"
	"github.com/sessionkit/sessc/internal/version"
	"github.com/sessionkit/sessc/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkAllowUnreachable bool
	checkMaxNodes         int
	checkVerbose          bool
	checkJSON             bool
	checkConfigPath       string
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fast protocol check for CI/CD pipelines",
		Long: `Compile protocol files and fail on diagnostics, for CI/CD integration.

Exit codes:
  0 - All protocols compile cleanly
  1 - Diagnostics reported (structural errors, unreachable code)
  2 - Check error (file not found, bad configuration, etc.)

Examples:
  # Basic check
  sessc check protocols/

  # Tolerate unreachable-code warnings
  sessc check --allow-unreachable protocols/

  # JSON output for machine parsing
  sessc check --json protocols/`,
		RunE:          runCheck,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().BoolVar(&checkAllowUnreachable, "allow-unreachable", false,
		"Allow unreachable-code warnings without failing")
	cmd.Flags().IntVar(&checkMaxNodes, "max-nodes", 0,
		"Maximum graph nodes per compilation unit (0 = default limit)")
	cmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Show detailed output")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &CheckExitError{Code: 2, Message: "no paths specified"}
	}

	startTime := time.Now()

	// Load configuration
	cfg, err := config.LoadConfigWithTarget(checkConfigPath, args[0])
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	// Apply config values for flags not explicitly set on CLI
	if !cmd.Flags().Changed("max-nodes") && cfg.Compile.MaxNodes > 0 {
		checkMaxNodes = cfg.Compile.MaxNodes
	}

	// Collect protocol files (using include/exclude patterns from config)
	fileReader := service.NewProtocolFileReader()
	files, err := fileReader.CollectProtocolFiles(args, cfg.Input.Recursive,
		cfg.Input.IncludePatterns, cfg.Input.ExcludePatterns)
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to collect files: %v", err)}
	}

	if len(files) == 0 {
		return &CheckExitError{Code: 2, Message: "no protocol files found"}
	}

	// Create progress manager (auto-disabled for JSON output or non-TTY/CI)
	pm := service.NewProgressManager(!checkJSON)
	defer pm.Close()

	// Initialize result
	result := &domain.CheckResult{
		Passed:     true,
		ExitCode:   0,
		Violations: []domain.CheckViolation{},
		Summary: domain.CheckSummary{
			FilesChecked: len(files),
		},
	}

	ctx := context.Background()
	svc := service.NewCompilerService(fileReader)
	req := domain.CompileRequest{MaxNodes: checkMaxNodes}

	task := pm.StartTask("Checking protocols", len(files))
	for _, filePath := range files {
		fileResult, err := svc.CompileFile(ctx, filePath, req)
		if err != nil {
			task.Complete()
			return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to compile %s: %v", filePath, err)}
		}
		checkFileResult(fileResult, result)
		task.Increment(1)
	}
	task.Complete()

	return outputCheckResult(result, startTime)
}

// checkFileResult folds one file's diagnostics into the check result
func checkFileResult(fileResult *domain.FileResult, result *domain.CheckResult) {
	result.Summary.ProtocolsCompiled += len(fileResult.Protocols)

	for _, d := range fileResult.Diagnostics {
		category := "structure"
		if d.Code == domain.DiagUnreachableCode {
			category = "reachability"
		}

		if d.IsFatal() {
			result.Summary.ErrorDiagnostics++
		} else {
			result.Summary.WarningDiagnostics++
			if checkAllowUnreachable && d.Code == domain.DiagUnreachableCode {
				continue
			}
		}

		result.Passed = false
		result.Violations = append(result.Violations, domain.CheckViolation{
			Category: category,
			Rule:     string(d.Code),
			Severity: string(d.Severity),
			Message:  d.Message,
			Location: fmt.Sprintf("%s:%d", fileResult.FilePath, d.Span.StartLine),
			Protocol: d.Protocol,
		})
	}
}

func outputCheckResult(result *domain.CheckResult, startTime time.Time) error {
	result.Duration = time.Since(startTime).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	result.Version = version.Version
	result.ExitCode = 0
	if !result.Passed {
		result.ExitCode = 1
	}
	result.Summary.TotalViolations = len(result.Violations)

	if checkJSON {
		return outputCheckJSON(result)
	}

	return outputCheckText(result)
}

func outputCheckText(result *domain.CheckResult) error {
	if result.Passed {
		fmt.Println("PASS: All protocols compile cleanly")
		if checkVerbose {
			fmt.Printf("  Files checked: %d\n", result.Summary.FilesChecked)
			fmt.Printf("  Protocols compiled: %d\n", result.Summary.ProtocolsCompiled)
			fmt.Printf("  Duration: %dms\n", result.Duration)
		}
		return nil
	}

	fmt.Println("FAIL: Protocol check failed")
	fmt.Printf("  Violations: %d\n", result.Summary.TotalViolations)

	// Print violations
	for _, v := range result.Violations {
		severity := "ERROR"
		if v.Severity == "warning" {
			severity = "WARN"
		}
		fmt.Printf("  [%s] %s: %s\n", severity, v.Category, v.Message)
		if checkVerbose && v.Location != "" {
			fmt.Printf("         at %s\n", v.Location)
		}
	}

	if checkVerbose {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("  Files: %d\n", result.Summary.FilesChecked)
		fmt.Printf("  Protocols: %d\n", result.Summary.ProtocolsCompiled)
		fmt.Printf("  Errors: %d\n", result.Summary.ErrorDiagnostics)
		fmt.Printf("  Warnings: %d\n", result.Summary.WarningDiagnostics)
		fmt.Printf("  Duration: %dms\n", result.Duration)
	}

	return &CheckExitError{Code: 1, Message: ""}
}

func outputCheckJSON(result *domain.CheckResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if !result.Passed {
		return &CheckExitError{Code: 1, Message: ""}
	}
	return nil
}
