package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sessionkit/sessc/app"
	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/service"
	"github.com/spf13/cobra"
)

var (
	compileFormat      string
	compileJSON        bool
	compileSurface     bool
	compileOutputPath  string
	compileShowDetails bool
	compileFailOnDead  bool
	compileMaxNodes    int
	compileConfigPath  string
	compileInclude     []string
	compileExclude     []string
)

func compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [path...]",
		Short: "Compile session protocol files",
		Long: `Compile session protocol files (.ssn) into finite communication trees.

Every protocol declaration is checked for structural soundness, unreachable
statements are reported, and loops that can never be exited are rejected.

Examples:
  sessc compile protocols/
  sessc compile --details protocols/chat.ssn
  sessc compile --json protocols/
  sessc compile --surface protocols/ -o canonical.ssn
  sessc compile --fail-on-unreachable protocols/`,
		RunE: runCompile,
	}

	cmd.Flags().StringVarP(&compileFormat, "format", "f", "text",
		"Output format: text, json, yaml, surface")
	cmd.Flags().BoolVar(&compileJSON, "json", false,
		"Output results as JSON (shorthand for --format json)")
	cmd.Flags().BoolVar(&compileSurface, "surface", false,
		"Print lowered trees as canonical surface syntax (shorthand for --format surface)")
	cmd.Flags().StringVarP(&compileOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().BoolVar(&compileShowDetails, "details", false,
		"Include per-protocol tree listings in text output")
	cmd.Flags().BoolVar(&compileFailOnDead, "fail-on-unreachable", false,
		"Treat unreachable code as an error instead of a warning")
	cmd.Flags().IntVar(&compileMaxNodes, "max-nodes", 0,
		"Maximum graph nodes per compilation unit (0 = default limit)")
	cmd.Flags().StringVarP(&compileConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringSliceVar(&compileInclude, "include", nil,
		"Glob patterns for protocol files to include")
	cmd.Flags().StringSliceVar(&compileExclude, "exclude", nil,
		"Glob patterns for files and directories to exclude")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) (err error) {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	// Determine output format
	format := domain.OutputFormat(compileFormat)
	if compileJSON {
		format = domain.OutputFormatJSON
	} else if compileSurface {
		format = domain.OutputFormatSurface
	}

	// Determine output writer
	var writer *os.File
	if compileOutputPath != "" {
		f, createErr := os.Create(compileOutputPath)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}()
		writer = f
	} else {
		writer = os.Stdout
	}

	// Progress bars would interleave with machine-readable stdout output
	showProgress := format == domain.OutputFormatText && compileOutputPath == ""
	pm := service.NewProgressManager(showProgress)
	defer pm.Close()

	uc, err := app.NewCompileUseCaseBuilder().
		WithCompilerService(service.NewCompilerServiceWithProgress(service.NewProtocolFileReader(), pm)).
		WithOutputFormatter(service.NewOutputFormatter()).
		WithConfigurationLoader(service.NewConfigurationLoader()).
		WithFileHelper(app.NewFileHelper()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to assemble compiler: %w", err)
	}

	req := domain.CompileRequest{
		Paths:             args,
		OutputFormat:      format,
		OutputWriter:      writer,
		ShowDetails:       compileShowDetails,
		FailOnUnreachable: compileFailOnDead,
		MaxNodes:          compileMaxNodes,
		ConfigPath:        compileConfigPath,
		IncludePatterns:   compileInclude,
		ExcludePatterns:   compileExclude,
	}

	response, err := uc.Execute(context.Background(), req)
	if err != nil {
		return err
	}

	if compileOutputPath != "" {
		absPath, _ := filepath.Abs(compileOutputPath)
		fmt.Printf("Output saved to: %s\n", absPath)
	}

	if !response.Success() {
		return fmt.Errorf("compilation failed: %d file(s) had fatal diagnostics", response.Summary.FilesFailed)
	}

	return nil
}
