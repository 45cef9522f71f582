package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sessionkit/sessc/domain"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Format formats the compile response according to the specified format
func (f *OutputFormatterImpl) Format(response *domain.CompileResponse, format domain.OutputFormat) (string, error) {
	var sb strings.Builder
	if err := f.Write(response, format, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write writes the formatted output to the writer
func (f *OutputFormatterImpl) Write(response *domain.CompileResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return f.writeYAML(response, writer)
	case domain.OutputFormatText:
		return f.writeText(response, writer, false)
	case domain.OutputFormatSurface:
		return f.writeSurface(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteDetailed writes the text format with per-protocol tree listings
func (f *OutputFormatterImpl) WriteDetailed(response *domain.CompileResponse, writer io.Writer) error {
	return f.writeText(response, writer, true)
}

func (f *OutputFormatterImpl) writeYAML(response *domain.CompileResponse, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(response); err != nil {
		return err
	}
	return enc.Close()
}

// writeText writes the compile response as a human-readable report
func (f *OutputFormatterImpl) writeText(response *domain.CompileResponse, writer io.Writer, showDetails bool) error {
	fmt.Fprintf(writer, "\n=== Protocol Compilation ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files compiled: %d\n", response.Summary.FilesCompiled)
	fmt.Fprintf(writer, "  Files failed: %d\n", response.Summary.FilesFailed)
	fmt.Fprintf(writer, "  Protocols: %d\n", response.Summary.TotalProtocols)
	fmt.Fprintf(writer, "  Errors: %d\n", response.Summary.ErrorCount)
	fmt.Fprintf(writer, "  Warnings: %d\n", response.Summary.WarningCount)
	fmt.Fprintf(writer, "\n")

	for _, file := range response.Files {
		status := "ok"
		if !file.Success {
			status = "FAILED"
		}
		fmt.Fprintf(writer, "%s: %s\n", file.FilePath, status)
		for _, d := range file.Diagnostics {
			fmt.Fprintf(writer, "  %s\n", d.String())
		}
		for _, p := range file.Protocols {
			if p.Target == nil {
				fmt.Fprintf(writer, "  protocol %s: no output\n", p.Name)
				continue
			}
			fmt.Fprintf(writer, "  protocol %s: %d nodes\n", p.Name, p.Target.NodeCount())
			if showDetails {
				indentLines(writer, p.Target.Surface(p.Name), "    ")
			}
		}
	}

	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	return nil
}

// writeSurface prints every lowered protocol back in canonical surface
// syntax, one declaration after another
func (f *OutputFormatterImpl) writeSurface(response *domain.CompileResponse, writer io.Writer) error {
	first := true
	for _, file := range response.Files {
		for _, p := range file.Protocols {
			if p.Target == nil {
				continue
			}
			if !first {
				fmt.Fprintln(writer)
			}
			first = false
			if _, err := io.WriteString(writer, p.Target.Surface(p.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func indentLines(writer io.Writer, text, prefix string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(writer, "%s%s\n", prefix, line)
	}
}
