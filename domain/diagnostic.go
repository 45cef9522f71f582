package domain

import (
	"fmt"
	"sort"
)

// Severity classifies how serious a diagnostic is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// DiagnosticCode identifies the kind of problem a diagnostic reports
type DiagnosticCode string

const (
	// DiagParseError reports a surface-syntax error from the parser.
	DiagParseError DiagnosticCode = "parse-error"

	// DiagStructuralError reports a break or continue whose target loop is
	// not a lexical ancestor, or a call to an undefined protocol.
	DiagStructuralError DiagnosticCode = "structural-error"

	// DiagUnreachableCode reports the head of a maximal unreachable region.
	DiagUnreachableCode DiagnosticCode = "unreachable-code"

	// DiagUnproductiveLoop reports a loop with no reachable exit.
	DiagUnproductiveLoop DiagnosticCode = "unproductive-loop"

	// DiagMalformedConstruct reports a construct no sound node could be
	// built for.
	DiagMalformedConstruct DiagnosticCode = "malformed-construct"
)

// Span is a source region in a protocol file (1-based, end-inclusive)
type Span struct {
	StartLine int `json:"start_line" yaml:"start_line"`
	StartCol  int `json:"start_col" yaml:"start_col"`
	EndLine   int `json:"end_line" yaml:"end_line"`
	EndCol    int `json:"end_col" yaml:"end_col"`
}

// Diagnostic is a single compiler finding with provenance
type Diagnostic struct {
	Code     DiagnosticCode `json:"code" yaml:"code"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Protocol string         `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	File     string         `json:"file,omitempty" yaml:"file,omitempty"`
	Span     Span           `json:"span" yaml:"span"`
}

// IsFatal reports whether this diagnostic blocks tree emission
func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic in file:line:col form
func (d Diagnostic) String() string {
	prefix := ""
	if d.File != "" {
		prefix = d.File + ":"
	}
	return fmt.Sprintf("%s%d:%d: %s: %s [%s]",
		prefix, d.Span.StartLine, d.Span.StartCol, d.Severity, d.Message, d.Code)
}

// SortDiagnostics orders diagnostics by location, then code, then message,
// so identical inputs always produce identical diagnostic listings
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		if a.Span.StartCol != b.Span.StartCol {
			return a.Span.StartCol < b.Span.StartCol
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// HasErrors reports whether any diagnostic is fatal
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of errors and warnings
func CountBySeverity(diags []Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		if d.IsFatal() {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
