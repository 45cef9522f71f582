package domain

// CheckResult represents the result of a protocol quality check
type CheckResult struct {
	Passed      bool             `json:"passed"`
	ExitCode    int              `json:"exit_code"`
	Violations  []CheckViolation `json:"violations"`
	Summary     CheckSummary     `json:"summary"`
	Duration    int64            `json:"duration_ms"`
	GeneratedAt string           `json:"generated_at"`
	Version     string           `json:"version"`
}

// CheckViolation represents a single check failure
type CheckViolation struct {
	Category string `json:"category"`           // structure, reachability
	Rule     string `json:"rule"`               // no-errors, no-unreachable, etc.
	Severity string `json:"severity"`           // error, warning
	Message  string `json:"message"`            // Human-readable description
	Location string `json:"location,omitempty"` // File:line if applicable
	Protocol string `json:"protocol,omitempty"` // Protocol name if applicable
}

// CheckSummary provides aggregate statistics
type CheckSummary struct {
	FilesChecked       int `json:"files_checked"`
	ProtocolsCompiled  int `json:"protocols_compiled"`
	TotalViolations    int `json:"total_violations"`
	ErrorDiagnostics   int `json:"error_diagnostics"`
	WarningDiagnostics int `json:"warning_diagnostics"`
}
