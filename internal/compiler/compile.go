package compiler

import (
	"fmt"

	"github.com/sessionkit/sessc/domain"
	"github.com/sessionkit/sessc/internal/parser"
)

// DefaultMaxNodes bounds the graph arena per compilation unit. Protocol
// graphs are small in practice; the cap exists so a pathological input
// cannot balloon memory.
const DefaultMaxNodes = 65536

// Options configure one compilation
type Options struct {
	// FailOnUnreachable promotes unreachable-code findings from warnings
	// to errors
	FailOnUnreachable bool

	// MaxNodes caps the graph arena; 0 means DefaultMaxNodes
	MaxNodes int
}

// Protocol is one compiled protocol. Target is nil when the protocol
// carried a fatal diagnostic.
type Protocol struct {
	Name   string
	Target *domain.Target
}

// Result is the outcome of compiling one unit
type Result struct {
	Protocols   []Protocol
	Diagnostics []domain.Diagnostic

	// Fatal reports whether any error-severity diagnostic was produced
	Fatal bool
}

// Compile runs the full pipeline on a parsed unit: graph construction,
// scope resolution, flow analysis, reachability reporting, and lowering.
func Compile(unit *parser.Node, opts Options) *Result {
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	g := BuildUnit(unit)
	if g.Len() > maxNodes {
		g.AddUnitDiagnostic(domain.DiagStructuralError, domain.SeverityError,
			fmt.Sprintf("compilation unit exceeds %d graph nodes", maxNodes), unit.Location)
		diags := g.Diagnostics()
		return &Result{Diagnostics: diags, Fatal: true}
	}

	Resolve(g)
	facts := SolveFlow(g)

	severity := domain.SeverityWarning
	if opts.FailOnUnreachable {
		severity = domain.SeverityError
	}
	ReportUnreachable(g, facts, severity)

	result := &Result{}
	lowered := make([]*domain.Target, 0, len(g.Roots()))
	for _, root := range g.Roots() {
		t, ok := LowerProtocol(g, facts, root.Root)
		if !ok {
			t = nil
		}
		lowered = append(lowered, t)
	}
	// diagnostics are collected after lowering so unproductive-loop and
	// jump findings are included
	result.Diagnostics = g.Diagnostics()
	result.Fatal = domain.HasErrors(result.Diagnostics)
	for i, root := range g.Roots() {
		result.Protocols = append(result.Protocols, Protocol{Name: root.Name, Target: lowered[i]})
	}
	return result
}
