package config

import (
	"fmt"
	"strings"
)

// Layout represents how protocol sources are arranged in a project
type Layout string

const (
	LayoutFlat     Layout = "flat"
	LayoutMonorepo Layout = "monorepo"
)

// Strictness represents the compilation strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// LayoutPreset holds file collection presets for different project layouts
type LayoutPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset holds compile settings for different strictness levels
type StrictnessPreset struct {
	FailOnUnreachable bool
}

// GetLayoutPresets returns presets for different project layouts
func GetLayoutPresets() map[Layout]LayoutPreset {
	return map[Layout]LayoutPreset{
		LayoutFlat: {
			IncludePatterns: []string{"*.ssn"},
			ExcludePatterns: []string{},
		},
		LayoutMonorepo: {
			IncludePatterns: []string{"**/*.ssn"},
			ExcludePatterns: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
			},
		},
	}
}

// GetStrictnessPresets returns compile presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed:  {FailOnUnreachable: false},
		StrictnessStandard: {FailOnUnreachable: false},
		StrictnessStrict:   {FailOnUnreachable: true},
	}
}

// GetMinimalConfigTemplate returns a small config with essential options only
func GetMinimalConfigTemplate() string {
	return `# sessc configuration
compile:
  fail_on_unreachable: false

output:
  format: text

input:
  include_patterns:
    - "**/*.ssn"
`
}

// GetFullConfigTemplate returns a documented config for the given layout
// and strictness
func GetFullConfigTemplate(layout Layout, strictness Strictness) string {
	layoutPreset, ok := GetLayoutPresets()[layout]
	if !ok {
		layoutPreset = GetLayoutPresets()[LayoutMonorepo]
	}
	strictPreset, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strictPreset = GetStrictnessPresets()[StrictnessStandard]
	}

	var b strings.Builder
	b.WriteString("# sessc configuration\n")
	b.WriteString("# Generated by 'sessc init'\n\n")

	b.WriteString("compile:\n")
	b.WriteString("  # Treat unreachable protocol steps as errors instead of warnings\n")
	fmt.Fprintf(&b, "  fail_on_unreachable: %t\n", strictPreset.FailOnUnreachable)
	b.WriteString("  # Cap on control-flow graph size per file; 0 uses the built-in limit\n")
	b.WriteString("  max_nodes: 0\n\n")

	b.WriteString("output:\n")
	b.WriteString("  # One of: text, json, yaml, surface\n")
	b.WriteString("  format: text\n")
	b.WriteString("  # Print the lowered tree for every protocol\n")
	b.WriteString("  show_details: false\n\n")

	b.WriteString("input:\n")
	b.WriteString("  include_patterns:\n")
	for _, p := range layoutPreset.IncludePatterns {
		fmt.Fprintf(&b, "    - %q\n", p)
	}
	if len(layoutPreset.ExcludePatterns) > 0 {
		b.WriteString("  exclude_patterns:\n")
		for _, p := range layoutPreset.ExcludePatterns {
			fmt.Fprintf(&b, "    - %q\n", p)
		}
	}
	b.WriteString("  recursive: true\n")

	return b.String()
}
