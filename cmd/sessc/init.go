package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/sessionkit/sessc/internal/config"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a sessc configuration file",
		Long: `Generate a documented sessc configuration file with sensible defaults.

By default, creates sessc.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create sessc.yaml in current directory
  sessc init

  # Custom output path
  sessc init --config custom.yaml

  # Overwrite existing file
  sessc init --force

  # Generate smaller config with essential options only
  sessc init --minimal

  # Interactive setup wizard
  sessc init --interactive
  sessc init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "sessc.yaml",
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	// Get flag values from command
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	var layout config.Layout = config.LayoutFlat
	var strictness config.Strictness = config.StrictnessStandard

	// Run interactive setup if requested
	if interactive {
		var err error
		var interactiveConfigPath string
		layout, strictness, interactiveConfigPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
		configPath = interactiveConfigPath
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	// Generate config content
	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(layout, strictness)
	}

	// Write to file
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Print success message with absolute path if possible, otherwise use relative path
	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'sessc compile .' to compile your protocols.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.Layout, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("sessc Configuration Setup")
	fmt.Println("=========================")
	fmt.Println()

	// Layout selection
	layouts := []struct {
		Label string
		Value config.Layout
	}{
		{"Flat (protocols in one directory)", config.LayoutFlat},
		{"Monorepo (protocols spread across packages)", config.LayoutMonorepo},
	}

	layoutTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	layoutPrompt := promptui.Select{
		Label:     "How is your project laid out?",
		Items:     layouts,
		Templates: layoutTemplates,
	}

	layoutIdx, _, err := layoutPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("layout selection cancelled: %w", err)
	}
	selectedLayout := layouts[layoutIdx].Value

	fmt.Println()

	// Strictness selection
	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Unreachable code reported as warnings", config.StrictnessStandard},
		{"Relaxed", "Larger node budget, fewer warnings", config.StrictnessRelaxed},
		{"Strict", "Unreachable code fails the build, CI/CD enforcement", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should compilation be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Println()

	// Output path prompt
	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	// Use default if empty
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return selectedLayout, selectedStrictness, outputPath, nil
}
