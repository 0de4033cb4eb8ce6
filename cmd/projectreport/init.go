package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/geoinnova/projectreport/internal/config"
)

//go:embed templates/projectreport.yaml
var configTemplate embed.FS

const templatePath = "templates/projectreport.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a projectreport configuration file",
		Long: `Init writes an annotated .projectreport configuration file.

The file sets defaults for every report (output directory, formats, CSV
encoding and delimiter) and per-project overrides keyed by project name.
Command-line flags always take precedence over the file.

Examples:
  # Create .projectreport in the current directory
  projectreport init

  # Create the file at a specific path
  projectreport init -o ~/.config/projectreport/config.yaml

  # Overwrite an existing file
  projectreport init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set per-project options such as:")
	fmt.Fprintln(out, "  - output directory and formats")
	fmt.Fprintln(out, "  - CSV encoding and delimiter")
	fmt.Fprintln(out, "  - HTML page title")
	return nil
}
