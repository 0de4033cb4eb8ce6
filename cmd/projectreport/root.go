package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for projectreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projectreport",
		Short: "Metadata reports for QGIS projects",
		Long: `projectreport documents QGIS projects (.qgs and .qgz files).

For each project it writes a report folder with the project properties,
the layers and their data sources, the fields of every vector layer, the
print layouts and reports, and the layer relations and joins.

Passwords and tokens found in data sources are masked unless --no-redact
is given. Every run is recorded so that later runs can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
