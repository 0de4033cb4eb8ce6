package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/database"
	applog "github.com/geoinnova/projectreport/internal/log"
	"github.com/geoinnova/projectreport/internal/pipeline"
	"github.com/geoinnova/projectreport/internal/qgis"
	"github.com/geoinnova/projectreport/internal/report"
)

// errProjectsFailed is returned when at least one project could not be
// reported. The other projects are still written.
var errProjectsFailed = errors.New("some projects failed")

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <project.qgs|project.qgz|directory>...",
		Short: "Write metadata reports for QGIS projects",
		Long: `Generate reads QGIS project files and writes one report folder per project:

  <output-dir>/<project>/csv/01_project.csv   project properties
  <output-dir>/<project>/csv/02_layers.csv    layers and data sources
  <output-dir>/<project>/csv/03_fields.csv    fields of vector layers
  <output-dir>/<project>/csv/04_layouts.csv   print layouts and reports
  <output-dir>/<project>/csv/05_relations.csv layer relations
  <output-dir>/<project>/csv/06_joins.csv     vector joins
  <output-dir>/<project>/<project>.html       all tables on one page

Field types and feature counts of GeoPackage layers are read from the
GeoPackage files when they can be found next to the project.

Examples:
  # Report on one project into the current directory
  projectreport generate town_plan.qgz

  # Several projects, CSV for a Spanish spreadsheet and JSON
  projectreport generate -o reports --csv-encoding windows-1252 -f csv -f json *.qgz

  # Replace an earlier report and keep database passwords visible
  projectreport generate --overwrite --no-redact utilities.qgs

  # Every project file in a directory
  projectreport generate -o reports ./projects`,
		Args: cobra.ArbitraryArgs,
		RunE: runGenerateCmd,
	}

	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Base directory for the report folders")
	cmd.Flags().StringSliceP("format", "f", append([]string(nil), config.DefaultFormats...),
		"Output format: csv, html, markdown, json (repeatable)")
	cmd.Flags().Bool("overwrite", false,
		"Remove an existing report folder before writing")
	cmd.Flags().Bool("no-redact", false,
		"Keep passwords and tokens of data sources in the report")
	cmd.Flags().String("csv-encoding", config.DefaultCSVEncoding,
		"Character encoding of the CSV files (e.g. utf-8, windows-1252)")
	cmd.Flags().String("csv-delimiter", config.DefaultCSVDelimiter,
		"CSV field delimiter")
	cmd.Flags().String("html-title", "",
		"HTML page title (default: \"<project> project report\")")
	cmd.Flags().Bool("pretty-json", false,
		"Indent the JSON report")
	cmd.Flags().Bool("raw-headers", false,
		"Use the CSV column names as HTML table headers")

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of projects processed concurrently")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .projectreport in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := validateOutputOptions(cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.LogJSON {
		logger = applog.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runGenerate(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getPersistentBool retrieves a boolean flag from the command or its parent.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// expandTargets replaces every directory argument with the project files
// it contains, in name order. Other arguments are kept as given so that a
// missing file is reported by the run for that file.
func expandTargets(args []string) ([]string, error) {
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			targets = append(targets, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if !e.IsDir() && qgis.IsProjectFile(e.Name()) {
				targets = append(targets, filepath.Join(arg, e.Name()))
			}
		}
	}
	return targets, nil
}

// buildConfig creates a Config from the command flags and the configuration
// file. Flags set on the command line are pinned so the file cannot
// override them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.Formats, err = flags.GetStringSlice("format"); err != nil {
		return nil, err
	}
	if cfg.Overwrite, err = flags.GetBool("overwrite"); err != nil {
		return nil, err
	}
	noRedact, err := flags.GetBool("no-redact")
	if err != nil {
		return nil, err
	}
	cfg.Redact = !noRedact
	if cfg.CSVEncoding, err = flags.GetString("csv-encoding"); err != nil {
		return nil, err
	}
	if cfg.CSVDelimiter, err = flags.GetString("csv-delimiter"); err != nil {
		return nil, err
	}
	if cfg.HTMLTitle, err = flags.GetString("html-title"); err != nil {
		return nil, err
	}
	if cfg.PrettyJSON, err = flags.GetBool("pretty-json"); err != nil {
		return nil, err
	}
	if cfg.RawHeaders, err = flags.GetBool("raw-headers"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.History = !noHistory
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	pins := map[string]config.Setting{
		"output-dir":    config.SettingOutputDir,
		"format":        config.SettingFormats,
		"overwrite":     config.SettingOverwrite,
		"no-redact":     config.SettingRedact,
		"csv-encoding":  config.SettingCSVEncoding,
		"csv-delimiter": config.SettingCSVDelimiter,
		"html-title":    config.SettingHTMLTitle,
	}
	for flag, setting := range pins {
		if flags.Changed(flag) {
			cfg.Pin(setting)
		}
	}

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicit config path must exist; a missing default file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.ProjectFile, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Verbose = getPersistentBool(cmd, "verbose")
	cfg.LogJSON = getPersistentBool(cmd, "log-json")
	if cfg.Targets, err = expandTargets(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateOutputOptions checks the format names and CSV options given on the
// command line before any project is read.
func validateOutputOptions(cfg *config.Config) error {
	if _, err := report.ParseFormats(cfg.Formats); err != nil {
		return err
	}
	return report.ValidateCSVOptions(report.CSVOptions{
		Delimiter: cfg.Delimiter(),
		Encoding:  cfg.CSVEncoding,
	})
}

// runGenerate reports on every target and prints a summary per project.
func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) error {
	logger.Info("starting report generation",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"history", cfg.History,
	)

	var db *database.HistoryDB
	if cfg.History {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	startTime := time.Now()
	bp := pipeline.NewBatchProcessor(cfg,
		func() *pipeline.Pipeline { return pipeline.DefaultPipeline(logger, db) },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	runs, err := bp.ProcessBatch(ctx, cfg.Targets)

	failed := 0
	for _, run := range runs {
		if run.Err != nil {
			failed++
			fmt.Fprintf(errOut, "Error: %s: %v\n", run.Path, run.Err)
			continue
		}
		if err := printRun(out, run); err != nil {
			return err
		}
	}

	if len(runs) > 1 {
		fmt.Fprintf(out, "%d of %d projects reported in %s\n",
			len(runs)-failed, len(runs), time.Since(startTime).Round(time.Millisecond))
	}

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errProjectsFailed, failed, len(runs))
	}
	return nil
}

// printRun prints the section counts and the report location of a run.
func printRun(out io.Writer, run *pipeline.Run) error {
	if _, err := report.NewSummaryWriter(out).Write(run.Report); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s (%s, %d files)\n",
		run.Layout.ReportDir, run.Scaffold, len(run.Files))
	if run.HistoryID != 0 {
		fmt.Fprintf(out, "Recorded as history entry %d\n", run.HistoryID)
	}
	if run.Unchanged {
		fmt.Fprintln(out, "Project file unchanged since the last recorded run")
	}
	fmt.Fprintln(out)
	return nil
}
