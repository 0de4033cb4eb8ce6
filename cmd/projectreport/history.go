package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/database"
)

// historyTimeFormat is used for run dates in terminal output.
const historyTimeFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [project]",
		Short: "List and compare recorded report runs",
		Long: `History shows the report runs recorded by 'projectreport generate'.

Without flags it lists the runs of a project, newest first. With --diff it
compares the latest run with the previous one (or with --with-id) and shows:
- layers added or removed
- layers whose data source, CRS, storage or geometry changed
- fields added or removed

Projects are named after their file, up to the first dot.

Examples:
  # List all projects with recorded runs
  projectreport history --list-projects

  # List the runs of a project
  projectreport history town_plan

  # Compare the latest two runs
  projectreport history --diff town_plan

  # Compare the latest run with run 12, as JSON
  projectreport history --diff --with-id 12 --json town_plan`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-projects", "L", false,
		"List all projects with recorded runs")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest run with an earlier one")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with the run of this id instead of the previous run")
	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the comparison in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	listProjects, err := flags.GetBool("list-projects")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	withID, err := flags.GetInt64("with-id")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	if !listProjects && len(args) == 0 {
		return errors.New("project name is required (use --list-projects to see recorded projects)")
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	out := cmd.OutOrStdout()
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No report runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'projectreport generate <project>' to create one.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case listProjects:
		return listRecordedProjects(ctx, out, db)
	case diff:
		format := diffFormatText
		if jsonOutput {
			format = diffFormatJSON
		} else if markdownOutput {
			format = diffFormatMarkdown
		}
		return runDiff(ctx, out, db, args[0], withID, format)
	default:
		return listRuns(ctx, out, db, args[0])
	}
}

// listRecordedProjects lists the projects that have recorded runs.
func listRecordedProjects(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	projects, err := db.ListProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(out, "No report runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Recorded projects (%d):\n\n", len(projects))
	for _, name := range projects {
		fmt.Fprintf(out, "  • %s\n", name)
	}
	fmt.Fprintln(out, "\nUse 'projectreport history <project>' to see the runs of a project.")
	return nil
}

// listRuns prints the runs of a project as a table.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, project string) error {
	entries, err := db.GetHistory(ctx, project)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No runs recorded for %s\n", project)
		return nil
	}

	fmt.Fprintf(out, "Runs of %s (%d):\n\n", project, len(entries))
	table := tablewriter.NewWriter(out)
	table.Header("ID", "Generated", "Layers", "Fields", "Layouts", "Fingerprint", "Source")
	for _, e := range entries {
		if err := table.Append(
			strconv.FormatInt(e.ID, 10),
			e.GeneratedAt.Local().Format(historyTimeFormat),
			strconv.Itoa(e.LayerCount),
			strconv.Itoa(e.FieldCount),
			strconv.Itoa(e.LayoutCount),
			shortFingerprint(e.Fingerprint),
			e.SourcePath,
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nUse 'projectreport history --diff %s' to compare the latest two runs.\n", project)
	return nil
}

// runDiff compares the latest run of a project with the previous run or
// with the run withID.
func runDiff(ctx context.Context, out io.Writer, db *database.HistoryDB, project string, withID int64, format diffFormat) error {
	entries, err := db.GetHistory(ctx, project)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no runs recorded for %s", project)
	}

	latest := entries[0]
	var previous database.Entry
	switch {
	case withID == latest.ID:
		return fmt.Errorf("run %d is the latest run of %s; choose an earlier run", withID, project)
	case withID > 0:
		found := false
		for _, e := range entries {
			if e.ID == withID {
				previous, found = e, true
				break
			}
		}
		if !found {
			return fmt.Errorf("run %d not found for %s", withID, project)
		}
	case len(entries) < 2:
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(entries))
	default:
		previous = entries[1]
	}

	previousReport, err := db.GetByID(ctx, previous.ID)
	if err != nil {
		return err
	}
	currentReport, err := db.GetByID(ctx, latest.ID)
	if err != nil {
		return err
	}
	if previousReport == nil || currentReport == nil {
		return fmt.Errorf("stored report of %s is missing", project)
	}

	result := compareReports(previous, latest, previousReport, currentReport)

	switch format {
	case diffFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case diffFormatMarkdown:
		return writeDiffMarkdown(out, result)
	default:
		return writeDiffText(out, result)
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
