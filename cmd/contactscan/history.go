package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactscan/contactscan/internal/config"
	"github.com/contactscan/contactscan/internal/database"
	"github.com/contactscan/contactscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "List past crawl runs",
		Long: `History lists the crawl runs recorded in the local database,
newest first. With a seed URL argument, only runs for that seed are
shown.

Examples:
  # List all recorded runs
  contactscan history

  # List runs for one seed
  contactscan history https://example.com

  # Show the full result of a run
  contactscan history --run 5f0c7a3e-...

  # Re-export a stored run
  contactscan history --run 5f0c7a3e-... -o findings.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("run", "", "Show the full stored result for the given run ID")
	cmd.Flags().StringP("output", "o", "", "Write the shown run to the given file (.json, .csv or .md)")
	cmd.Flags().String("db-dir", "", "Database directory (default: user data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet.")
		return nil
	}
	defer db.Close() //nolint:errcheck // Close on exit is best effort

	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}
	if runID != "" {
		return showRun(cmd, db, runID)
	}

	seed := ""
	if len(args) > 0 {
		seed = args[0]
	}
	return listRuns(cmd, db, seed)
}

// listRuns prints the stored runs as a table.
func listRuns(cmd *cobra.Command, db *database.CrawlDB, seed string) error {
	runs, err := db.ListRuns(cmd.Context(), seed)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSEED\tSTATE\tPAGES\tFINDINGS\tSTARTED\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.RunID,
			run.SeedURL,
			run.State,
			run.PagesVisited,
			run.FindingCount,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

// showRun prints or exports the full stored result of one run.
func showRun(cmd *cobra.Command, db *database.CrawlDB, runID string) error {
	result, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	outputFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputFile != "" {
		w, closer, err := report.ForPath(outputFile)
		if err != nil {
			return err
		}
		defer closer.Close() //nolint:errcheck // Close error is secondary to write error

		if _, err := w.Write(result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", outputFile)
		return nil
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	_, err = writer.Write(result)
	return err
}
