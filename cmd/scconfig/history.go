package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
	"github.com/jamesainslie/scconfig/pkg/scconfig/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View previous runs",
	Long: `View the history of verify and apply runs.

Every reconciliation is stored with its full trace unless --no-history is
given or history is disabled in the config file. Runs expire after the
configured retention period.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the report of a run",
	Long: `Display the report of a stored run. The ID may be abbreviated to any
unique prefix. The report is printed with the format chosen by -o.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove runs older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit     int
	historyOlderThan time.Duration
)

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of runs to list")
	historyCleanCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "remove runs older than this (default: retention period)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

func withHistory(fn func(*config.Config, *history.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

// runHistory lists recent runs.
func runHistory(_ *cobra.Command, _ []string) error {
	return withHistory(func(_ *config.Config, store *history.Store) error {
		runs, err := store.List(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(runs) == 0 {
			printInfo("No runs recorded.")
			printInfo("Run 'scconfig' to verify a web root.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tMODE\tROLE\tTARGET\tOK\tACTION\tFAIL\tRENAMED\tWEB ROOT")
		for _, run := range runs {
			s := run.Summary
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				run.ShortID(),
				humanize.Time(run.Timestamp),
				run.Mode,
				run.Role,
				run.Target,
				s.OK, s.ActionRequired, s.Failed, s.Changed,
				run.WebRoot,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		printInfo("\nShowing %d %s. Use 'scconfig history show <id>' for details.",
			len(runs), plural(len(runs), "run", "runs"))
		return nil
	})
}

// runHistoryShow prints the report of one run.
func runHistoryShow(_ *cobra.Command, args []string) error {
	formatter, err := selectFormatter()
	if err != nil {
		return err
	}

	return withHistory(func(_ *config.Config, store *history.Store) error {
		run, err := store.Get(args[0])
		if err != nil {
			return err
		}
		printInfo("Run %s, %s (%s)", run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(run.Timestamp))
		return printReport(formatter, run.Report())
	})
}

// runHistoryClean removes old runs.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	return withHistory(func(cfg *config.Config, store *history.Store) error {
		age := historyOlderThan
		if age <= 0 {
			days := cfg.History.RetentionDays
			if days <= 0 {
				days = config.DefaultRetentionDays
			}
			age = time.Duration(days) * 24 * time.Hour
		}

		printVerbose("Removing runs older than %s", age)

		n, err := store.Cleanup(time.Now().Add(-age))
		if err != nil {
			return fmt.Errorf("failed to clean history: %w", err)
		}
		printInfo("Removed %d %s.", n, plural(n, "run", "runs"))
		return nil
	})
}
