package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/scconfig/pkg/scconfig/output"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
	"github.com/jamesainslie/scconfig/pkg/scconfig/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile again whenever managed directories change",
	Long: `Run a reconciliation, then watch every web-root directory the manifest
refers to and run again when files there are created, changed, renamed or
removed. Runs verify by default; with --apply drift is corrected as soon as
it appears. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := selectFormatter()
	if err != nil {
		return err
	}
	p, err := newPlan(cfg)
	if err != nil {
		return err
	}

	w, err := watch.New(watchDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range p.manifest.Dirs() {
		abs := filepath.Join(p.webRoot, filepath.FromSlash(dir))
		if err := w.Add(abs); err != nil {
			printWarn("not watching %s: %v", abs, err)
		}
	}
	if len(w.Paths()) == 0 {
		return errors.New("none of the manifest directories exist under the web root")
	}
	printInfo("Watching %d %s under %s", len(w.Paths()), plural(len(w.Paths()), "directory", "directories"), p.webRoot)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := types.ModeVerify
	if viper.GetBool("apply") {
		mode = types.ModeApply
	}

	cycle := func(ctx context.Context, changed []string) {
		for _, path := range changed {
			printVerbose("changed: %s", path)
		}
		reconcileOnce(ctx, p, mode, formatter)
	}

	cycle(ctx, nil)
	if err := w.Run(ctx, cycle); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reconcileOnce runs, records and prints one watch cycle. Failures are
// reported without stopping the watch.
func reconcileOnce(ctx context.Context, p *plan, mode types.Mode, formatter output.Formatter) {
	report, err := p.all(ctx, mode)
	if err != nil {
		printError("%v", err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	recordRun(p.cfg, report)
	if err := printReport(formatter, report); err != nil {
		printError("%v", err)
	}
}
