package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/scconfig/cmd/scconfig/tui"
	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/history"
	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
	"github.com/jamesainslie/scconfig/pkg/scconfig/metrics"
	"github.com/jamesainslie/scconfig/pkg/scconfig/output"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Verify or apply the manifest against the web root",
	Long: `Resolve every manifest entry to its file under the web root and decide
whether it must be enabled or disabled for the role and target.

In verify mode (the default) nothing is renamed and entries that need a
change are reported as ACTION. With --apply the renames are performed.

Exit status is 1 if any entry failed, 2 with --strict if any entry still
needs a change, 0 otherwise.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

// addReconcileFlags registers the reconciliation flags as persistent flags
// so that reconcile and watch share them with the root command.
func addReconcileFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.Bool("apply", false, "perform renames instead of only reporting them")
	pf.Bool("strict", false, "exit 2 when any entry needs a change")
	pf.StringP("output", "o", "pretty", "output format: "+strings.Join(output.Available(), ", "))
	pf.String("template", "", "Go template for -o template")
	pf.Bool("confirm", false, "with --apply, preview the changes and ask before renaming")
	pf.BoolP("interactive", "i", false, "browse the verify results and pick changes to apply")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile")
	pf.Bool("no-history", false, "do not record the run in history")

	_ = viper.BindPFlag("apply", pf.Lookup("apply"))
	_ = viper.BindPFlag("strict", pf.Lookup("strict"))
	_ = viper.BindPFlag("output", pf.Lookup("output"))
	_ = viper.BindPFlag("template", pf.Lookup("template"))
	_ = viper.BindPFlag("confirm", pf.Lookup("confirm"))
	_ = viper.BindPFlag("interactive", pf.Lookup("interactive"))
	_ = viper.BindPFlag("metrics.file", pf.Lookup("metrics-file"))
	_ = viper.BindPFlag("no_history", pf.Lookup("no-history"))
}

// plan is everything a run needs besides its mode and entries.
type plan struct {
	cfg      *config.Config
	webRoot  string
	role     types.Role
	target   types.SearchProvider
	manifest *manifest.Manifest
}

// newPlan validates the configuration and loads the manifest.
func newPlan(cfg *config.Config) (*plan, error) {
	if cfg.WebRoot == "" {
		return nil, errors.New("no web root: use --webroot or set webroot in the config file")
	}
	webRoot, err := filepath.Abs(cfg.WebRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve web root: %w", err)
	}
	info, err := os.Stat(webRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("web root does not exist: %s", webRoot)
		}
		return nil, fmt.Errorf("cannot access web root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("web root is not a directory: %s", webRoot)
	}

	if cfg.Manifest == "" {
		return nil, errors.New("no manifest: use --manifest or set manifest in the config file")
	}

	role, err := cfg.ParsedRole()
	if err != nil {
		return nil, err
	}
	target, err := cfg.ParsedTarget()
	if err != nil {
		return nil, err
	}

	descs := cfg.Descriptions()
	for _, c := range descs.Conflicts() {
		printWarn("%s", c)
	}

	m, err := manifest.Load(cfg.Manifest, descs)
	if err != nil {
		return nil, err
	}
	printVerbose("Manifest %s: %d entries, %d unresolved rows", m.Path, len(m.Entries), len(m.Errors))

	return &plan{cfg: cfg, webRoot: webRoot, role: role, target: target, manifest: m}, nil
}

// run reconciles entries in mode against the OS filesystem.
func (p *plan) run(ctx context.Context, mode types.Mode, entries []manifest.Entry, rowErrors []*manifest.RowError) (*engine.Report, error) {
	eng, err := engine.New(afero.NewOsFs(), engine.Options{
		WebRoot: p.webRoot,
		Policy:  p.cfg.Policy(),
		Target:  p.target,
		Role:    p.role,
		Mode:    mode,
		OnRecord: func(rec trace.Record) {
			printVerbose("%s %s", rec.Status, rec.ManifestDescription)
		},
	})
	if err != nil {
		return nil, err
	}

	report := eng.Run(ctx, entries, rowErrors)
	report.Manifest = p.manifest.Path
	return report, nil
}

// all runs every manifest entry, including unresolved rows.
func (p *plan) all(ctx context.Context, mode types.Mode) (*engine.Report, error) {
	return p.run(ctx, mode, p.manifest.Entries, p.manifest.Errors)
}

// runReconcile is the reconcile command handler.
func runReconcile(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *engine.Report
	switch {
	case viper.GetBool("interactive"):
		report, err = reconcileInteractive(ctx, p)
	case viper.GetBool("apply") && viper.GetBool("confirm"):
		report, err = reconcileConfirmed(ctx, p)
	case viper.GetBool("apply"):
		report, err = p.all(ctx, types.ModeApply)
	default:
		report, err = p.all(ctx, types.ModeVerify)
	}
	if err != nil {
		return err
	}

	recordRun(cfg, report)

	if err := printReport(formatter, report); err != nil {
		return err
	}
	return report.Summary.Err(viper.GetBool("strict"))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// reconcileConfirmed previews the run and asks before applying it.
func reconcileConfirmed(ctx context.Context, p *plan) (*engine.Report, error) {
	preview, err := p.all(ctx, types.ModeVerify)
	if err != nil {
		return nil, err
	}
	pending := preview.Summary.ActionRequired
	if pending == 0 {
		printInfo("Nothing to change.")
		return preview, nil
	}

	for _, rec := range preview.Filter(trace.StatusActionRequired) {
		printInfo("  %s", output.FilePath(rec))
	}

	ok, err := confirm(fmt.Sprintf("Rename %d %s under %s?", pending, plural(pending, "file", "files"), p.webRoot))
	if err != nil {
		return nil, err
	}
	if !ok {
		printInfo("Cancelled. No files were renamed.")
		return preview, nil
	}
	return p.all(ctx, types.ModeApply)
}

// confirm asks a yes/no question on the terminal.
func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Apply").
			Negative("Cancel").
			Value(&ok),
	)).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}

// reconcileInteractive runs a verify pass, lets the user pick pending
// entries in the browser, and applies only those.
func reconcileInteractive(ctx context.Context, p *plan) (*engine.Report, error) {
	preview, err := p.all(ctx, types.ModeVerify)
	if err != nil {
		return nil, err
	}

	// Console logging would draw over the alternate screen.
	if err := logging.Init(loggingConfig(p.cfg, false, true)); err != nil {
		return nil, fmt.Errorf("failed to initialize TUI logging: %w", err)
	}

	result, err := tui.Run(tui.Options{Report: preview, AllowApply: true})
	if err != nil {
		return nil, err
	}
	if !result.Apply || len(result.Selected) == 0 {
		return preview, nil
	}

	entries := selectEntries(p.manifest.Entries, result.Selected)
	applied, err := p.run(ctx, types.ModeApply, entries, nil)
	if err != nil {
		return nil, err
	}
	return mergeReports(preview, applied), nil
}

// selectEntries returns the entries whose manifest row matches one of the
// selected records, in manifest order.
func selectEntries(entries []manifest.Entry, selected []trace.Record) []manifest.Entry {
	want := make(map[int]bool, len(selected))
	for _, rec := range selected {
		want[rec.ManifestRow] = true
	}

	var out []manifest.Entry
	for _, e := range entries {
		if want[e.Row] {
			out = append(out, e)
		}
	}
	return out
}

// mergeReports replaces the preview records of applied entries with their
// apply records. The result is an apply-mode report over the whole manifest.
func mergeReports(preview, applied *engine.Report) *engine.Report {
	byRow := make(map[int]trace.Record, len(applied.Records))
	for _, rec := range applied.Records {
		byRow[rec.ManifestRow] = rec
	}

	records := make([]trace.Record, len(preview.Records))
	for i, rec := range preview.Records {
		if a, ok := byRow[rec.ManifestRow]; ok {
			records[i] = a
		} else {
			records[i] = rec
		}
	}

	merged := *preview
	merged.Mode = types.ModeApply
	merged.Records = records
	merged.Summary = engine.Summarize(records)
	merged.Duration = preview.Duration + applied.Duration
	return &merged
}

// recordRun saves the run to history and writes the metrics textfile.
// Failures are reported as warnings; they never change the exit status.
func recordRun(cfg *config.Config, report *engine.Report) {
	if cfg.History.Enabled && !viper.GetBool("no_history") {
		if id, err := saveHistory(cfg, report); err != nil {
			printWarn("could not save run history: %v", err)
		} else {
			printVerbose("Saved run %s", id)
		}
	}

	if cfg.Metrics.File != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.File, report); err != nil {
			printWarn("could not write metrics: %v", err)
		} else {
			printVerbose("Wrote metrics to %s", cfg.Metrics.File)
		}
	}
}

func saveHistory(cfg *config.Config, report *engine.Report) (string, error) {
	store, err := openHistory(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	run := history.NewRun(report)
	if err := store.Save(run); err != nil {
		return "", err
	}
	return run.ShortID(), nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
	return history.Open(cfg.HistoryPath(), history.Options{Retention: retention})
}

// selectFormatter returns the formatter chosen by -o and --template.
func selectFormatter() (output.Formatter, error) {
	name := viper.GetString("output")
	tmpl := viper.GetString("template")

	if name == "template" || (tmpl != "" && (name == "" || name == "pretty")) {
		if tmpl == "" {
			return nil, errors.New("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(tmpl), nil
	}
	if name == "" {
		name = "pretty"
	}
	return output.Get(name)
}

func printReport(f output.Formatter, report *engine.Report) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
