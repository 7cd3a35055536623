// Package engine reconciles manifest entries against a web root.
//
// For each entry the engine resolves the real file, decides whether it has
// to be enabled or disabled for the run's role and search-provider target,
// and in apply mode performs the rename. Every entry produces exactly one
// trace.Record; a failing entry never stops the run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
	"github.com/jamesainslie/scconfig/pkg/scconfig/resolver"
	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
	"github.com/spf13/afero"
)

// ErrNoWebRoot is returned by New when Options.WebRoot is empty.
var ErrNoWebRoot = errors.New("web root is required")

// Options configures a reconciliation run.
type Options struct {
	WebRoot string
	Policy  types.ExtensionPolicy
	Target  types.SearchProvider
	Role    types.Role
	Mode    types.Mode

	// OnRecord, if set, is called after each entry is reconciled.
	OnRecord func(trace.Record)
}

// Engine reconciles manifest entries. It is not safe for concurrent use.
type Engine struct {
	opts     Options
	resolver *resolver.Resolver
	toggler  *Toggler
	logger   *logging.Logger
	now      func() time.Time
}

// New creates an Engine operating on fs.
func New(fs afero.Fs, opts Options) (*Engine, error) {
	if opts.WebRoot == "" {
		return nil, ErrNoWebRoot
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extension policy: %w", err)
	}

	return &Engine{
		opts:     opts,
		resolver: resolver.New(fs, opts.Policy),
		toggler:  NewToggler(fs, opts.Policy),
		logger: logging.Get("engine").With(
			"role", opts.Role.String(), "target", opts.Target.String(), "mode", opts.Mode.String()),
		now: time.Now,
	}, nil
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Reconcile processes a single entry. Errors and panics are converted into
// a failed record.
func (e *Engine) Reconcile(entry manifest.Entry) (rec trace.Record) {
	b := trace.NewBuilder(entry.String(), entry.RelativeFilePath(), entry.SearchProvider.String()).Row(entry.Row)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrPanic, r)
			e.logger.Error("panic while reconciling entry", "entry", entry.String(), "panic", r)
			rec = b.Fail(KindInternal, err).Build()
		}
	}()

	if err := e.reconcile(entry, b); err != nil {
		e.logger.Warn("entry failed", "entry", entry.RelativeFilePath(), "error", err)
		b.Fail(ErrorKind(err), err)
	}

	return b.Build()
}

func (e *Engine) reconcile(entry manifest.Entry, b *trace.Builder) error {
	action := entry.ActionFor(e.opts.Role)
	b.Note("processing %s: action for %s is %s, target provider %s, %s mode",
		entry.RelativeFilePath(), e.opts.Role, action, e.opts.Target, e.opts.Mode)

	realPath, err := e.resolver.Resolve(e.opts.WebRoot, entry.FilePath, entry.ConfigFileName)
	if err != nil {
		return err
	}
	b.RealFile(realPath)

	enabled := e.opts.Policy.IsFileEnabled(realPath)
	b.Note("resolved to %s (%s)", realPath, stateName(enabled))

	d := Decide(enabled, entry.SearchProvider, action, e.opts.Target, e.opts.Mode)
	b.Note("%s", d.Note)

	var newPath string
	switch d.Transition {
	case TransitionEnable:
		newPath, err = e.toggler.Enable(realPath)
	case TransitionDisable:
		newPath, err = e.toggler.Disable(realPath)
	}
	if err != nil {
		return err
	}

	if d.Transition != TransitionNone {
		b.NewFile(newPath)
		b.Note("renamed %s to %s", filepath.Base(realPath), filepath.Base(newPath))
		e.logger.Info("file toggled", "from", realPath, "to", newPath, "transition", d.Transition.String())
	}

	b.Finish(d.Status, d.Detail)
	return nil
}

func stateName(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// Run reconciles entries in row order and merges rowErrors into the report
// as failed records. When ctx is cancelled the remaining entries are
// recorded as failed without touching the disk.
func (e *Engine) Run(ctx context.Context, entries []manifest.Entry, rowErrors []*manifest.RowError) *Report {
	started := e.now()

	type item struct {
		row   int
		entry *manifest.Entry
		err   *manifest.RowError
	}

	items := make([]item, 0, len(entries)+len(rowErrors))
	for i := range entries {
		items = append(items, item{row: entries[i].Row, entry: &entries[i]})
	}
	for _, re := range rowErrors {
		items = append(items, item{row: re.Row, err: re})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].row < items[j].row })

	e.logger.Info("reconciliation started", "entries", len(entries), "row_errors", len(rowErrors))

	report := &Report{
		Mode:      e.opts.Mode,
		Target:    e.opts.Target,
		Role:      e.opts.Role,
		WebRoot:   e.opts.WebRoot,
		StartedAt: started,
		Records:   make([]trace.Record, 0, len(items)),
	}

	for _, it := range items {
		var rec trace.Record
		switch {
		case it.err != nil:
			rec = rowErrorRecord(it.err)
		case ctx.Err() != nil:
			rec = trace.NewBuilder(it.entry.String(), it.entry.RelativeFilePath(), it.entry.SearchProvider.String()).
				Row(it.entry.Row).
				Fail(KindCancelled, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())).
				Build()
		default:
			rec = e.Reconcile(*it.entry)
		}

		report.Records = append(report.Records, rec)
		if e.opts.OnRecord != nil {
			e.opts.OnRecord(rec)
		}
	}

	report.Duration = e.now().Sub(started)
	report.Summary = Summarize(report.Records)

	e.logger.Info("reconciliation finished",
		"ok", report.Summary.OK,
		"action", report.Summary.ActionRequired,
		"failed", report.Summary.Failed,
		"changed", report.Summary.Changed,
		"duration", report.Duration)

	return report
}

func rowErrorRecord(re *manifest.RowError) trace.Record {
	return trace.NewBuilder(re.Description, "", "").
		Row(re.Row).
		Note("manifest row %d could not be resolved", re.Row).
		Fail(KindDescription, re).
		Build()
}
