// Package inventory lists the toggleable config files under a web root:
// every regular file whose last extension is an enabled or disabled marker.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
	"github.com/jamesainslie/scconfig/pkg/scconfig/resolver"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// Item is a config file found in the web root.
type Item struct {
	Path     string `json:"path" yaml:"path"`
	RelPath  string `json:"rel_path" yaml:"rel_path"` // slash-separated, relative to the web root
	Dir      string `json:"dir" yaml:"dir"`           // slash-separated, "" for the root
	BaseName string `json:"base_name" yaml:"base_name"`
	Ext      string `json:"ext" yaml:"ext"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Size     int64  `json:"size" yaml:"size"`
}

// Options configures Scan.
type Options struct {
	// Exclude lists directory names skipped during the walk (case-insensitive).
	Exclude []string
}

// Scan walks root and returns every file whose last extension is a state
// marker under policy, sorted by path. Unreadable entries are skipped.
func Scan(ctx context.Context, root string, policy types.ExtensionPolicy, opts Options) ([]Item, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving web root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("web root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("web root %s: %w", absRoot, os.ErrInvalid)
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		exclude[strings.ToLower(name)] = true
	}

	logger := logging.Get("inventory")

	var (
		mu      sync.Mutex
		items   []Item
		skipped int
	)

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, absRoot, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			mu.Lock()
			skipped++
			mu.Unlock()
			return nil //nolint:nilerr // unreadable entries are skipped
		}

		if d.IsDir() {
			if p != absRoot && exclude[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(d.Name())
		if !policy.IsMarker(ext) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil //nolint:nilerr // outside root cannot happen for walked paths
		}
		rel = filepath.ToSlash(rel)

		item := Item{
			Path:     p,
			RelPath:  rel,
			Dir:      dirOf(rel),
			BaseName: resolver.ExtensionlessBaseName(d.Name(), policy),
			Ext:      ext,
			Enabled:  policy.IsEnabled(ext),
		}
		if fi, err := d.Info(); err == nil {
			item.Size = fi.Size()
		}

		mu.Lock()
		items = append(items, item)
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("walking web root: %w", walkErr)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })

	logger.Debug("inventory complete", "root", absRoot, "items", len(items), "skipped", skipped)
	return items, nil
}

func dirOf(rel string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return ""
	}
	return dir
}

// key identifies a config file independent of its current state.
func key(dir, baseName string) string {
	return strings.ToLower(dir) + "/" + strings.ToLower(baseName)
}

// Unmanaged returns the items no manifest entry covers. Coverage compares
// directory and extensionless base name, ignoring case.
func Unmanaged(items []Item, entries []manifest.Entry, policy types.ExtensionPolicy) []Item {
	covered := make(map[string]bool, len(entries))
	for _, e := range entries {
		covered[key(resolver.RelativeDir(e.FilePath), resolver.ExtensionlessBaseName(e.ConfigFileName, policy))] = true
	}

	var out []Item
	for _, it := range items {
		if !covered[key(it.Dir, it.BaseName)] {
			out = append(out, it)
		}
	}
	return out
}

// Counts returns the number of enabled and disabled items.
func Counts(items []Item) (enabled, disabled int) {
	for _, it := range items {
		if it.Enabled {
			enabled++
		} else {
			disabled++
		}
	}
	return enabled, disabled
}
