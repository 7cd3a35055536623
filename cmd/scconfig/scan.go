package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
	"github.com/jamesainslie/scconfig/pkg/scconfig/inventory"
	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the toggleable config files under the web root",
	Long: `Walk the web root and list every file whose extension is an enabled or
disabled state marker.

With --unmanaged only files that no manifest entry covers are listed, which
helps keep the manifest complete. Use -o json, yaml or paths for machine
readable output.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var scanUnmanaged bool

func init() {
	scanCmd.Flags().BoolVar(&scanUnmanaged, "unmanaged", false, "only files no manifest entry covers")
	rootCmd.AddCommand(scanCmd)
}

var (
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.WebRoot == "" {
		return errors.New("no web root: use --webroot or set webroot in the config file")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, err := scanItems(ctx, cfg, scanUnmanaged)
	if err != nil {
		return err
	}
	return printItems(items, viper.GetString("output"))
}

// scanItems walks the web root and, with unmanaged, drops every item a
// manifest entry covers.
func scanItems(ctx context.Context, cfg *config.Config, unmanaged bool) ([]inventory.Item, error) {
	policy := cfg.Policy()
	exclude := cfg.Scan.Exclude
	if len(exclude) == 0 {
		exclude = config.DefaultScanExclusions
	}

	items, err := inventory.Scan(ctx, cfg.WebRoot, policy, inventory.Options{Exclude: exclude})
	if err != nil {
		return nil, err
	}
	printVerbose("Found %d config files under %s", len(items), cfg.WebRoot)

	if !unmanaged {
		return items, nil
	}
	if cfg.Manifest == "" {
		return nil, errors.New("--unmanaged needs a manifest: use --manifest or set manifest in the config file")
	}
	m, err := manifest.Load(cfg.Manifest, cfg.Descriptions())
	if err != nil {
		return nil, err
	}
	return inventory.Unmanaged(items, m.Entries, policy), nil
}

func printItems(items []inventory.Item, format string) error {
	if items == nil {
		items = []inventory.Item{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case "paths":
		for _, it := range items {
			fmt.Println(it.Path)
		}
		return nil
	}

	if len(items) == 0 {
		printInfo("No config files found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tSIZE\tPATH")
	for _, it := range items {
		state := disabledStyle.Render("disabled")
		if it.Enabled {
			state = enabledStyle.Render("enabled")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", state, humanize.Bytes(uint64(it.Size)), it.RelPath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	enabled, disabled := inventory.Counts(items)
	printInfo("\n%s files: %s enabled, %s disabled",
		humanize.Comma(int64(len(items))),
		enabledStyle.Render(humanize.Comma(int64(enabled))),
		disabledStyle.Render(humanize.Comma(int64(disabled))))
	return nil
}
