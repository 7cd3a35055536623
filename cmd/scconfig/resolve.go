package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/scconfig/pkg/scconfig/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <dir> <file>",
	Short: "Find the real file for a manifest directory and file name",
	Long: `Resolve a manifest directory and config file name to the file that
exists under the web root, whatever state-marker extension it carries.

Examples:
  scconfig resolve 'website\App_Config\Include' Sitecore.ContentSearch.Solr.config
  scconfig resolve App_Config/Include/Examples Foo.config.example`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.WebRoot == "" {
		return fmt.Errorf("no web root: use --webroot or set webroot in the config file")
	}

	policy := cfg.Policy()
	path, err := resolver.New(afero.NewOsFs(), policy).Resolve(cfg.WebRoot, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Println(path)
	if policy.IsFileEnabled(path) {
		printVerbose("State: enabled")
	} else {
		printVerbose("State: disabled")
	}
	return nil
}
