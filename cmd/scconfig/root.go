package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "scconfig",
		Short: "Enable or disable web-app config files by role and search provider",
		Long: `scconfig reconciles the config include files of a web application with a
manifest that says, per server role and search provider, which files must be
live. Files are switched by renaming them between an enabled extension
(.config) and a disabled one (.disabled, .example, ...).

Without a subcommand scconfig runs 'reconcile' in verify mode.

Examples:
  scconfig --webroot /srv/www/site --manifest roles.csv --role CD --target SOLR
  scconfig --apply                       # perform the renames
  scconfig --strict -o json              # exit 2 if anything needs a change
  scconfig scan --unmanaged              # config files no manifest row covers
  scconfig history                       # previous runs`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: initializeLogging,
		RunE:              runReconcile,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/scconfig/config.yaml)")
	pf.BoolP("verbose", "v", false, "debug output on stderr")
	pf.BoolP("quiet", "q", false, "minimal output")
	pf.StringP("webroot", "w", "", "web application root directory")
	pf.StringP("manifest", "m", "", "manifest file (csv, json, yaml or toml)")
	pf.StringP("role", "r", "", "server role: CD, CM, PRC, CM+PRC, REP")
	pf.StringP("target", "t", "", "search provider: SOLR, Lucene, Any")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = viper.BindPFlag("webroot", pf.Lookup("webroot"))
	_ = viper.BindPFlag("manifest", pf.Lookup("manifest"))
	_ = viper.BindPFlag("role", pf.Lookup("role"))
	_ = viper.BindPFlag("target", pf.Lookup("target"))

	addReconcileFlags(rootCmd)
}

// initConfig points viper at an explicit config file when one was given.
// Search paths, defaults and env binding are set by config.LoadWith.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig loads the configuration merged with bound flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWith(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

func getVerbose() bool {
	return viper.GetBool("verbose")
}

func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message to stderr unless quiet mode is enabled.
// Stdout is reserved for formatted output.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printWarn prints a warning to stderr unless quiet mode is enabled.
func printWarn(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
