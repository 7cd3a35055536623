package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage scconfig configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/scconfig/config.yaml (if set)
  2. ~/.config/scconfig/config.yaml

Environment variables override the file using the SCCONFIG_ prefix:
  SCCONFIG_WEBROOT=/srv/www/site
  SCCONFIG_ROLE=CM
  SCCONFIG_HISTORY_RETENTION_DAYS=7`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow prints the merged configuration as YAML.
func runConfigShow(_ *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		printInfo("Config file: %s\n", configFile)
	} else {
		printInfo("Config file: (using defaults, no file found)\n")
	}

	settings := viper.AllSettings()
	for _, key := range []string{"verbose", "quiet", "apply", "strict", "output", "template", "confirm", "interactive", "no_history"} {
		delete(settings, key)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}

	overrides := envOverrides(os.Environ())
	if len(overrides) > 0 {
		printInfo("\nEnvironment overrides:")
		for _, kv := range overrides {
			printInfo("  %s", kv)
		}
	}
	return nil
}

// envOverrides returns the SCCONFIG_ variables in env, sorted.
func envOverrides(env []string) []string {
	var out []string
	for _, kv := range env {
		if strings.HasPrefix(kv, "SCCONFIG_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if cfgFile != "" {
		configPath = cfgFile
	}

	fmt.Println(configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (using defaults)")
	}
	return nil
}
