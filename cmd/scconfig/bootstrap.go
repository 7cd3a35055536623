package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/scconfig/pkg/scconfig/config"
	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
)

const defaultMaxLogSize = 10 * 1024 * 1024

// initializeLogging is the root PersistentPreRunE hook. It creates the XDG
// directories and starts file logging; console logging follows -v and -q.
func initializeLogging(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return logging.Init(loggingConfig(cfg, getVerbose(), getQuiet()))
}

// loggingConfig converts the file configuration into logging.Config.
func loggingConfig(cfg *config.Config, verbose, quiet bool) logging.Config {
	lc := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if lc.Path == "" {
		lc.Path = config.DefaultLogPath()
	}

	switch {
	case quiet:
	case verbose:
		lc.ConsoleLevel = "debug"
	default:
		lc.ConsoleLevel = "warn"
	}
	return lc
}

// parseRotationConfig converts size strings such as "10MB" to bytes.
// Empty or invalid sizes fall back to 10MB.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := int64(defaultMaxLogSize)
	if rc.MaxSize != "" {
		if n, err := humanize.ParseBytes(rc.MaxSize); err == nil && n > 0 {
			maxSize = int64(n)
		}
	}
	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
