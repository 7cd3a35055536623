package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/scconfig/pkg/scconfig/lookup"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ExtensionsConfig lists the state-marker extensions.
type ExtensionsConfig struct {
	Enabled  []string `mapstructure:"enabled"`
	Disabled []string `mapstructure:"disabled"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"` // empty means DefaultHistoryPath
	RetentionDays int    `mapstructure:"retention_days"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `mapstructure:"file"` // empty disables the export
}

// ScanConfig configures the web-root inventory.
type ScanConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// Config represents the application configuration.
type Config struct {
	WebRoot    string              `mapstructure:"webroot"`
	Manifest   string              `mapstructure:"manifest"`
	Role       string              `mapstructure:"role"`
	Target     string              `mapstructure:"target"`
	Extensions ExtensionsConfig    `mapstructure:"extensions"`
	Lookup     lookup.Descriptions `mapstructure:"descriptions"`
	History    HistoryConfig       `mapstructure:"history"`
	Metrics    MetricsConfig       `mapstructure:"metrics"`
	Scan       ScanConfig          `mapstructure:"scan"`
	Logging    LoggingConfig       `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/scconfig/config.yaml
//   - $HOME/.config/scconfig/config.yaml
//
// Environment variables are prefixed with SCCONFIG_ (e.g. SCCONFIG_WEBROOT).
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into v, which may already carry flag
// bindings or an explicit config file.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", appName))

	v.SetEnvPrefix("SCCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.WebRoot, &cfg.Manifest, &cfg.History.Path, &cfg.Metrics.File, &cfg.Logging.Path} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("webroot", "")
	v.SetDefault("manifest", "")
	v.SetDefault("role", DefaultRole)
	v.SetDefault("target", DefaultTarget)

	v.SetDefault("extensions.enabled", types.DefaultEnabledExtensions)
	v.SetDefault("extensions.disabled", types.DefaultDisabledExtensions)

	d := lookup.DefaultDescriptions()
	v.SetDefault("descriptions.providers.lucene", d.Providers.Lucene)
	v.SetDefault("descriptions.providers.solr", d.Providers.Solr)
	v.SetDefault("descriptions.providers.any", d.Providers.Any)
	v.SetDefault("descriptions.actions.enable", d.Actions.Enable)
	v.SetDefault("descriptions.actions.disable", d.Actions.Disable)
	v.SetDefault("descriptions.actions.not_applicable", d.Actions.NotApplicable)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("metrics.file", "")
	v.SetDefault("scan.exclude", DefaultScanExclusions)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"engine":   "info",
		"manifest": "info",
		"watch":    "info",
		"history":  "warn",
	})
}

// Policy returns the normalized extension policy.
func (c *Config) Policy() types.ExtensionPolicy {
	return types.NewExtensionPolicy(c.Extensions.Enabled, c.Extensions.Disabled)
}

// Descriptions returns the configured description sets.
func (c *Config) Descriptions() lookup.Descriptions {
	return c.Lookup
}

// ParsedRole parses the configured role.
func (c *Config) ParsedRole() (types.Role, error) {
	return types.ParseRole(c.Role)
}

// ParsedTarget parses the configured search provider target.
func (c *Config) ParsedTarget() (types.SearchProvider, error) {
	return types.ParseSearchProvider(c.Target)
}

// HistoryPath returns the configured history path or the default.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryPath()
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# scconfig configuration

# Web application root and manifest (may also be given as flags)
webroot: ""
manifest: ""

# Server role: CD, CM, PRC, CM+PRC, REP
role: %s

# Search provider target: SOLR, Lucene, Any
target: %s

# State-marker extensions; the first of each list is written on rename
extensions:
  enabled: [".config"]
  disabled: [".disabled", ".disable", ".example", ".exclude"]

# Manifest cell descriptions (matched trimmed and case-insensitively)
descriptions:
  providers:
    lucene: ["Lucene", "Lucene is used"]
    solr: ["Solr", "Solr is used"]
    any: ["", "Base", "Any", "n/a"]
  actions:
    enable: ["Enable", "Enabled"]
    disable: ["Disable", "Disabled"]
    not_applicable: ["", "n/a", "NA"]

# Run history (empty path means $XDG_DATA_HOME/scconfig/history)
history:
  enabled: true
  path: ""
  retention_days: %d

# Prometheus textfile export (empty disables)
metrics:
  file: ""

# Directories skipped by 'scconfig scan'
scan:
  exclude: [bin, obj, node_modules, App_Data]

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means $XDG_STATE_HOME/scconfig/scconfig.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    engine: info
    manifest: info
    watch: info
    history: warn
`, DefaultRole, DefaultTarget, DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return configPath, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/scconfig/ for the history database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/scconfig/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultHistoryPath returns the default history database directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}
