package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/jamesainslie/scconfig/pkg/scconfig/lookup"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Role != DefaultRole {
		t.Errorf("Role = %q, want %q", cfg.Role, DefaultRole)
	}
	if cfg.Target != DefaultTarget {
		t.Errorf("Target = %q, want %q", cfg.Target, DefaultTarget)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("History.RetentionDays = %d, want %d", cfg.History.RetentionDays, DefaultRetentionDays)
	}
	if cfg.HistoryPath() != DefaultHistoryPath() {
		t.Errorf("HistoryPath() = %q, want %q", cfg.HistoryPath(), DefaultHistoryPath())
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Logging.Rotation.MaxSize != "10MB" {
		t.Errorf("Logging.Rotation.MaxSize = %q, want 10MB", cfg.Logging.Rotation.MaxSize)
	}
	if len(cfg.Scan.Exclude) != len(DefaultScanExclusions) {
		t.Errorf("Scan.Exclude = %v, want %v", cfg.Scan.Exclude, DefaultScanExclusions)
	}

	if got, want := cfg.Policy(), types.DefaultExtensionPolicy(); !reflect.DeepEqual(got, want) {
		t.Errorf("Policy() = %+v, want %+v", got, want)
	}
	if got, want := cfg.Descriptions(), lookup.DefaultDescriptions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Descriptions() = %+v, want %+v", got, want)
	}

	role, err := cfg.ParsedRole()
	if err != nil || role != types.RoleContentDelivery {
		t.Errorf("ParsedRole() = %v, %v; want CD", role, err)
	}
	target, err := cfg.ParsedTarget()
	if err != nil || target != types.ProviderSolr {
		t.Errorf("ParsedTarget() = %v, %v; want SOLR", target, err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".config", "scconfig")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	content := `
webroot: ~/wwwroot
manifest: /etc/scconfig/manifest.csv
role: CM
target: Lucene
extensions:
  enabled: [".config"]
  disabled: [".off"]
descriptions:
  providers:
    solr: ["Solr only"]
history:
  enabled: false
  path: /var/lib/scconfig
  retention_days: 7
metrics:
  file: /var/lib/node_exporter/scconfig.prom
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(home, "wwwroot"); cfg.WebRoot != want {
		t.Errorf("WebRoot = %q, want %q", cfg.WebRoot, want)
	}
	if cfg.Manifest != "/etc/scconfig/manifest.csv" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}
	if cfg.Role != "CM" || cfg.Target != "Lucene" {
		t.Errorf("Role, Target = %q, %q", cfg.Role, cfg.Target)
	}
	if got := cfg.Policy().Disabled; !reflect.DeepEqual(got, []string{".off"}) {
		t.Errorf("Policy().Disabled = %v, want [.off]", got)
	}
	if got := cfg.Descriptions().Providers.Solr; !reflect.DeepEqual(got, []string{"Solr only"}) {
		t.Errorf("Providers.Solr = %v", got)
	}
	if got := cfg.Descriptions().Providers.Lucene; !reflect.DeepEqual(got, lookup.DefaultProviderDescriptions().Lucene) {
		t.Errorf("Providers.Lucene = %v, want default", got)
	}
	if cfg.History.Enabled || cfg.HistoryPath() != "/var/lib/scconfig" || cfg.History.RetentionDays != 7 {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.Metrics.File != "/var/lib/node_exporter/scconfig.prom" {
		t.Errorf("Metrics.File = %q", cfg.Metrics.File)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".config", "scconfig")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("role: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SCCONFIG_ROLE", "REP")
	t.Setenv("SCCONFIG_TARGET", "any")
	t.Setenv("SCCONFIG_HISTORY_RETENTION_DAYS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Role != "REP" {
		t.Errorf("Role = %q, want REP", cfg.Role)
	}
	if cfg.Target != "any" {
		t.Errorf("Target = %q, want any", cfg.Target)
	}
	if cfg.History.RetentionDays != 3 {
		t.Errorf("History.RetentionDays = %d, want 3", cfg.History.RetentionDays)
	}
}

func TestLoadWith_ExplicitValues(t *testing.T) {
	isolate(t)

	v := viper.New()
	v.Set("webroot", "/srv/www/site")
	v.Set("role", "PRC")

	cfg, err := LoadWith(v)
	if err != nil {
		t.Fatalf("LoadWith() error = %v", err)
	}
	if cfg.WebRoot != "/srv/www/site" || cfg.Role != "PRC" {
		t.Errorf("WebRoot, Role = %q, %q", cfg.WebRoot, cfg.Role)
	}
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	xdgConfig := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgConfig)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if want := filepath.Join(xdgConfig, "scconfig", "config.yaml"); path != want {
		t.Errorf("WriteDefault() path = %q, want %q", path, want)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() after WriteDefault error = %v", err)
	}
	if got, want := cfg.Descriptions(), lookup.DefaultDescriptions(); !reflect.DeepEqual(got, want) {
		t.Errorf("written Descriptions = %+v, want %+v", got, want)
	}
	if got, want := cfg.Policy(), types.DefaultExtensionPolicy(); !reflect.DeepEqual(got, want) {
		t.Errorf("written Policy = %+v, want %+v", got, want)
	}

	// A second call leaves the edited file alone.
	if err := os.WriteFile(path, []byte("role: CM\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "role: CM\n" {
		t.Errorf("config overwritten: %q", data)
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~", home},
		{"~/logs/x.log", filepath.Join(home, "logs", "x.log")},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirs(t *testing.T) {
	if !strings.HasSuffix(DataDir(), "scconfig") {
		t.Errorf("DataDir() = %q", DataDir())
	}
	if !strings.HasSuffix(StateDir(), "scconfig") {
		t.Errorf("StateDir() = %q", StateDir())
	}
	if filepath.Base(DefaultLogPath()) != "scconfig.log" {
		t.Errorf("DefaultLogPath() = %q", DefaultLogPath())
	}
	if filepath.Dir(DefaultHistoryPath()) != DataDir() {
		t.Errorf("DefaultHistoryPath() = %q", DefaultHistoryPath())
	}
}
