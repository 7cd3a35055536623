package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/scconfig/pkg/scconfig/manifest"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte("<configuration/>"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root,
		"Web.config",
		"App_Config/Include/Solr.config.disabled",
		"App_Config/Include/Lucene.config",
		"App_Config/Include/readme.txt",
		"bin/Plugin.dll.config",
		"App_Data/logs/trace.log",
	)

	items, err := Scan(context.Background(), root, types.DefaultExtensionPolicy(), Options{Exclude: []string{"BIN"}})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{
		"App_Config/Include/Lucene.config",
		"App_Config/Include/Solr.config.disabled",
		"Web.config",
	}
	if len(items) != len(want) {
		t.Fatalf("Scan() returned %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, rel := range want {
		if items[i].RelPath != rel {
			t.Errorf("items[%d].RelPath = %q, want %q", i, items[i].RelPath, rel)
		}
	}

	solr := items[1]
	if solr.Enabled || solr.BaseName != "Solr" || solr.Dir != "App_Config/Include" || solr.Ext != ".disabled" {
		t.Errorf("solr item = %+v", solr)
	}
	if items[2].Dir != "" || !items[2].Enabled {
		t.Errorf("root item = %+v", items[2])
	}

	enabled, disabled := Counts(items)
	if enabled != 2 || disabled != 1 {
		t.Errorf("Counts() = %d, %d; want 2, 1", enabled, disabled)
	}
}

func TestScan_InvalidRoot(t *testing.T) {
	t.Parallel()

	if _, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), types.DefaultExtensionPolicy(), Options{}); err == nil {
		t.Error("Scan() error = nil, want error for missing root")
	}
}

func TestScan_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFiles(t, root, "a/A.config", "b/B.config")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, root, types.DefaultExtensionPolicy(), Options{}); err == nil {
		t.Error("Scan() error = nil, want context error")
	}
}

func TestUnmanaged(t *testing.T) {
	t.Parallel()

	items := []Item{
		{RelPath: "App_Config/Include/Solr.config.disabled", Dir: "App_Config/Include", BaseName: "Solr"},
		{RelPath: "App_Config/Include/Custom.config", Dir: "App_Config/Include", BaseName: "Custom"},
		{RelPath: "Web.config", Dir: "", BaseName: "Web"},
	}
	entries := []manifest.Entry{
		{FilePath: `website\app_config\include`, ConfigFileName: "SOLR.config"},
		{FilePath: "website", ConfigFileName: "Web.config.example"},
	}

	got := Unmanaged(items, entries, types.DefaultExtensionPolicy())
	if len(got) != 1 || got[0].BaseName != "Custom" {
		t.Errorf("Unmanaged() = %+v, want only Custom", got)
	}
}
