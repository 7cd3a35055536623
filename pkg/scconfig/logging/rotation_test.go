package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
)

func countLogFiles(t *testing.T, dir, prefix string) int {
	t.Helper()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	n := 0
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix) && strings.HasSuffix(f.Name(), ".log") {
			n++
		}
	}
	return n
}

func TestRotationBySize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "size.log")

	writer, err := logging.NewRotatingWriter(logPath, logging.RotationConfig{MaxSize: 256})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	msg := strings.Repeat("x", 100) + "\n"
	for i := 0; i < 4; i++ {
		if _, err := writer.Write([]byte(msg)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		// Keep rotated names distinct.
		time.Sleep(2 * time.Millisecond)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if n := countLogFiles(t, dir, "size"); n < 2 {
		t.Errorf("expected at least 2 log files after rotation, got %d", n)
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("stat current log: %v", err)
	}
	if info.Size() > 256 {
		t.Errorf("current log size = %d, want <= 256", info.Size())
	}
}

func TestRotationMaxBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "backups.log")

	writer, err := logging.NewRotatingWriter(logPath, logging.RotationConfig{
		MaxSize:    64,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}

	msg := strings.Repeat("y", 60) + "\n"
	for i := 0; i < 8; i++ {
		if _, err := writer.Write([]byte(msg)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// current file plus at most two backups
	if n := countLogFiles(t, dir, "backups"); n > 3 {
		t.Errorf("log files = %d, want <= 3", n)
	}
}

func TestWriteAfterClose(t *testing.T) {
	t.Parallel()

	writer, err := logging.NewRotatingWriter(filepath.Join(t.TempDir(), "closed.log"), logging.DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := writer.Write([]byte("late\n")); err == nil {
		t.Error("Write() after Close error = nil, want error")
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}
