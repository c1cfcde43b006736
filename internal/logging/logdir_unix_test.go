//go:build !windows

package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareLogDirTightensPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	warning, err := prepareLogDir(dir, false)
	if err != nil || warning != "" {
		t.Fatalf("prepareLogDir: warning=%q err=%v", warning, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected 0700 permissions, got %v", info.Mode().Perm())
	}
}

func TestPrepareLogDirExplicitWarnsOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "explicit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	warning, err := prepareLogDir(dir, true)
	if err != nil || warning == "" {
		t.Fatalf("expected warning, got warning=%q err=%v", warning, err)
	}
	info, _ := os.Stat(dir)
	if info.Mode().Perm()&0o077 == 0 {
		t.Fatalf("expected permissions unchanged, got %v", info.Mode().Perm())
	}
}

func TestPrepareLogDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := prepareLogDir(dir, true); err != nil {
		t.Fatalf("prepareLogDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}
