package cli

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvLoader_LoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(path, []byte("PDFDESK_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PDFDESK_ENV_FILE", "")
	t.Setenv("HORSE_ENV_FILE", "")
	t.Setenv("PDFDESK_TEST_VALUE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	loader := AddEnvFlag(fs, filepath.Join(dir, "missing.env"), "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("PDFDESK_TEST_VALUE"); got != "from-file" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestEnvLoader_MissingDefaultIsSentinel(t *testing.T) {
	t.Setenv("PDFDESK_ENV_FILE", "")
	t.Setenv("HORSE_ENV_FILE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	loader := AddEnvFlag(fs, filepath.Join(t.TempDir(), "absent.env"), "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if _, err := loader.Load(); !errors.Is(err, ErrNoEnvFile) {
		t.Fatalf("expected ErrNoEnvFile, got %v", err)
	}
}

func TestEnvLoader_MissingExplicitFileNamesPath(t *testing.T) {
	t.Setenv("PDFDESK_ENV_FILE", "")
	t.Setenv("HORSE_ENV_FILE", "")

	dir := t.TempDir()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	loader := AddEnvFlag(fs, filepath.Join(dir, "absent.env"), "")
	requested := filepath.Join(dir, "nope.env")
	if err := fs.Parse([]string{"--env", requested}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	_, err := loader.Load()
	if !errors.Is(err, ErrNoEnvFile) || !strings.Contains(err.Error(), requested) {
		t.Fatalf("expected ErrNoEnvFile naming %s, got %v", requested, err)
	}
}
