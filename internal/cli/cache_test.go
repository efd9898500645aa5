package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheUsage(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "http")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, size := cacheUsage(dir)
	if entries != 2 {
		t.Errorf("cacheUsage() entries = %d, want 2", entries)
	}
	if size != 8 {
		t.Errorf("cacheUsage() size = %d, want 8", size)
	}
}

func TestCacheUsageMissingDir(t *testing.T) {
	entries, size := cacheUsage(filepath.Join(t.TempDir(), "absent"))
	if entries != 0 || size != 0 {
		t.Errorf("cacheUsage() on missing dir = (%d, %d), want (0, 0)", entries, size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
		{5 << 30, "5.0 GiB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCacheClearCommand(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", root)

	dir := filepath.Join(root, appName)
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "entry.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, _ := cacheUsage(dir)
	if entries != 0 {
		t.Errorf("cache clear left %d entries", entries)
	}
}

func TestCacheInfoCommandMissingDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "fresh"))

	// Info on a never-populated cache reports zero entries, not an error.
	if err := execute(t, "cache", "info"); err != nil {
		t.Fatalf("cache info: %v", err)
	}
}

func TestCacheClearCommandMissingDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "fresh"))

	if err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear on empty cache: %v", err)
	}
}
