package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/deliverynote/internal/config"
	"github.com/matzehuels/deliverynote/pkg/cache"
)

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir := config.DefaultCacheDir()

	if !strings.HasSuffix(dir, appName) {
		t.Errorf("DefaultCacheDir() = %q, should end with %q", dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil && !strings.HasPrefix(dir, home) {
		t.Errorf("DefaultCacheDir() = %q, should be under home %q", dir, home)
	}
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = fc.Set(ctx, cache.Key("logo", "a"), []byte("1"), time.Hour)
	_ = fc.Set(ctx, cache.Key("logo", "b"), []byte("2"), time.Hour)

	cfg := config.Default()
	cfg.Cache = config.CacheFile
	cfg.CacheDir = dir
	if err := runCacheClear(ctx, cfg); err != nil {
		t.Fatalf("runCacheClear: %v", err)
	}
	if n, _ := fc.Len(); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestCacheClearBackends(t *testing.T) {
	tests := []struct {
		name  string
		cache string
		dir   string
	}{
		{"disabled", config.CacheNone, ""},
		{"redis", config.CacheRedis, ""},
		{"missing dir", config.CacheFile, filepath.Join(t.TempDir(), "nope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache
			cfg.CacheDir = tt.dir
			if err := runCacheClear(context.Background(), cfg); err != nil {
				t.Errorf("runCacheClear: %v", err)
			}
			if tt.dir != "" {
				if _, err := os.Stat(tt.dir); !os.IsNotExist(err) {
					t.Error("clearing a missing cache should not create it")
				}
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	c := testCLI(t)
	t.Setenv(config.EnvCache, config.CacheFile)
	t.Setenv(config.EnvCacheDir, filepath.Join(t.TempDir(), "c"))

	if err := execute(c, "cache", "path"); err != nil {
		t.Errorf("cache path: %v", err)
	}
	if err := execute(c, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}
