// Package config loads deliverynote settings from the environment.
//
// Values come from DELIVERYNOTE_* variables, optionally read from a .env
// file first. Command-line flags override what Load returns.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/deliverynote/pkg/cache"
	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// AppName is used for directories and key prefixes.
const AppName = "deliverynote"

// Environment variable names.
const (
	EnvCache       = "DELIVERYNOTE_CACHE"
	EnvCacheDir    = "DELIVERYNOTE_CACHE_DIR"
	EnvRedisURL    = "DELIVERYNOTE_REDIS_URL"
	EnvLogoTTL     = "DELIVERYNOTE_LOGO_TTL"
	EnvOutputDir   = "DELIVERYNOTE_OUTPUT_DIR"
	EnvAddr        = "DELIVERYNOTE_ADDR"
	EnvPixelRatio  = "DELIVERYNOTE_PIXEL_RATIO"
	EnvJPEGQuality = "DELIVERYNOTE_JPEG_QUALITY"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults.
const (
	DefaultAddr      = ":8080"
	DefaultOutputDir = "."
	DefaultRedisURL  = "redis://localhost:6379/0"
)

// Config holds runtime settings.
type Config struct {
	Cache       string
	CacheDir    string
	RedisURL    string
	LogoTTL     time.Duration
	OutputDir   string
	Addr        string
	PixelRatio  float64
	JPEGQuality int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Cache:       CacheFile,
		CacheDir:    DefaultCacheDir(),
		RedisURL:    DefaultRedisURL,
		LogoTTL:     logo.DefaultTTL,
		OutputDir:   DefaultOutputDir,
		Addr:        DefaultAddr,
		PixelRatio:  sink.DefaultPixelRatio,
		JPEGQuality: sink.DefaultJPEGQuality,
	}
}

// LoadDotEnv reads the given .env files (".env" when none are given) into
// the process environment. Missing files are ignored; variables already set
// are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load reads configuration from the environment with defaults.
// Precedence: env var > .env file (if loaded) > default.
func Load() (Config, error) {
	cfg := Default()
	cfg.Cache = strings.ToLower(getEnv(EnvCache, cfg.Cache))
	cfg.CacheDir = getEnv(EnvCacheDir, cfg.CacheDir)
	cfg.RedisURL = getEnv(EnvRedisURL, cfg.RedisURL)
	cfg.OutputDir = getEnv(EnvOutputDir, cfg.OutputDir)
	cfg.Addr = getEnv(EnvAddr, cfg.Addr)

	var err error
	if cfg.LogoTTL, err = parseDuration(EnvLogoTTL, cfg.LogoTTL); err != nil {
		return Config{}, err
	}
	if cfg.PixelRatio, err = parseFloat(EnvPixelRatio, cfg.PixelRatio); err != nil {
		return Config{}, err
	}
	if cfg.JPEGQuality, err = parseInt(EnvJPEGQuality, cfg.JPEGQuality); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch c.Cache {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return derrors.New(derrors.ErrCodeInvalidInput,
			"%s must be one of %s, %s, %s (got %q)", EnvCache, CacheFile, CacheRedis, CacheNone, c.Cache)
	}
	if c.PixelRatio < sink.MinPixelRatio || c.PixelRatio > sink.MaxPixelRatio {
		return derrors.New(derrors.ErrCodeInvalidInput,
			"pixel ratio %v out of range [%v, %v]", c.PixelRatio, sink.MinPixelRatio, sink.MaxPixelRatio)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return derrors.New(derrors.ErrCodeInvalidInput, "jpeg quality %d out of range [1, 100]", c.JPEGQuality)
	}
	if c.LogoTTL < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "logo ttl cannot be negative")
	}
	return nil
}

// OpenCache opens the configured cache backend. Redis keys are prefixed
// with the application name.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.RedisURL)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeNetwork, err, "connect to redis")
		}
		return cache.Prefixed(rc, AppName+":"), nil
	default:
		return cache.NewFileCache(c.CacheDir)
	}
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/deliverynote/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".cache", AppName)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid duration for %s", key)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid number for %s", key)
	}
	return f, nil
}

func parseInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid integer for %s", key)
	}
	return n, nil
}
