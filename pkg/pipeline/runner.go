package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deliverynote/pkg/cache"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/observability"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// Runner encapsulates pipeline execution with caching.
// CLI, terminal editor and HTTP server use it to avoid duplicating logic.
//
// The Runner is stateless except for the cache, the logo source and the
// logger. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Logos  logo.Source
	Logger *log.Logger
}

// NewRunner creates a runner.
// If c is nil, a NullCache is used (caching disabled).
// If logos is nil, logos are never resolved.
func NewRunner(c cache.Cache, logos logo.Source, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logos == nil {
		logos = logo.None{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logos:  logos,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, n note.DeliveryNote, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	n = note.Normalize(n)

	result := &Result{
		Note:   n,
		Totals: note.ComputeTotals(n),
	}
	result.Stats.ItemCount = len(n.Items)

	// Stage 1: Layout
	layoutStart := time.Now()
	page, err := r.Layout(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Page = page
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("laid out page",
		"items", len(n.Items),
		"logo", page.Header.Logo.State,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, n, page, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout resolves the logo and builds the page. It fails only when ctx is
// done; an unavailable logo is a valid layout state.
func (r *Runner) Layout(ctx context.Context, n note.DeliveryNote) (layout.Page, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(n.Items))
	start := time.Now()

	page := logo.Layout(ctx, r.Logos, n)
	err := ctx.Err()

	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	return page, err
}

// RenderWithCacheInfo renders the requested formats and reports whether all
// of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, n note.DeliveryNote, page layout.Page, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, n, page, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, n note.DeliveryNote, page layout.Page, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, n, page, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, n note.DeliveryNote, page layout.Page, opts Options) (map[string][]byte, bool, error) {
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = artifactKey(n, page, format, opts)
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keys[format])
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	rendered, err := RenderPage(ctx, n, page, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keys[format], data, DefaultArtifactTTL); err != nil {
			opts.Logger.Debug("artifact cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// artifactKey identifies one rendered output. Everything that changes the
// bytes is part of the key; the logo is keyed by reference and state.
func artifactKey(n note.DeliveryNote, page layout.Page, format string, opts Options) string {
	return cache.Key("artifact", n, page.Header.Logo.Ref, page.Header.Logo.State,
		format, opts.PixelRatio, opts.JPEGQuality, opts.TextWidth)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
