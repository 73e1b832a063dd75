// Package pipeline runs the layout → render pipeline for a delivery note.
//
// The CLI, the terminal editor and the HTTP server all produce their
// outputs through a [Runner], so a page looks the same wherever it is
// rendered.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: resolve the company logo and build the page tree
//  2. Render: produce the requested formats (PDF, PNG, JPEG, JSON, XLSX, text)
//
// Raster formats share one rasterization per run.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, logo.NewFetcher(), logger)
//	result, err := runner.Execute(ctx, n, pipeline.Options{
//	    Formats: []string{pipeline.FormatPDF, pipeline.FormatXLSX},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts[pipeline.FormatPDF]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPixelRatio is the raster resolution multiplier.
	DefaultPixelRatio = sink.DefaultPixelRatio

	// DefaultJPEGQuality is the quality of JPEG output and PDF captures.
	DefaultJPEGQuality = sink.DefaultJPEGQuality

	// DefaultTextWidth is the width of the text preview in columns.
	DefaultTextWidth = sink.DefaultTextWidth

	// DefaultArtifactTTL is how long rendered outputs stay cached.
	DefaultArtifactTTL = time.Hour
)

// Format constants for output formats.
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJPEG: true,
	FormatJSON: true,
	FormatXLSX: true,
	FormatText: true,
}

// FormatNames lists the formats in display order.
var FormatNames = []string{FormatPDF, FormatPNG, FormatJPEG, FormatJSON, FormatXLSX, FormatText}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatPNG:  "image/png",
	FormatJPEG: "image/jpeg",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatText: "text/plain; charset=utf-8",
}

// Extension returns the file extension for a format, including the dot.
func Extension(format string) string {
	if format == FormatJPEG {
		return ".jpg"
	}
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	Formats     []string `json:"formats,omitempty"`
	PixelRatio  float64  `json:"pixel_ratio,omitempty"`
	JPEGQuality int      `json:"jpeg_quality,omitempty"`
	TextWidth   int      `json:"text_width,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Note is the normalized document that was rendered.
	Note note.DeliveryNote

	// Page is the laid-out page.
	Page layout.Page

	// Totals are the document totals.
	Totals note.Totals

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// RenderHit reports whether every artifact came from the cache.
	RenderHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return derrors.New(derrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates. "jpg" is accepted for JPEG.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpg" {
			f = FormatJPEG
		}
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPDF}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.PixelRatio == 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	if o.PixelRatio < sink.MinPixelRatio || o.PixelRatio > sink.MaxPixelRatio {
		return derrors.New(derrors.ErrCodeInvalidInput,
			"pixel ratio %v out of range [%v, %v]", o.PixelRatio, sink.MinPixelRatio, sink.MaxPixelRatio)
	}

	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return derrors.New(derrors.ErrCodeInvalidInput, "jpeg quality %d out of range [1, 100]", o.JPEGQuality)
	}

	if o.TextWidth <= 0 {
		o.TextWidth = DefaultTextWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
