package sink

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// DefaultJPEGQuality is the JPEG quality used for PDF captures.
const DefaultJPEGQuality = 95

// RenderPNG rasterizes the page and encodes it as PNG.
func RenderPNG(ctx context.Context, p layout.Page, opts ...RasterOption) ([]byte, error) {
	img, err := Rasterize(ctx, p, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderJPEG rasterizes the page and encodes it as JPEG at the given
// quality (1..100; out-of-range values use [DefaultJPEGQuality]).
func RenderJPEG(ctx context.Context, p layout.Page, quality int, opts ...RasterOption) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	img, err := Rasterize(ctx, p, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
