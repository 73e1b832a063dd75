package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// RenderPage generates output artifacts in the requested formats. opts must
// have been validated.
func RenderPage(ctx context.Context, n note.DeliveryNote, page layout.Page, opts Options) (map[string][]byte, error) {
	r := &rasterCache{ctx: ctx, page: page, opts: opts}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatPDF:
			var jpg []byte
			if jpg, err = r.jpeg(); err == nil {
				data, _, err = export.EncodePDF(jpg)
			}
		case FormatPNG:
			data, err = r.png()
		case FormatJPEG:
			data, err = r.jpeg()
		case FormatJSON:
			data, err = sink.RenderJSON(page)
		case FormatXLSX:
			data, err = sink.RenderXLSX(n, page)
		case FormatText:
			data = []byte(sink.RenderText(page, opts.TextWidth))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// rasterCache paints the page at most once and encodes it lazily.
type rasterCache struct {
	ctx  context.Context
	page layout.Page
	opts Options

	img      *image.RGBA
	err      error
	jpegData []byte
}

func (r *rasterCache) raster() (*image.RGBA, error) {
	if r.img == nil && r.err == nil {
		r.img, r.err = sink.Rasterize(r.ctx, r.page, sink.WithPixelRatio(r.opts.PixelRatio))
	}
	return r.img, r.err
}

func (r *rasterCache) png() ([]byte, error) {
	img, err := r.raster()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *rasterCache) jpeg() ([]byte, error) {
	if r.jpegData != nil {
		return r.jpegData, nil
	}
	img, err := r.raster()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.opts.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	r.jpegData = buf.Bytes()
	return r.jpegData, nil
}
