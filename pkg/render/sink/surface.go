package sink

import (
	"context"
	"image"

	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// Surface is a laid-out page that is rasterized when captured.
type Surface struct {
	page layout.Page
}

// NewSurface returns a surface showing p.
func NewSurface(p layout.Page) *Surface {
	return &Surface{page: p}
}

// Page returns the page the surface shows.
func (s *Surface) Page() layout.Page { return s.page }

// Capture rasterizes the page at the given pixel ratio.
func (s *Surface) Capture(ctx context.Context, pixelRatio float64) (image.Image, error) {
	return Rasterize(ctx, s.page, WithPixelRatio(pixelRatio))
}
