package logo

import (
	"context"
	"image"
	"strings"

	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// Source resolves a logo reference. ok is false when the image is
// unavailable for any reason.
type Source interface {
	Resolve(ctx context.Context, ref string) (img image.Image, ok bool)
}

// None never resolves a logo.
type None struct{}

// Resolve always reports the logo as unavailable.
func (None) Resolve(context.Context, string) (image.Image, bool) { return nil, false }

// Static resolves references from a fixed map.
type Static map[string]image.Image

// Resolve looks ref up in s.
func (s Static) Resolve(_ context.Context, ref string) (image.Image, bool) {
	img, ok := s[strings.TrimSpace(ref)]
	return img, ok && img != nil
}

// Layout builds the page for n with the logo resolved through src. A nil
// src behaves like [None].
func Layout(ctx context.Context, src Source, n note.DeliveryNote) layout.Page {
	if !n.Company.HasLogo() || src == nil {
		return layout.Build(n)
	}
	if img, ok := src.Resolve(ctx, n.Company.Logo); ok {
		return layout.Build(n, layout.WithLogo(img))
	}
	return layout.Build(n)
}

var (
	_ Source = None{}
	_ Source = Static(nil)
	_ Source = (*Fetcher)(nil)
)
