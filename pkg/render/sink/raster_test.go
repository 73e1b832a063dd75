package sink

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

func samplePage() layout.Page {
	return layout.Build(note.Default(time.Date(2025, 8, 13, 19, 39, 0, 0, time.UTC)))
}

func TestPageSize(t *testing.T) {
	w, h := PageSize(samplePage())
	if w != 794 || h != 1123 {
		t.Errorf("PageSize = %dx%d, want 794x1123", w, h)
	}
}

func TestClampPixelRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 2},
		{1, 2},
		{2, 2},
		{3, 3},
		{100, 6},
	}
	for _, tt := range tests {
		if got := ClampPixelRatio(tt.in); got != tt.want {
			t.Errorf("ClampPixelRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRasterizeA4(t *testing.T) {
	img, err := Rasterize(context.Background(), samplePage(), WithPixelRatio(2))
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1588 || b.Dy() < 2246 {
		t.Errorf("size = %dx%d, want width 1588 and at least 2246 high", b.Dx(), b.Dy())
	}
	// page corners are opaque white
	for _, pt := range []image.Point{{0, 0}, {b.Dx() - 1, 0}, {0, b.Dy() - 1}} {
		if got := color.RGBAModel.Convert(img.At(pt.X, pt.Y)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
			t.Errorf("pixel %v = %v, want white", pt, got)
		}
	}
	if !hasInk(img) {
		t.Error("nothing was drawn")
	}
}

func TestRasterizeLowRatioIsRaised(t *testing.T) {
	img, err := Rasterize(context.Background(), samplePage(), WithPixelRatio(1))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1588 {
		t.Errorf("width = %d, want 1588", img.Bounds().Dx())
	}
}

func TestRasterizeTallContentGrows(t *testing.T) {
	n := note.Default(time.Now())
	for i := 0; i < 60; i++ {
		n.Items = append(n.Items, note.LineItem{ID: strings.Repeat("x", i+1), Description: "Baklava", Quantity: 1, UnitPrice: 2})
	}
	img, err := Rasterize(context.Background(), layout.Build(n), WithPixelRatio(2))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1588 {
		t.Errorf("width = %d, want one page width", img.Bounds().Dx())
	}
	short, err := Rasterize(context.Background(), samplePage(), WithPixelRatio(2))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dy() <= short.Bounds().Dy() || img.Bounds().Dy() <= 2246 {
		t.Errorf("height = %d, want more than one page", img.Bounds().Dy())
	}
}

func TestRasterizeLogoStatesKeepSize(t *testing.T) {
	n := note.Default(time.Now())
	logo := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for i := range logo.Pix {
		logo.Pix[i] = 0x80
	}

	pages := map[string]layout.Page{
		"ready":       layout.Build(n, layout.WithLogo(logo)),
		"unavailable": layout.Build(n),
	}
	n.Company.Logo = ""
	pages["none"] = layout.Build(n)

	heights := map[string]int{}
	for name, p := range pages {
		img, err := Rasterize(context.Background(), p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		heights[name] = img.Bounds().Dy()
	}
	if heights["ready"] != heights["unavailable"] || heights["ready"] != heights["none"] {
		t.Errorf("logo state changed the page height: %v", heights)
	}
}

func TestRasterizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Rasterize(ctx, samplePage()); err == nil {
		t.Error("Rasterize with canceled context should fail")
	}
}

func TestRenderPNGAndJPEG(t *testing.T) {
	ctx := context.Background()
	p := samplePage()

	data, err := RenderPNG(ctx, p)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 1588 {
		t.Errorf("png config = %+v, %v", cfg, err)
	}

	data, err = RenderJPEG(ctx, p, 95)
	if err != nil {
		t.Fatalf("RenderJPEG: %v", err)
	}
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width != 1588 || cfg.Height < 2246 {
		t.Errorf("jpeg config = %+v, %v", cfg, err)
	}
}

func TestSurfaceCapture(t *testing.T) {
	s := NewSurface(samplePage())
	img, err := s.Capture(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 2382 {
		t.Errorf("width = %d, want 2382", img.Bounds().Dx())
	}
}

func TestWrap(t *testing.T) {
	p := &painter{scale: 2, faces: newTestFaces(t)}
	long := strings.Repeat("pâtisserie ", 30)
	lines := p.wrap(styleBody, long, 200)
	if len(lines) < 2 {
		t.Fatalf("wrap gave %d lines", len(lines))
	}
	for _, l := range lines {
		if p.width(styleBody, l) > 200 {
			t.Errorf("line %q is %v px wide", l, p.width(styleBody, l))
		}
	}

	word := strings.Repeat("W", 80)
	for _, l := range p.wrap(styleBody, word, 100) {
		if p.width(styleBody, l) > 100 {
			t.Errorf("unbreakable word not split: %q", l)
		}
	}

	if got := p.wrap(styleBody, "", 100); len(got) != 1 || got[0] != "" {
		t.Errorf("wrap(empty) = %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	cols := []layout.Column{{Label: "a"}, {Label: "b", Width: 96}, {Label: "c", Width: 128}}
	got := columnWidths(cols, 698)
	if got[0] != 474 || got[1] != 96 || got[2] != 128 {
		t.Errorf("columnWidths = %v", got)
	}
}

func hasInk(img *image.RGBA) bool {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 200 {
			return true
		}
	}
	return false
}
