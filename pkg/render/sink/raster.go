package sink

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/matzehuels/deliverynote/pkg/fonts"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// CSSPixelsPerInch is the resolution of a page at pixel ratio 1.
const CSSPixelsPerInch = 96.0

// Pixel ratio bounds. Captures are never taken below MinPixelRatio.
const (
	DefaultPixelRatio = 2.0
	MinPixelRatio     = 2.0
	MaxPixelRatio     = 6.0
)

// Page geometry in CSS pixels.
const (
	pagePadding   = 48.0
	sectionGap    = 32.0
	headingGap    = 8.0
	cellPadding   = 8.0
	logoSize      = 128.0
	blankRowH     = 32.0
	obsMinHeight  = 40.0
	signatureMinH = 120.0
	signaturePad  = 16.0
)

// MMToPixels converts millimetres to CSS pixels.
func MMToPixels(mm float64) float64 {
	return mm / 25.4 * CSSPixelsPerInch
}

// PageSize returns the A4 page size in whole CSS pixels (794×1123).
func PageSize(p layout.Page) (w, h int) {
	return int(math.Round(MMToPixels(p.WidthMM))), int(math.Round(MMToPixels(p.HeightMM)))
}

// RasterOption configures [Rasterize].
type RasterOption func(*rasterizer)

type rasterizer struct {
	ratio float64
}

// WithPixelRatio sets the number of device pixels per CSS pixel. Values
// below [MinPixelRatio] are raised to it and values above [MaxPixelRatio]
// are lowered to it.
func WithPixelRatio(r float64) RasterOption {
	return func(z *rasterizer) { z.ratio = r }
}

// ClampPixelRatio returns r limited to [MinPixelRatio, MaxPixelRatio].
// Non-finite values give [DefaultPixelRatio].
func ClampPixelRatio(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return DefaultPixelRatio
	}
	return math.Min(math.Max(r, MinPixelRatio), MaxPixelRatio)
}

// Rasterize paints the page onto an opaque white canvas. The canvas is the
// page width and at least the page height; content taller than a page makes
// the canvas taller instead of starting a second page.
func Rasterize(ctx context.Context, p layout.Page, opts ...RasterOption) (*image.RGBA, error) {
	z := rasterizer{ratio: DefaultPixelRatio}
	for _, opt := range opts {
		opt(&z)
	}
	ratio := ClampPixelRatio(z.ratio)

	faces := fonts.NewFaces()
	defer faces.Close()

	w, h := PageSize(p)

	// First pass measures, second pass draws.
	m := &painter{scale: ratio, faces: faces}
	contentH := paintPage(m, p, float64(w), float64(h))
	if m.err != nil {
		return nil, fmt.Errorf("measure page: %w", m.err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvasH := max(float64(h), math.Ceil(contentH))
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(float64(w)*ratio)), int(math.Ceil(canvasH*ratio))))
	dc := gg.NewContextForRGBA(img)
	dc.SetHexColor(colorWhite)
	dc.Clear()

	d := &painter{dc: dc, scale: ratio, faces: faces}
	paintPage(d, p, float64(w), canvasH)
	if d.err != nil {
		return nil, fmt.Errorf("draw page: %w", d.err)
	}
	return img, nil
}

// paintPage lays out every section and returns the content height. The
// footer sits at the bottom of a page of height pageH, or right after the
// content when the content is taller.
func paintPage(p *painter, pg layout.Page, pageW, pageH float64) float64 {
	x := pagePadding
	w := pageW - 2*pagePadding

	y := pagePadding
	y = paintHeader(p, pg.Header, x, y, w) + sectionGap
	y = paintKeyTable(p, pg.Recipient, x, y, w) + sectionGap
	y = paintItems(p, pg.Items, x, y, w) + sectionGap
	y = paintTotals(p, pg.Totals, x, y, w) + sectionGap
	y = paintObservations(p, pg.Observations, x, y, w) + sectionGap
	y = paintSignatures(p, pg.Signatures, x, y, w) + sectionGap

	footerH := 16 + styleSmall.lineHeight
	footerTop := max(y, pageH-pagePadding-footerH)
	paintFooter(p, pg.Footer, x, footerTop, w)
	return footerTop + footerH + pagePadding
}

func paintHeader(p *painter, h layout.Header, x, y, w float64) float64 {
	// Left column: logo slot and issuer.
	switch h.Logo.State {
	case layout.LogoNone:
		p.roundedBox(x, y, logoSize, logoSize, 4, colorZinc100, colorZinc300, true)
		lw := p.width(styleLogo, h.Logo.Placeholder)
		p.text(styleLogo, h.Logo.Placeholder, x+(logoSize-lw)/2, y+(logoSize-styleLogo.lineHeight)/2, false)
	case layout.LogoReady:
		p.image(h.Logo.Image, x, y, logoSize, logoSize)
	case layout.LogoUnavailable:
		// The slot keeps its size and stays empty.
	}

	colW := w / 2
	ly := y + logoSize + 16
	p.text(styleBodyBold, h.Company.Name, x, ly, false)
	ly += styleBodyBold.lineHeight
	for _, line := range p.wrapLines(styleBody, h.Company.AddressLines, colW) {
		p.text(styleBody, line, x, ly, false)
		ly += styleBody.lineHeight
	}
	p.text(styleBody, h.Company.VATLine, x, ly, false)
	ly += styleBody.lineHeight

	// Right column: title and document fields, right aligned.
	right := x + w
	ry := y
	p.text(styleTitle, h.Title, right, ry, true)
	ry += styleTitle.lineHeight + 16
	for _, f := range h.Fields {
		vs := styleBody
		if f.Mono {
			vs = styleMono
		}
		vw := p.width(vs, f.Value)
		p.text(vs, f.Value, right, ry, true)
		p.text(styleMuted, f.Label, right-vw-p.width(styleMuted, " "), ry, true)
		ry += styleBody.lineHeight + 4
	}
	return max(ly, ry)
}

func paintHeading(p *painter, title string, x, y float64) float64 {
	p.text(styleHeading, strings.ToUpper(title), x, y, false)
	return y + styleHeading.lineHeight + headingGap
}

func paintKeyTable(p *painter, t layout.KeyTable, x, y, w float64) float64 {
	y = paintHeading(p, t.Title, x, y)
	labelW := w / 3
	valueW := w - labelW
	for _, r := range t.Rows {
		lines := p.wrapLines(styleBody, r.Lines, valueW-2*cellPadding)
		rh := 2*cellPadding + float64(len(lines))*styleBody.lineHeight
		p.fillRect(x, y, labelW, rh, colorZinc50)
		p.strokeRect(x, y, labelW, rh, colorZinc400)
		p.strokeRect(x+labelW, y, valueW, rh, colorZinc400)
		p.text(styleBodyBold, r.Label, x+cellPadding, y+cellPadding, false)
		for i, line := range lines {
			p.text(styleBody, line, x+labelW+cellPadding, y+cellPadding+float64(i)*styleBody.lineHeight, false)
		}
		y += rh
	}
	return y
}

func paintItems(p *painter, t layout.ItemTable, x, y, w float64) float64 {
	y = paintHeading(p, t.Title, x, y)

	widths := columnWidths(t.Columns, w)
	headH := 2*cellPadding + styleTableHead.lineHeight
	p.fillRect(x, y, w, headH, colorBlue900)
	cx := x
	for i, c := range t.Columns {
		p.strokeRect(cx, y, widths[i], headH, colorBlue900)
		paintCell(p, styleTableHead, c.Label, cx, y, widths[i], c.Align)
		cx += widths[i]
	}
	y += headH

	for _, r := range t.Rows {
		cells := []string{r.Description, r.Quantity, r.Total}
		rh := blankRowH
		var wrapped [][]string
		if !r.Blank {
			rh = 0
			for i, cell := range cells[:min(len(cells), len(widths))] {
				lines := p.wrap(styleBody, cell, widths[i]-2*cellPadding)
				wrapped = append(wrapped, lines)
				rh = max(rh, 2*cellPadding+float64(len(lines))*styleBody.lineHeight)
			}
		}
		cx := x
		for i := range t.Columns {
			p.strokeRect(cx, y, widths[i], rh, colorZinc400)
			if !r.Blank && i < len(wrapped) {
				for j, line := range wrapped[i] {
					paintCell(p, styleBody, line, cx, y+float64(j)*styleBody.lineHeight, widths[i], t.Columns[i].Align)
				}
			}
			cx += widths[i]
		}
		y += rh
	}
	return y
}

// columnWidths gives fixed-width columns their width and shares the rest
// among the flexible ones.
func columnWidths(cols []layout.Column, total float64) []float64 {
	out := make([]float64, len(cols))
	rest := total
	flexible := 0
	for i, c := range cols {
		if c.Width > 0 {
			out[i] = c.Width
			rest -= c.Width
		} else {
			flexible++
		}
	}
	for i, c := range cols {
		if c.Width == 0 && flexible > 0 {
			out[i] = max(rest, 0) / float64(flexible)
		}
	}
	return out
}

func paintCell(p *painter, ts textStyle, s string, x, y, w float64, align layout.Align) {
	if align == layout.AlignRight {
		p.text(ts, s, x+w-cellPadding, y+cellPadding, true)
		return
	}
	p.text(ts, s, x+cellPadding, y+cellPadding, false)
}

func paintTotals(p *painter, t layout.TotalsTable, x, y, w float64) float64 {
	tw := w / 2
	tx := x + w - tw
	for _, r := range t.Rows {
		ls := styleBodyBold
		vs := styleBody
		if r.Emphasis {
			ls, vs = styleTotal, styleTotal
		}
		rh := 2*cellPadding + ls.lineHeight
		p.fillRect(tx, y, tw, rh, shadeColor(r.Shade))
		p.strokeRect(tx, y, tw/2, rh, colorZinc400)
		p.strokeRect(tx+tw/2, y, tw/2, rh, colorZinc400)
		p.text(ls, r.Label, tx+cellPadding, y+cellPadding, false)
		p.text(vs, r.Value, tx+tw-cellPadding, y+cellPadding, true)
		y += rh
	}
	return y
}

func shadeColor(s layout.Shade) string {
	switch s {
	case layout.ShadeMedium:
		return colorZinc50
	case layout.ShadeDark:
		return colorZinc200
	default:
		return colorZinc100
	}
}

func paintObservations(p *painter, b layout.TextBlock, x, y, w float64) float64 {
	y = paintHeading(p, b.Title, x, y)
	lines := p.wrapLines(styleNote, b.Lines, w-2*cellPadding)
	h := max(obsMinHeight, 2*cellPadding+float64(len(lines))*styleNote.lineHeight)
	p.roundedBox(x, y, w, h, 4, "", colorZinc200, false)
	for i, line := range lines {
		p.text(styleNote, line, x+cellPadding, y+cellPadding+float64(i)*styleNote.lineHeight, false)
	}
	return y + h
}

func paintSignatures(p *painter, s layout.Signatures, x, y, w float64) float64 {
	y = paintHeading(p, s.Title, x, y)
	half := w / 2
	left := signatureBoxHeight(s.Client)
	right := signatureBoxHeight(s.DeliveryPerson)
	h := max(left, right)

	p.strokeRect(x, y, w, h, colorZinc400)
	p.vline(x+half, y, y+h, colorZinc400)
	paintSignatureBox(p, s.Client, x, y, half)
	paintSignatureBox(p, s.DeliveryPerson, x+half, y, half)
	return y + h
}

// signatureBoxHeight returns the height a box needs: heading, fields, a tall
// gap for the handwritten part, then the signature line.
func signatureBoxHeight(b layout.SignatureBox) float64 {
	h := signaturePad + styleBodyBold.lineHeight + 8
	for i := range b.Fields {
		h += styleSmall.lineHeight
		if i < len(b.Fields)-1 {
			h += 4
		}
	}
	h += 32 + styleSmall.lineHeight + signaturePad
	return max(h, signatureMinH)
}

func paintSignatureBox(p *painter, b layout.SignatureBox, x, y, w float64) {
	x += signaturePad
	y += signaturePad
	p.text(styleBodyBold, b.Heading, x, y, false)
	y += styleBodyBold.lineHeight + 8
	for i, f := range b.Fields {
		label := f.Label
		if f.Value != "" {
			label += " "
		}
		p.runs(y, x, run{styleSmall, label}, run{styleSmallBold, f.Value})
		y += styleSmall.lineHeight
		if i < len(b.Fields)-1 {
			y += 4
		}
	}
	y += 32
	p.text(styleSmall, b.Signature, x, y, false)
}

func paintFooter(p *painter, f layout.LabeledValue, x, y, w float64) {
	p.hline(x, x+w, y, colorZinc200)
	vs := styleSmallBold
	if f.Mono {
		vs = styleSmallMono
	}
	p.runs(y+16, x, run{styleSmall, f.Label + " "}, run{vs, f.Value})
}
