package sink

import (
	"image"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/deliverynote/pkg/fonts"
)

// Palette, as hex colors.
const (
	colorWhite   = "#ffffff"
	colorZinc50  = "#fafafa"
	colorZinc100 = "#f4f4f5"
	colorZinc200 = "#e4e4e7"
	colorZinc300 = "#d4d4d8"
	colorZinc400 = "#a1a1aa"
	colorZinc500 = "#71717a"
	colorZinc600 = "#52525b"
	colorZinc800 = "#27272a"
	colorZinc900 = "#18181b"
	colorBlue600 = "#2563eb"
	colorBlue900 = "#1e3a8a"
)

// textStyle is a font, a size and a line height in CSS pixels, and a color.
type textStyle struct {
	font       fonts.Style
	size       float64
	lineHeight float64
	color      string
}

var (
	styleBody      = textStyle{fonts.Regular, 12, 15, colorZinc800}
	styleBodyBold  = textStyle{fonts.Bold, 12, 15, colorZinc900}
	styleMono      = textStyle{fonts.Mono, 12, 15, colorZinc800}
	styleMuted     = textStyle{fonts.Regular, 12, 15, colorZinc500}
	styleTitle     = textStyle{fonts.Bold, 24, 32, colorZinc900}
	styleHeading   = textStyle{fonts.Bold, 12, 15, colorBlue600}
	styleTableHead = textStyle{fonts.Bold, 12, 15, colorWhite}
	styleTotal     = textStyle{fonts.Bold, 18, 28, colorZinc900}
	styleNote      = textStyle{fonts.Italic, 12, 15, colorZinc600}
	styleSmall     = textStyle{fonts.Regular, 10, 12.5, colorZinc500}
	styleSmallBold = textStyle{fonts.Regular, 10, 12.5, colorZinc800}
	styleSmallMono = textStyle{fonts.Mono, 10, 12.5, colorZinc800}
	styleLogo      = textStyle{fonts.Regular, 10, 12.5, colorZinc400}
)

// painter draws in CSS pixels onto a gg context scaled by the pixel ratio.
// With a nil context it only measures, so the same code computes the content
// height before the canvas exists.
type painter struct {
	dc    *gg.Context
	scale float64
	faces *fonts.Faces
	err   error
}

func (p *painter) measuring() bool { return p.dc == nil }

func (p *painter) face(ts textStyle) font.Face {
	f, err := p.faces.Face(ts.font, ts.size*p.scale)
	if err != nil && p.err == nil {
		p.err = err
	}
	return f
}

// width returns the advance of s in CSS pixels.
func (p *painter) width(ts textStyle, s string) float64 {
	f := p.face(ts)
	if f == nil {
		return 0
	}
	return float64(font.MeasureString(f, s)) / 64 / p.scale
}

// text draws one line of s with its line box top at y. x is the left edge
// for left-aligned text and the right edge for right-aligned text.
func (p *painter) text(ts textStyle, s string, x, y float64, rightAlign bool) {
	if p.measuring() || s == "" {
		return
	}
	f := p.face(ts)
	if f == nil {
		return
	}
	if rightAlign {
		x -= p.width(ts, s)
	}
	m := f.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	baseline := y*p.scale + (ts.lineHeight*p.scale-(ascent+descent))/2 + ascent

	p.dc.SetFontFace(f)
	p.dc.SetHexColor(ts.color)
	p.dc.DrawString(s, x*p.scale, baseline)
}

// runs draws consecutive text runs on one line starting at x.
func (p *painter) runs(y, x float64, parts ...run) {
	for _, r := range parts {
		p.text(r.style, r.text, x, y, false)
		x += p.width(r.style, r.text)
	}
}

type run struct {
	style textStyle
	text  string
}

// wrap breaks s into lines no wider than maxWidth. Words wider than the line
// are split between characters. Empty input gives one empty line.
func (p *painter) wrap(ts textStyle, s string, maxWidth float64) []string {
	if maxWidth <= 0 || p.width(ts, s) <= maxWidth {
		return []string{s}
	}
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if p.width(ts, candidate) <= maxWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = word
		for p.width(ts, cur) > maxWidth && utf8.RuneCountInString(cur) > 1 {
			head, tail := p.splitAt(ts, cur, maxWidth)
			lines = append(lines, head)
			cur = tail
		}
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// splitAt returns the longest prefix of s that fits maxWidth (at least one
// rune) and the remainder.
func (p *painter) splitAt(ts textStyle, s string, maxWidth float64) (string, string) {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if end > 0 && p.width(ts, s[:next]) > maxWidth {
			break
		}
		end = next
	}
	return s[:end], s[end:]
}

// wrapLines wraps every line of lines.
func (p *painter) wrapLines(ts textStyle, lines []string, maxWidth float64) []string {
	var out []string
	for _, l := range lines {
		out = append(out, p.wrap(ts, l, maxWidth)...)
	}
	return out
}

func (p *painter) fillRect(x, y, w, h float64, hex string) {
	if p.measuring() {
		return
	}
	p.dc.SetHexColor(hex)
	p.dc.DrawRectangle(x*p.scale, y*p.scale, w*p.scale, h*p.scale)
	p.dc.Fill()
}

func (p *painter) strokeRect(x, y, w, h float64, hex string) {
	if p.measuring() {
		return
	}
	p.dc.SetHexColor(hex)
	p.dc.SetLineWidth(p.scale)
	// Half-pixel inset keeps one-pixel borders crisp.
	half := 0.5
	p.dc.DrawRectangle(x*p.scale+half, y*p.scale+half, w*p.scale-2*half, h*p.scale-2*half)
	p.dc.Stroke()
}

func (p *painter) roundedBox(x, y, w, h, r float64, fill, stroke string, dashed bool) {
	if p.measuring() {
		return
	}
	p.dc.DrawRoundedRectangle(x*p.scale, y*p.scale, w*p.scale, h*p.scale, r*p.scale)
	if fill != "" {
		p.dc.SetHexColor(fill)
		p.dc.FillPreserve()
	}
	p.dc.SetHexColor(stroke)
	p.dc.SetLineWidth(p.scale)
	if dashed {
		p.dc.SetDash(4*p.scale, 3*p.scale)
	}
	p.dc.Stroke()
	p.dc.SetDash()
}

func (p *painter) hline(x1, x2, y float64, hex string) {
	if p.measuring() {
		return
	}
	p.dc.SetHexColor(hex)
	p.dc.SetLineWidth(p.scale)
	p.dc.DrawLine(x1*p.scale, y*p.scale+0.5, x2*p.scale, y*p.scale+0.5)
	p.dc.Stroke()
}

func (p *painter) vline(x, y1, y2 float64, hex string) {
	if p.measuring() {
		return
	}
	p.dc.SetHexColor(hex)
	p.dc.SetLineWidth(p.scale)
	p.dc.DrawLine(x*p.scale+0.5, y1*p.scale, x*p.scale+0.5, y2*p.scale)
	p.dc.Stroke()
}

// image draws img fitted and centered in the box, keeping its aspect ratio.
func (p *painter) image(img image.Image, x, y, w, h float64) {
	if p.measuring() || img == nil {
		return
	}
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return
	}
	bw, bh := w*p.scale, h*p.scale
	r := math.Min(bw/float64(src.Dx()), bh/float64(src.Dy()))
	tw := max(1, int(math.Round(float64(src.Dx())*r)))
	th := max(1, int(math.Round(float64(src.Dy())*r)))
	fitted := imaging.Resize(img, tw, th, imaging.Lanczos)
	ox := int(x*p.scale) + (int(bw)-tw)/2
	oy := int(y*p.scale) + (int(bh)-th)/2
	p.dc.DrawImage(fitted, ox, oy)
}
