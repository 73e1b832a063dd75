package fonts

import (
	"testing"

	"golang.org/x/image/font"
)

func TestFontStyles(t *testing.T) {
	for _, s := range []Style{Regular, Bold, Italic, Mono} {
		f, err := Font(s)
		if err != nil || f == nil {
			t.Fatalf("Font(%s) = %v, %v", s, f, err)
		}
	}
	if _, err := Font(Style(9)); err == nil {
		t.Error("Font(9) should fail")
	}
}

func TestFacesReuse(t *testing.T) {
	faces := NewFaces()
	defer faces.Close()

	a, err := faces.Face(Regular, 12)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := faces.Face(Regular, 12)
	if a != b {
		t.Error("same style and size should share a face")
	}
	c, _ := faces.Face(Regular, 24)
	if a == c {
		t.Error("different sizes should not share a face")
	}
}

func TestFacesCoverFrenchText(t *testing.T) {
	faces := NewFaces()
	defer faces.Close()

	face, err := faces.Face(Bold, 16)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []Style{Regular, Bold, Italic, Mono} {
		f, _ := Font(s)
		for _, r := range "éàçèù°€Ö" {
			if f.Index(r) == 0 {
				t.Errorf("%s: no glyph for %q", s, r)
			}
		}
	}
	if w := font.MeasureString(face, "BON DE LIVRAISON"); w <= 0 {
		t.Errorf("MeasureString = %v", w)
	}
}

func TestStyleString(t *testing.T) {
	if Bold.String() != "bold" || Style(7).String() != "Style(7)" {
		t.Errorf("unexpected names %q %q", Bold, Style(7))
	}
}
