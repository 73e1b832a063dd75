// Package fonts provides the font faces used to rasterize documents.
//
// The faces come from the Go font family (golang.org/x/image/font/gofont),
// which is compiled into the binary and covers Latin-1 plus the euro sign,
// so rendering never depends on fonts installed on the host.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Style selects a typeface of the family.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	Mono
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Mono:
		return "mono"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

var (
	parsed     [4]*truetype.Font
	parsedErr  error
	parsedOnce sync.Once
)

func load() {
	for i, ttf := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gomono.TTF} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			parsedErr = fmt.Errorf("parse %s font: %w", Style(i), err)
			return
		}
		parsed[i] = f
	}
}

// Font returns the parsed typeface for s. The fonts are parsed once.
func Font(s Style) (*truetype.Font, error) {
	parsedOnce.Do(load)
	if parsedErr != nil {
		return nil, parsedErr
	}
	if s < Regular || s > Mono {
		return nil, fmt.Errorf("unknown font style %d", int(s))
	}
	return parsed[s], nil
}

type faceKey struct {
	style Style
	size  float64
}

// Faces hands out font faces sized in pixels and keeps them for reuse.
// A Faces is safe for concurrent use, but the returned faces are not: use
// one Faces per drawing goroutine.
type Faces struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFaces returns an empty face set.
func NewFaces() *Faces {
	return &Faces{faces: make(map[faceKey]font.Face)}
}

// Face returns the face of style s whose em size is px pixels.
func (f *Faces) Face(s Style, px float64) (font.Face, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := faceKey{s, px}
	if face, ok := f.faces[k]; ok {
		return face, nil
	}
	ttf, err := Font(s)
	if err != nil {
		return nil, err
	}
	// At 72 DPI one point is one pixel.
	face := truetype.NewFace(ttf, &truetype.Options{Size: px, DPI: 72, Hinting: font.HintingFull})
	f.faces[k] = face
	return face, nil
}

// Close releases every face.
func (f *Faces) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, face := range f.faces {
		face.Close()
		delete(f.faces, k)
	}
	return nil
}
