package export

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/jung-kurt/gofpdf"
)

const (
	// A4WidthMM is the width of every exported page.
	A4WidthMM = 210.0
	// A4HeightMM is the page height used when the capture cannot be measured.
	A4HeightMM = 297.0
)

// Filename returns the download name for a document number. The number is
// used verbatim.
func Filename(number string) string {
	return "Bon_Livraison_" + number + ".pdf"
}

// PageHeightMM returns the height of an A4-wide page showing the encoded
// image at its aspect ratio. When the image cannot be decoded, has no width,
// or the height is not finite, it returns [A4HeightMM] and false.
func PageHeightMM(encoded []byte) (float64, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(encoded))
	if err != nil || cfg.Width <= 0 {
		return A4HeightMM, false
	}
	h := float64(cfg.Height) * A4WidthMM / float64(cfg.Width)
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return A4HeightMM, false
	}
	return h, true
}

// EncodePDF embeds a JPEG as the only content of a single page and returns
// the document with its page height in millimeters.
func EncodePDF(jpegData []byte) ([]byte, float64, error) {
	height, _ := PageHeightMM(jpegData)
	pdf, err := buildPDF(jpegData, height)
	if err != nil {
		return nil, 0, err
	}
	return pdf, height, nil
}

func buildPDF(jpegData []byte, height float64) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: A4WidthMM, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("capture", opt, bytes.NewReader(jpegData))
	pdf.ImageOptions("capture", 0, 0, A4WidthMM, height, false, opt, 0, "")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
