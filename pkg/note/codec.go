package note

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// Format identifies a document file encoding.
type Format string

// Supported document file formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the file format from the extension of path.
// Unknown extensions default to TOML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Decode reads a document in the given format and normalizes it.
func Decode(r io.Reader, format Format) (DeliveryNote, error) {
	var n DeliveryNote
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&n); err != nil {
			return DeliveryNote{}, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode toml document")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&n); err != nil {
			return DeliveryNote{}, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode json document")
		}
	default:
		return DeliveryNote{}, derrors.New(derrors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
	return Normalize(n), nil
}

// Encode writes n in the given format.
func Encode(w io.Writer, n DeliveryNote, format Format) error {
	n = Normalize(n)
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(n)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(n)
	default:
		return derrors.New(derrors.ErrCodeInvalidFormat, "unsupported document format: %q", format)
	}
}

// ReadFile decodes the document stored at path, choosing the format from
// its extension.
func ReadFile(path string) (DeliveryNote, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DeliveryNote{}, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return DeliveryNote{}, err
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// WriteFile encodes n to path, choosing the format from its extension.
func WriteFile(path string, n DeliveryNote) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, n, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
