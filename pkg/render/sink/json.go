package sink

import (
	"encoding/json"

	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

type jsonOutput struct {
	WidthPx  int `json:"widthPx"`
	HeightPx int `json:"heightPx"`
	layout.Page
}

// RenderJSON exports the page tree as a pretty-printed JSON document, with
// the page size in CSS pixels. The logo image itself is not included, only
// its state and reference.
func RenderJSON(p layout.Page) ([]byte, error) {
	w, h := PageSize(p)
	data, err := json.MarshalIndent(jsonOutput{WidthPx: w, HeightPx: h, Page: p}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
