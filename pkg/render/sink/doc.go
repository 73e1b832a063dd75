// Package sink turns laid-out pages into output formats.
//
// Every sink takes a [layout.Page]; none of them decide what the page says.
//
//   - [Rasterize], [RenderPNG], [RenderJPEG]: the printed page as pixels,
//     painted with fogleman/gg and the Go fonts at a pixel ratio of at least
//     [MinPixelRatio] (96 CSS pixels per inch, so A4 is 794 pixels wide at
//     ratio 1). The background is opaque white.
//   - [RenderJSON]: the page tree, for debugging and the HTTP preview API.
//   - [RenderText]: a terminal preview drawn with lipgloss.
//   - [RenderXLSX]: a spreadsheet of the delivery note.
//
// [Surface] wraps a page so that exporters can capture it on demand.
//
// # Page height
//
// The raster is always one page wide. Its height is the A4 height, or the
// content height when the content does not fit; nothing is split across
// pages. The footer sits at the bottom of the page when there is room.
package sink
