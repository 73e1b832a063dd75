// Package render turns a delivery note into something a person can read.
//
// # Overview
//
// Rendering happens in two steps:
//
//   - [layout] builds a [layout.Page]: every printed text, table row and
//     total of the document, in print order, with no pixels involved.
//   - [sink] draws a page: a raster at a pixel ratio (PNG, JPEG, the PDF
//     capture), a terminal preview, JSON, or an XLSX workbook.
//
// The page is derived from the document on every render; nothing is cached
// between renders here. Callers that want caching go through the pipeline.
//
//	page := layout.Build(n)
//	png, err := sink.RenderPNG(ctx, page, sink.WithPixelRatio(2))
//	text := sink.RenderText(page, 80)
package render
