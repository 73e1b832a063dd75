// Package layout turns a delivery note into the content of a printable page.
//
// [Build] is a pure function from a [note.DeliveryNote] to a [Page]: a tree of
// sections in display order (header, recipient, goods, totals, observations,
// signatures, footer) carrying every printed string already formatted. Sinks
// in the render/sink package decide where things go and how they look.
//
//	page := layout.Build(n, layout.WithLogo(img))
//	png, err := sink.RenderPNG(page, sink.WithPixelRatio(2))
//
// The goods table always has at least [MinItemRows] rows; amounts are fixed
// to two decimals and quantities use their shortest form. The logo slot is in
// one of three states ([LogoNone], [LogoReady], [LogoUnavailable]); an
// unavailable logo never changes the rest of the page.
package layout
