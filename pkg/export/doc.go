// Package export turns a rendered delivery note into a downloadable PDF.
//
// An [Exporter] captures a [Surface] as a raster, flattens it onto white,
// encodes it as JPEG and embeds it as the only content of a single-page PDF
// that is 210 mm wide and as tall as the capture's aspect ratio requires.
// The result is handed to a [Saver] under the name [Filename] returns.
//
// # Busy flag
//
// At most one export runs per Exporter. A trigger that arrives while another
// export is in flight returns [ErrBusy] at once: nothing is captured, saved
// or shown to the user.
//
// # Failures
//
// Capture, encoding and save failures abort the export. No file is saved,
// the [Notifier] receives [ErrorNotice] exactly once, and a coded error is
// returned. A capture whose dimensions cannot be read does not abort: the
// page height falls back to [A4HeightMM].
//
//	exp := export.New(export.WithNotifier(export.NotifierFunc(showAlert)))
//	res, err := exp.Export(ctx, sink.NewSurface(page), n.Number, export.FileSaver{Dir: "out"})
package export
