package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/observability"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// ErrorNotice is the message shown to the user when an export fails.
const ErrorNotice = "Une erreur est survenue lors de la génération du PDF. Veuillez réessayer."

// ErrBusy is returned when an export is triggered while another one runs.
var ErrBusy = derrors.New(derrors.ErrCodeBusy, "an export is already in progress")

// Surface is a rendered page that can be captured as a raster image.
type Surface interface {
	Capture(ctx context.Context, pixelRatio float64) (image.Image, error)
}

// SurfaceFunc adapts a function to [Surface].
type SurfaceFunc func(ctx context.Context, pixelRatio float64) (image.Image, error)

// Capture calls f.
func (f SurfaceFunc) Capture(ctx context.Context, pixelRatio float64) (image.Image, error) {
	return f(ctx, pixelRatio)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(msg string)

// Notify calls f.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// Result describes a saved export.
type Result struct {
	Filename     string
	Size         int
	PageHeightMM float64
	// Fallback reports that the capture's dimensions could not be read and
	// the page height defaulted to A4.
	Fallback bool
	Duration time.Duration
}

// Exporter runs exports one at a time.
type Exporter struct {
	busy       atomic.Bool
	notifier   Notifier
	logger     *log.Logger
	pixelRatio float64
	quality    int
}

// Option configures an [Exporter].
type Option func(*Exporter)

// WithNotifier sets the notifier that receives [ErrorNotice] on failure.
func WithNotifier(n Notifier) Option {
	return func(e *Exporter) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPixelRatio sets the capture resolution multiplier. Values below
// [sink.MinPixelRatio] are raised to it.
func WithPixelRatio(r float64) Option {
	return func(e *Exporter) { e.pixelRatio = sink.ClampPixelRatio(r) }
}

// WithJPEGQuality sets the quality of the embedded capture (1..100).
func WithJPEGQuality(q int) Option {
	return func(e *Exporter) {
		if q >= 1 && q <= 100 {
			e.quality = q
		}
	}
}

// New returns an idle exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		notifier:   NotifierFunc(func(string) {}),
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		pixelRatio: sink.DefaultPixelRatio,
		quality:    sink.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether an export is in flight.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Export captures s, builds the PDF and saves it as Filename(number).
//
// A nil surface or saver returns an error without notice. A trigger while
// busy returns [ErrBusy]. Any other failure notifies the user once and
// returns a coded error; the busy flag is cleared on every path.
func (e *Exporter) Export(ctx context.Context, s Surface, number string, saver Saver) (Result, error) {
	if s == nil {
		return Result{}, derrors.New(derrors.ErrCodeInvalidInput, "no rendered page to export")
	}
	if saver == nil {
		return Result{}, derrors.New(derrors.ErrCodeInvalidInput, "no saver configured")
	}

	hooks := observability.Export()
	if !e.busy.CompareAndSwap(false, true) {
		hooks.OnExportBusy(ctx, number)
		e.logger.Debug("export ignored, already running", "number", number)
		return Result{}, ErrBusy
	}
	defer e.busy.Store(false)

	start := time.Now()
	filename := Filename(number)
	hooks.OnExportStart(ctx, number)

	res, err := e.run(ctx, s, filename, saver)
	res.Duration = time.Since(start)
	hooks.OnExportComplete(ctx, filename, res.Size, res.Duration, err)

	if err != nil {
		e.logger.Error("export failed", "file", filename, "err", err)
		e.notifier.Notify(ErrorNotice)
		return Result{}, err
	}
	e.logger.Info("exported", "file", filename, "bytes", res.Size,
		"height_mm", res.PageHeightMM, "duration", res.Duration)
	return res, nil
}

func (e *Exporter) run(ctx context.Context, s Surface, filename string, saver Saver) (Result, error) {
	img, err := s.Capture(ctx, e.pixelRatio)
	if err == nil && img == nil {
		err = derrors.New(derrors.ErrCodeCapture, "capture returned no image")
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return Result{}, derrors.Wrap(derrors.ErrCodeCapture, err, "capture page")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: e.quality}); err != nil {
		return Result{}, derrors.Wrap(derrors.ErrCodeEncode, err, "encode capture")
	}

	height, ok := PageHeightMM(buf.Bytes())
	if !ok {
		e.logger.Warn("capture size unreadable, using A4 height", "file", filename)
	}
	pdf, err := buildPDF(buf.Bytes(), height)
	if err != nil {
		return Result{}, derrors.Wrap(derrors.ErrCodeEncode, err, "build pdf")
	}

	if err := saver.Save(ctx, filename, pdf); err != nil {
		return Result{}, derrors.Wrap(derrors.ErrCodeSave, err, "save %s", filename)
	}
	return Result{
		Filename:     filename,
		Size:         len(pdf),
		PageHeightMM: height,
		Fallback:     !ok,
	}, nil
}

// flatten composites img over opaque white.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}
