package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// blankSurface captures a transparent image of the given size.
func blankSurface(w, h int) Surface {
	return SurfaceFunc(func(context.Context, float64) (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
	})
}

// memSaver records every save.
type memSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	calls int
}

func (s *memSaver) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string][]byte{}
	}
	s.calls++
	s.files[name] = data
	return nil
}

func TestExport(t *testing.T) {
	var notices []string
	exp := New(WithNotifier(NotifierFunc(func(m string) { notices = append(notices, m) })))
	saver := &memSaver{}

	res, err := exp.Export(context.Background(), blankSurface(420, 840), "BL-2025-001", saver)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Filename != "Bon_Livraison_BL-2025-001.pdf" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.PageHeightMM != 420 || res.Fallback {
		t.Errorf("PageHeightMM = %v, fallback %v; want 420", res.PageHeightMM, res.Fallback)
	}
	data := saver.files[res.Filename]
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("saved data is not a PDF: %q", data[:min(8, len(data))])
	}
	if res.Size != len(data) {
		t.Errorf("Size = %d, saved %d bytes", res.Size, len(data))
	}
	if len(notices) != 0 {
		t.Errorf("notices on success: %v", notices)
	}
	if exp.Busy() {
		t.Error("exporter still busy after success")
	}
}

func TestExportRenderedPage(t *testing.T) {
	n := note.Default(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	surface := sink.NewSurface(layout.Build(n))
	saver := &memSaver{}

	res, err := New().Export(context.Background(), surface, n.Number, saver)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.PageHeightMM < A4HeightMM-0.5 {
		t.Errorf("page shorter than A4: %v mm", res.PageHeightMM)
	}
	if saver.calls != 1 {
		t.Errorf("saves = %d, want 1", saver.calls)
	}
}

func TestExportConcurrentTriggers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	surface := SurfaceFunc(func(context.Context, float64) (image.Image, error) {
		close(started)
		<-release
		return image.NewRGBA(image.Rect(0, 0, 100, 141)), nil
	})

	var notices atomic.Int32
	exp := New(WithNotifier(NotifierFunc(func(string) { notices.Add(1) })))
	saver := &memSaver{}

	done := make(chan error, 1)
	go func() {
		_, err := exp.Export(context.Background(), surface, "1", saver)
		done <- err
	}()
	<-started

	if !exp.Busy() {
		t.Fatal("exporter should be busy while capturing")
	}
	_, err := exp.Export(context.Background(), surface, "1", saver)
	if !errors.Is(err, ErrBusy) || !derrors.Is(err, derrors.ErrCodeBusy) {
		t.Fatalf("second trigger: %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}
	if saver.calls != 1 {
		t.Errorf("saves = %d, want exactly 1", saver.calls)
	}
	if notices.Load() != 0 {
		t.Errorf("busy trigger produced %d notices", notices.Load())
	}
	if exp.Busy() {
		t.Error("exporter still busy")
	}
}

func TestExportFailures(t *testing.T) {
	captureErr := SurfaceFunc(func(context.Context, float64) (image.Image, error) {
		return nil, errors.New("canvas tainted")
	})
	saveErr := SaverFunc(func(context.Context, string, []byte) error {
		return errors.New("disk full")
	})
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		surface Surface
		saver   Saver
		code    derrors.Code
	}{
		{"capture", context.Background(), captureErr, &memSaver{}, derrors.ErrCodeCapture},
		{"nil image", context.Background(), SurfaceFunc(func(context.Context, float64) (image.Image, error) { return nil, nil }), &memSaver{}, derrors.ErrCodeCapture},
		{"canceled", canceled, blankSurface(10, 10), &memSaver{}, derrors.ErrCodeCapture},
		{"save", context.Background(), blankSurface(10, 10), saveErr, derrors.ErrCodeSave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var notices []string
			exp := New(WithNotifier(NotifierFunc(func(m string) { notices = append(notices, m) })))

			_, err := exp.Export(tt.ctx, tt.surface, "X", tt.saver)
			if !derrors.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if len(notices) != 1 || notices[0] != ErrorNotice {
				t.Errorf("notices = %q, want exactly one ErrorNotice", notices)
			}
			if exp.Busy() {
				t.Error("busy flag not cleared")
			}
			if ms, ok := tt.saver.(*memSaver); ok && ms.calls != 0 {
				t.Errorf("saved %d files on failure", ms.calls)
			}
		})
	}
}

func TestExportWithoutSurface(t *testing.T) {
	notified := false
	exp := New(WithNotifier(NotifierFunc(func(string) { notified = true })))
	if _, err := exp.Export(context.Background(), nil, "1", &memSaver{}); err == nil {
		t.Fatal("expected an error for a nil surface")
	}
	if notified || exp.Busy() {
		t.Error("nil surface should neither notify nor set busy")
	}
}

func TestExportUnsafeNumber(t *testing.T) {
	var notices int
	exp := New(WithNotifier(NotifierFunc(func(string) { notices++ })))
	dir := t.TempDir()

	_, err := exp.Export(context.Background(), blankSurface(10, 10), "BL/2025/001", FileSaver{Dir: dir})
	if !derrors.Is(err, derrors.ErrCodeSave) {
		t.Fatalf("err = %v, want save failure", err)
	}
	if notices != 1 {
		t.Errorf("notices = %d, want 1", notices)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files left in output dir: %v", entries)
	}
}

func TestFlattenIsOpaqueWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	src.Set(6, 6, color.NRGBA{R: 255, A: 255})

	out := flatten(src)
	if out.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if c := out.RGBAAt(0, 0); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("transparent pixel = %v, want white", c)
	}
	if c := out.RGBAAt(1, 1); c != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("opaque pixel = %v, want red", c)
	}
}

func TestPageHeightMM(t *testing.T) {
	encode := func(w, h int) []byte {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
		want float64
		ok   bool
	}{
		{"a4", encode(1588, 2246), 2246 * 210.0 / 1588, true},
		{"square", encode(100, 100), 210, true},
		{"tall", encode(100, 300), 630, true},
		{"garbage", []byte("not an image"), A4HeightMM, false},
		{"empty", nil, A4HeightMM, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PageHeightMM(tt.data)
			if got != tt.want || ok != tt.ok {
				t.Errorf("PageHeightMM = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEncodePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 400)), nil); err != nil {
		t.Fatal(err)
	}
	pdf, height, err := EncodePDF(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if height != 420 {
		t.Errorf("height = %v, want 420", height)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) || !bytes.Contains(pdf, []byte("/DCTDecode")) {
		t.Error("output is not a PDF embedding a JPEG")
	}

	if _, _, err := EncodePDF([]byte("junk")); err == nil {
		t.Error("EncodePDF(junk) should fail")
	}
}

func TestFileSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := FileSaver{Dir: dir}

	if err := s.Save(context.Background(), "Bon_Livraison_1.pdf", []byte("%PDF-1.3")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Bon_Livraison_1.pdf"))
	if err != nil || string(data) != "%PDF-1.3" {
		t.Fatalf("read back %q, %v", data, err)
	}

	for _, name := range []string{"", "..", "a/b.pdf", `a\b.pdf`} {
		if err := s.Save(context.Background(), name, nil); !derrors.Is(err, derrors.ErrCodeInvalidPath) {
			t.Errorf("Save(%q) = %v, want INVALID_PATH", name, err)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".export-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func ExampleFilename() {
	fmt.Println(Filename("BL-2025-001"))
	// Output: Bon_Livraison_BL-2025-001.pdf
}
