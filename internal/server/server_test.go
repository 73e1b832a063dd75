package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/pipeline"
	"github.com/matzehuels/deliverynote/pkg/shell"
)

func newTestServer(t *testing.T, opts ...shell.Option) (*httptest.Server, *shell.Shell) {
	t.Helper()
	sh := shell.New(note.Default(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)), opts...)
	srv := httptest.NewServer(New(sh, nil, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, sh
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[map[string]string](t, resp)["status"]; got != "ok" {
		t.Errorf("status = %q", got)
	}
}

func TestGetAndPatchNote(t *testing.T) {
	srv, sh := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/note", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get(revisionHeader) == "" {
		t.Fatalf("GET: status %d, revision %q", resp.StatusCode, resp.Header.Get(revisionHeader))
	}
	if n := decode[note.DeliveryNote](t, resp); n.Number != "BL-2025-001" {
		t.Errorf("number = %q", n.Number)
	}

	resp = do(t, http.MethodPatch, srv.URL+"/api/note", `{"field":"vatRate","value":"21"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH: status %d", resp.StatusCode)
	}
	if n := decode[note.DeliveryNote](t, resp); n.VATRate != 21 {
		t.Errorf("vatRate = %v", n.VATRate)
	}
	if sh.Note().VATRate != 21 {
		t.Error("shell not updated")
	}
}

func TestPatchNoteErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name, body string
		code       string
	}{
		{"unknown field", `{"field":"client.fax","value":"x"}`, "INVALID_FIELD"},
		{"bad json", `{"field":`, "INVALID_INPUT"},
		{"empty", ``, "INVALID_INPUT"},
		{"extra key", `{"field":"number","value":"1","x":1}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPatch, srv.URL+"/api/note", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := decode[ErrorResponse](t, resp).Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestPutNote(t *testing.T) {
	srv, sh := newTestServer(t)
	resp := do(t, http.MethodPut, srv.URL+"/api/note",
		`{"number":"BL-9","items":[{"id":"a","description":"Pain","quantity":2,"unitPrice":1.5}],"vatRate":6}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := sh.Note(); n.Number != "BL-9" || len(n.Items) != 1 {
		t.Errorf("note = %+v", n)
	}
}

func TestItems(t *testing.T) {
	srv, sh := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/note/items", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST: status %d", resp.StatusCode)
	}
	added := decode[AddItemResponse](t, resp)
	if added.ID == "" || added.Item.Quantity != 1 {
		t.Fatalf("added = %+v", added)
	}

	resp = do(t, http.MethodPatch, srv.URL+"/api/note/items/"+added.ID, `{"field":"unitPrice","value":"4,20"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH item: status %d", resp.StatusCode)
	}
	if it := decode[note.LineItem](t, resp); it.UnitPrice != 4.2 {
		t.Errorf("unitPrice = %v", it.UnitPrice)
	}

	if resp := do(t, http.MethodPatch, srv.URL+"/api/note/items/"+added.ID, `{"field":"colour","value":"x"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad item field: status %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPatch, srv.URL+"/api/note/items/missing", `{"field":"quantity","value":"2"}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing item: status %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/api/note/items/"+added.ID, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE: status %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, srv.URL+"/api/note/items/"+added.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE: status %d", resp.StatusCode)
	}
	if len(sh.Note().Items) != 1 {
		t.Errorf("items = %d, want 1", len(sh.Note().Items))
	}
}

func TestTotals(t *testing.T) {
	srv, _ := newTestServer(t)
	got := decode[TotalsResponse](t, do(t, http.MethodGet, srv.URL+"/api/note/totals", ""))
	if got.SubTotal != 15.99 || got.Formatted.VATAmount != "0.96" || got.Formatted.TotalWithVAT != "16.95" {
		t.Errorf("totals = %+v", got)
	}
}

func TestLayout(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/note/layout", "")
	page := decode[map[string]any](t, resp)
	if page["widthPx"] != float64(794) {
		t.Errorf("widthPx = %v, want 794", page["widthPx"])
	}
}

func TestPreview(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/note/preview.png", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	cfg, err := png.DecodeConfig(resp.Body)
	if err != nil || cfg.Width != 1588 {
		t.Errorf("preview %dx%d, %v", cfg.Width, cfg.Height, err)
	}

	if resp := do(t, http.MethodGet, srv.URL+"/api/note/preview.png?ratio=1", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("ratio=1: status %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/api/note/preview.png?ratio=x", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("ratio=x: status %d", resp.StatusCode)
	}
}

func TestSpreadsheet(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/note/export.xlsx", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Bon_Livraison_BL-2025-001.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/note/export", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Bon_Livraison_BL-2025-001.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestExportBusyAndFailure(t *testing.T) {
	var mu sync.Mutex
	var notices []string
	started := make(chan struct{})
	release := make(chan struct{})

	exp := export.New(export.WithNotifier(export.NotifierFunc(func(m string) {
		mu.Lock()
		notices = append(notices, m)
		mu.Unlock()
	})))
	sh := shell.New(note.Default(time.Now()), shell.WithExporter(exp))
	srv := httptest.NewServer(New(sh, pipeline.NewRunner(nil, nil, nil), nil).Handler())
	defer srv.Close()

	// Hold the exporter busy with a direct export on a blocking surface.
	done := make(chan error, 1)
	go func() {
		_, err := exp.Export(context.Background(), export.SurfaceFunc(func(context.Context, float64) (image.Image, error) {
			close(started)
			<-release
			return nil, io.ErrUnexpectedEOF
		}), "x", export.SaverFunc(func(context.Context, string, []byte) error { return nil }))
		done <- err
	}()
	<-started

	resp := do(t, http.MethodPost, srv.URL+"/api/note/export", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("busy export: status %d, want 409", resp.StatusCode)
	}

	close(release)
	if err := <-done; err == nil {
		t.Fatal("blocking export should fail")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(notices) != 1 || notices[0] != export.ErrorNotice {
		t.Errorf("notices = %q", notices)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	if resp := do(t, http.MethodGet, srv.URL+"/nope", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, srv.URL+"/api/note", ""); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
