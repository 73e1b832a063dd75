package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/deliverynote/pkg/buildinfo"
	"github.com/matzehuels/deliverynote/pkg/editor"
	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/pipeline"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// revisionHeader carries the document revision on every note response.
const revisionHeader = "X-Note-Revision"

// TotalsResponse is the body of GET /api/note/totals.
type TotalsResponse struct {
	note.Totals
	Formatted note.FormattedTotals `json:"formatted"`
}

// AddItemResponse is the body of POST /api/note/items.
type AddItemResponse struct {
	ID   string        `json:"id"`
	Item note.LineItem `json:"item"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) writeNote(w http.ResponseWriter, status int) {
	n, rev := s.shell.Snapshot()
	w.Header().Set(revisionHeader, strconv.FormatUint(rev, 10))
	writeJSON(w, status, n)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	s.writeNote(w, http.StatusOK)
}

func (s *Server) putNote(w http.ResponseWriter, r *http.Request) {
	var n note.DeliveryNote
	if err := decodeJSON(w, r, &n); err != nil {
		writeErr(w, err)
		return
	}
	s.shell.Replace(n)
	s.writeNote(w, http.StatusOK)
}

func (s *Server) patchNote(w http.ResponseWriter, r *http.Request) {
	var e editor.Edit
	if err := decodeJSON(w, r, &e); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.shell.Apply(e); err != nil {
		writeErr(w, err)
		return
	}
	s.writeNote(w, http.StatusOK)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	id := s.shell.AddItem()
	item, _ := s.shell.Note().Item(id)
	w.Header().Set("Location", "/api/note/items/"+id)
	writeJSON(w, http.StatusCreated, AddItemResponse{ID: id, Item: item})
}

// itemEdit is the body of PATCH /api/note/items/{id}.
type itemEdit struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var e itemEdit
	if err := decodeJSON(w, r, &e); err != nil {
		writeErr(w, err)
		return
	}
	f, err := editor.ParseItemField(e.Field)
	if err != nil {
		writeErr(w, err)
		return
	}
	found, err := s.shell.UpdateItem(id, f, e.Value)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "item not found", derrors.ErrCodeNotFound)
		return
	}
	item, _ := s.shell.Note().Item(id)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	if !s.shell.RemoveItem(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "item not found", derrors.ErrCodeNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) totals(w http.ResponseWriter, r *http.Request) {
	t := s.shell.Totals()
	writeJSON(w, http.StatusOK, TotalsResponse{Totals: t, Formatted: t.Formatted()})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	data, err := sink.RenderJSON(s.shell.Page(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{Formats: []string{pipeline.FormatPNG}}
	if v := r.URL.Query().Get("ratio"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ratio", derrors.ErrCodeInvalidInput)
			return
		}
		opts.PixelRatio = ratio
	}
	data, _, err := s.render(r.Context(), opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeFile(w, pipeline.ContentTypes[pipeline.FormatPNG], "", data)
}

func (s *Server) spreadsheet(w http.ResponseWriter, r *http.Request) {
	data, n, err := s.render(r.Context(), pipeline.Options{Formats: []string{pipeline.FormatXLSX}})
	if err != nil {
		writeErr(w, err)
		return
	}
	name := strings.TrimSuffix(export.Filename(n.Number), ".pdf") + pipeline.Extension(pipeline.FormatXLSX)
	writeFile(w, pipeline.ContentTypes[pipeline.FormatXLSX], name, data)
}

// render runs the pipeline for the single format in opts.
func (s *Server) render(ctx context.Context, opts pipeline.Options) ([]byte, note.DeliveryNote, error) {
	n := s.shell.Note()
	res, err := s.runner.Execute(ctx, n, opts)
	if err != nil {
		return nil, n, err
	}
	return res.Artifacts[opts.Formats[0]], n, nil
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var name string
	var pdf []byte
	saver := export.SaverFunc(func(_ context.Context, filename string, data []byte) error {
		name, pdf = filename, data
		return nil
	})

	_, err := s.shell.Export(r.Context(), saver)
	switch {
	case err == nil:
		writeFile(w, pipeline.ContentTypes[pipeline.FormatPDF], name, pdf)
	case errors.Is(err, export.ErrBusy):
		writeError(w, http.StatusConflict, "export already in progress", derrors.ErrCodeBusy)
	case derrors.Is(err, derrors.ErrCodeInvalidInput):
		writeErr(w, err)
	default:
		writeError(w, http.StatusInternalServerError, export.ErrorNotice, derrors.GetCode(err))
	}
}
