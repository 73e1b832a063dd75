// Package shell owns the delivery note being edited.
//
// A [Shell] holds the single current document and routes every change
// through the editor reducer, so form fields, HTTP handlers and the export
// trigger all see one consistent value. Readers get copies; [Shell.Revision]
// increases on every accepted change and lets a view tell whether it must
// redraw.
package shell

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deliverynote/pkg/editor"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
	"github.com/matzehuels/deliverynote/pkg/render/sink"
)

// Shell is safe for concurrent use.
type Shell struct {
	mu   sync.RWMutex
	note note.DeliveryNote
	rev  uint64

	logos    logo.Source
	exporter *export.Exporter
	logger   *log.Logger
}

// Option configures a [Shell].
type Option func(*Shell)

// WithLogoSource sets how the company logo is resolved for previews and
// exports. The default never resolves one.
func WithLogoSource(src logo.Source) Option {
	return func(s *Shell) {
		if src != nil {
			s.logos = src
		}
	}
}

// WithExporter sets the exporter used by [Shell.Export].
func WithExporter(e *export.Exporter) Option {
	return func(s *Shell) {
		if e != nil {
			s.exporter = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a shell editing a normalized copy of n.
func New(n note.DeliveryNote, opts ...Option) *Shell {
	s := &Shell{
		note:   note.Normalize(n),
		logos:  logo.None{},
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.New(export.WithLogger(s.logger))
	}
	return s
}

// Note returns a copy of the current document.
func (s *Shell) Note() note.DeliveryNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return note.Clone(s.note)
}

// Revision returns a counter that grows with every accepted change.
func (s *Shell) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Snapshot returns the document together with its revision.
func (s *Shell) Snapshot() (note.DeliveryNote, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return note.Clone(s.note), s.rev
}

// Replace swaps in a whole new document, normalized.
func (s *Shell) Replace(n note.DeliveryNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.note = note.Normalize(n)
	s.rev++
}

// Apply runs one edit command.
func (s *Shell) Apply(e editor.Edit) error {
	return s.update(func(n note.DeliveryNote) (note.DeliveryNote, bool, error) {
		out, err := editor.Apply(n, e)
		return out, err == nil, err
	})
}

// Set assigns value to the field at the dot-delimited path.
func (s *Shell) Set(path, value string) error {
	f, err := editor.ParseField(path)
	if err != nil {
		return err
	}
	return s.Apply(editor.Edit{Field: f, Value: value})
}

// AddItem appends an empty line item and returns its id.
func (s *Shell) AddItem() string {
	var id string
	_ = s.update(func(n note.DeliveryNote) (note.DeliveryNote, bool, error) {
		var out note.DeliveryNote
		out, id = editor.AddItem(n)
		return out, true, nil
	})
	return id
}

// RemoveItem deletes the item with the given id. It reports whether an item
// was removed.
func (s *Shell) RemoveItem(id string) bool {
	var removed bool
	_ = s.update(func(n note.DeliveryNote) (note.DeliveryNote, bool, error) {
		removed = n.IndexOf(id) >= 0
		return editor.RemoveItem(n, id), removed, nil
	})
	return removed
}

// UpdateItem sets one field of the item with the given id. An unknown id is
// not an error and changes nothing; found reports whether the item exists.
func (s *Shell) UpdateItem(id string, f editor.ItemField, value string) (found bool, err error) {
	err = s.update(func(n note.DeliveryNote) (note.DeliveryNote, bool, error) {
		out, err := editor.UpdateItem(n, id, f, value)
		found = err == nil && n.IndexOf(id) >= 0
		return out, found, err
	})
	return found, err
}

// Totals computes the totals of the current document.
func (s *Shell) Totals() note.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return note.ComputeTotals(s.note)
}

// Page lays out the current document with its logo resolved.
func (s *Shell) Page(ctx context.Context) layout.Page {
	return logo.Layout(ctx, s.logos, s.Note())
}

// Export renders the current document and saves it as a PDF. The document
// is read once, so edits made while the export runs do not leak into it.
func (s *Shell) Export(ctx context.Context, saver export.Saver) (export.Result, error) {
	n := s.Note()
	page := logo.Layout(ctx, s.logos, n)
	return s.exporter.Export(ctx, sink.NewSurface(page), n.Number, saver)
}

// Busy reports whether an export is running.
func (s *Shell) Busy() bool { return s.exporter.Busy() }

// update applies fn to the document under the write lock. The result is
// stored and the revision bumped only when fn reports a change.
func (s *Shell) update(fn func(note.DeliveryNote) (note.DeliveryNote, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, changed, err := fn(s.note)
	if err != nil {
		return err
	}
	if changed {
		s.note = out
		s.rev++
	}
	return nil
}
