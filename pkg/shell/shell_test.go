package shell

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/deliverynote/pkg/editor"
	derrors "github.com/matzehuels/deliverynote/pkg/errors"
	"github.com/matzehuels/deliverynote/pkg/export"
	"github.com/matzehuels/deliverynote/pkg/logo"
	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

func newTestShell(opts ...Option) *Shell {
	return New(note.Default(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)), opts...)
}

func TestSetAndRevision(t *testing.T) {
	s := newTestShell()
	rev := s.Revision()

	if err := s.Set("client.name", "Clinique Saint-Jean"); err != nil {
		t.Fatal(err)
	}
	if got := s.Note().Client.Name; got != "Clinique Saint-Jean" {
		t.Errorf("client.name = %q", got)
	}
	if s.Revision() != rev+1 {
		t.Errorf("revision = %d, want %d", s.Revision(), rev+1)
	}

	if err := s.Set("client.fax", "x"); !derrors.Is(err, derrors.ErrCodeInvalidField) {
		t.Errorf("unknown path: %v", err)
	}
	if s.Revision() != rev+1 {
		t.Error("rejected edit changed the revision")
	}
}

func TestItems(t *testing.T) {
	s := newTestShell()
	before := len(s.Note().Items)

	id := s.AddItem()
	if id == "" || len(s.Note().Items) != before+1 {
		t.Fatalf("AddItem: id %q, %d items", id, len(s.Note().Items))
	}

	found, err := s.UpdateItem(id, editor.ItemUnitPrice, "12,50")
	if err != nil || !found {
		t.Fatalf("UpdateItem = %v, %v", found, err)
	}
	if it, _ := s.Note().Item(id); it.UnitPrice != 12.5 {
		t.Errorf("unitPrice = %v", it.UnitPrice)
	}

	rev := s.Revision()
	if found, err := s.UpdateItem("nope", editor.ItemQuantity, "3"); found || err != nil {
		t.Errorf("UpdateItem(miss) = %v, %v", found, err)
	}
	if s.RemoveItem("nope") {
		t.Error("RemoveItem(miss) reported a removal")
	}
	if s.Revision() != rev {
		t.Error("no-op operations changed the revision")
	}

	if !s.RemoveItem(id) || len(s.Note().Items) != before {
		t.Error("RemoveItem did not remove the item")
	}
}

func TestNoteIsACopy(t *testing.T) {
	s := newTestShell()
	n := s.Note()
	n.Items[0].Description = "changed"
	n.Company.Name = "changed"
	if got := s.Note(); got.Items[0].Description == "changed" || got.Company.Name == "changed" {
		t.Error("caller mutation reached the shell")
	}
}

func TestReplaceNormalizes(t *testing.T) {
	s := newTestShell()
	s.Replace(note.DeliveryNote{Items: []note.LineItem{{ID: "a"}, {ID: "a"}}})
	items := s.Note().Items
	if items[0].ID == items[1].ID {
		t.Error("Replace kept duplicate ids")
	}
}

func TestTotalsAndPage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s := newTestShell(WithLogoSource(logo.Static{"https://example.com/logo.png": img}))

	if got := s.Totals().Formatted().TotalWithVAT; got != "16.95" {
		t.Errorf("total = %s, want 16.95", got)
	}

	if st := s.Page(context.Background()).Header.Logo.State; st != layout.LogoUnavailable {
		t.Errorf("logo state = %v, want unavailable", st)
	}
	_ = s.Set("company.logo", "")
	if st := s.Page(context.Background()).Header.Logo.State; st != layout.LogoNone {
		t.Errorf("logo state = %v, want none", st)
	}
	_ = s.Set("company.logo", "https://example.com/logo.png")
	if st := s.Page(context.Background()).Header.Logo.State; st != layout.LogoReady {
		t.Errorf("logo state = %v, want ready", st)
	}
}

func TestExport(t *testing.T) {
	s := newTestShell()
	_ = s.Set("number", "BL-42")

	var saved string
	saver := export.SaverFunc(func(_ context.Context, name string, _ []byte) error {
		saved = name
		return nil
	})
	res, err := s.Export(context.Background(), saver)
	if err != nil {
		t.Fatal(err)
	}
	if saved != "Bon_Livraison_BL-42.pdf" || res.Filename != saved {
		t.Errorf("saved %q, result %q", saved, res.Filename)
	}
	if s.Busy() {
		t.Error("busy after export")
	}
}

func TestConcurrentEdits(t *testing.T) {
	s := newTestShell()
	rev := s.Revision()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddItem()
		}()
		go func() {
			defer wg.Done()
			_ = s.Page(context.Background())
		}()
	}
	wg.Wait()

	if got := len(s.Note().Items); got != 21 {
		t.Errorf("items = %d, want 21", got)
	}
	if s.Revision() != rev+20 {
		t.Errorf("revision = %d, want %d", s.Revision(), rev+20)
	}
}
