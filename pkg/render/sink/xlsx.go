package sink

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/deliverynote/pkg/note"
	"github.com/matzehuels/deliverynote/pkg/render/layout"
)

// XLSXSheet is the name of the worksheet written by [RenderXLSX].
const XLSXSheet = "Bon de livraison"

// RenderXLSX writes the delivery note as a single-sheet workbook: document
// fields, issuer and recipient, the goods with unit prices and line totals,
// then the totals. Amounts are stored as numbers with a two-decimal format;
// texts come from the page so both outputs print the same labels.
func RenderXLSX(n note.DeliveryNote, p layout.Page) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	w := &xlsxWriter{f: f, sheet: XLSXSheet, row: 1}
	if err := w.styles(); err != nil {
		return nil, err
	}

	w.set("A", p.Header.Title, w.title)
	w.row += 2
	for _, fld := range p.Header.Fields {
		w.pair(fld.Label, fld.Value)
	}
	w.row++

	w.set("A", p.Header.Company.Name, w.bold)
	w.row++
	for _, line := range p.Header.Company.AddressLines {
		w.set("A", line, 0)
		w.row++
	}
	w.set("A", p.Header.Company.VATLine, 0)
	w.row += 2

	w.set("A", p.Recipient.Title, w.heading)
	w.row++
	for _, r := range p.Recipient.Rows {
		w.pair(r.Label, strings.Join(r.Lines, "\n"))
	}
	w.row++

	w.set("A", p.Items.Title, w.heading)
	w.row++
	for i, h := range []string{"Description", "Quantité", "Prix unitaire (€)", "Total (€)"} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.set(col, h, w.header)
	}
	w.row++
	for _, it := range n.Items {
		w.set("A", it.Description, 0)
		w.set("B", it.Quantity, 0)
		w.set("C", it.UnitPrice, w.amount)
		w.set("D", note.LineTotal(it), w.amount)
		w.row++
	}
	w.row++

	t := note.ComputeTotals(n)
	amounts := []float64{t.SubTotal, t.VATAmount, t.TotalWithVAT}
	for i, r := range p.Totals.Rows {
		w.set("C", r.Label, w.bold)
		if i < len(amounts) {
			w.set("D", amounts[i], w.amountBold)
		}
		w.row++
	}
	w.row++

	w.set("A", p.Observations.Title, w.heading)
	w.row++
	w.set("A", strings.Join(p.Observations.Lines, "\n"), 0)
	w.row += 2

	w.set("A", p.Signatures.DeliveryPerson.Heading, w.heading)
	w.row++
	for _, fld := range p.Signatures.DeliveryPerson.Fields {
		w.pair(fld.Label, fld.Value)
	}
	w.pair(p.Footer.Label, p.Footer.Value)

	if w.err != nil {
		return nil, w.err
	}
	if err := f.SetColWidth(XLSXSheet, "A", "A", 48); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(XLSXSheet, "B", "D", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type xlsxWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error

	title, heading, header, bold, amount, amountBold int
}

func (w *xlsxWriter) styles() error {
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&w.heading, &excelize.Style{Font: &excelize.Font{Bold: true, Color: "2563EB"}}},
		{&w.header, &excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E3A8A"}},
		}},
		{&w.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&w.amount, &excelize.Style{NumFmt: 2}},
		{&w.amountBold, &excelize.Style{NumFmt: 2, Font: &excelize.Font{Bold: true}}},
	}
	for _, d := range defs {
		id, err := w.f.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

// set writes value to column col of the current row. A zero style leaves
// the default.
func (w *xlsxWriter) set(col string, value any, style int) {
	if w.err != nil {
		return
	}
	cell := fmt.Sprintf("%s%d", col, w.row)
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
}

// pair writes a bold label and its value, then moves to the next row.
func (w *xlsxWriter) pair(label, value string) {
	w.set("A", label, w.bold)
	w.set("B", value, 0)
	w.row++
}
