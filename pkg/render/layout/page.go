package layout

import "image"

// A4 portrait page size in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// MinItemRows is the minimum number of rows of the goods table. Shorter item
// lists are padded with blank rows.
const MinItemRows = 3

// Section names a block of the page, in the order the page shows them.
type Section string

// Page sections in display order.
const (
	SectionHeader       Section = "header"
	SectionRecipient    Section = "recipient"
	SectionItems        Section = "items"
	SectionTotals       Section = "totals"
	SectionObservations Section = "observations"
	SectionSignatures   Section = "signatures"
	SectionFooter       Section = "footer"
)

// Sections returns every section in display order.
func Sections() []Section {
	return []Section{
		SectionHeader,
		SectionRecipient,
		SectionItems,
		SectionTotals,
		SectionObservations,
		SectionSignatures,
		SectionFooter,
	}
}

// LogoState describes what the logo slot of the header shows.
type LogoState string

const (
	// LogoNone means no logo reference is set: a dashed placeholder box
	// labelled "LOGO" is shown.
	LogoNone LogoState = "none"
	// LogoReady means the referenced image is available and drawn.
	LogoReady LogoState = "ready"
	// LogoUnavailable means a reference is set but the image could not be
	// loaded: the slot stays empty and keeps its size.
	LogoUnavailable LogoState = "unavailable"
)

// Page is the fixed-layout content of one delivery note. It carries every
// string the page prints, already formatted; sinks only place them.
type Page struct {
	WidthMM  float64 `json:"widthMm"`
	HeightMM float64 `json:"heightMm"`

	Header       Header       `json:"header"`
	Recipient    KeyTable     `json:"recipient"`
	Items        ItemTable    `json:"items"`
	Totals       TotalsTable  `json:"totals"`
	Observations TextBlock    `json:"observations"`
	Signatures   Signatures   `json:"signatures"`
	Footer       LabeledValue `json:"footer"`
}

// Header holds the issuer block on the left and the document title block on
// the right.
type Header struct {
	Logo    Logo           `json:"logo"`
	Company CompanyBlock   `json:"company"`
	Title   string         `json:"title"`
	Fields  []LabeledValue `json:"fields"`
}

// Logo is the 128×128 px logo slot.
type Logo struct {
	State       LogoState   `json:"state"`
	Ref         string      `json:"ref,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Image       image.Image `json:"-"`
}

// CompanyBlock is the issuer name, address lines and VAT line.
type CompanyBlock struct {
	Name         string   `json:"name"`
	AddressLines []string `json:"addressLines"`
	VATLine      string   `json:"vatLine"`
}

// LabeledValue is a label printed next to a value, e.g. "Bon N° :" BL-1.
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
	// Mono marks values printed in a monospaced face.
	Mono bool `json:"mono,omitempty"`
}

// KeyTable is a titled two-column table with bold labels.
type KeyTable struct {
	Title string   `json:"title"`
	Rows  []KeyRow `json:"rows"`
}

// KeyRow is one row of a [KeyTable]. The value may span several lines.
type KeyRow struct {
	Label string   `json:"label"`
	Lines []string `json:"lines"`
}

// ItemTable is the goods table.
type ItemTable struct {
	Title   string    `json:"title"`
	Columns []Column  `json:"columns"`
	Rows    []ItemRow `json:"rows"`
}

// Align is the horizontal alignment of a table column.
type Align string

// Column alignments.
const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Column is one header cell of the goods table.
type Column struct {
	Label string `json:"label"`
	Align Align  `json:"align"`
	// Width is the fixed column width in CSS pixels; 0 takes the remaining
	// space.
	Width float64 `json:"width,omitempty"`
}

// ItemRow is one row of the goods table. Blank rows pad short tables.
type ItemRow struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Total       string `json:"total"`
	Blank       bool   `json:"blank,omitempty"`
}

// TotalsTable is the right-aligned totals table.
type TotalsTable struct {
	Rows []TotalRow `json:"rows"`
}

// Shade is the background tone of a totals row, from lightest to darkest.
type Shade int

// Totals row shades.
const (
	ShadeLight Shade = iota
	ShadeMedium
	ShadeDark
)

// TotalRow is one row of the totals table.
type TotalRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Shade Shade  `json:"shade"`
	// Emphasis marks the grand total, printed larger.
	Emphasis bool `json:"emphasis,omitempty"`
}

// TextBlock is a titled free-text box.
type TextBlock struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
	// Placeholder is set when Lines holds the placeholder text instead of
	// user input.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Signatures holds the two signature boxes.
type Signatures struct {
	Title          string       `json:"title"`
	Client         SignatureBox `json:"client"`
	DeliveryPerson SignatureBox `json:"deliveryPerson"`
}

// SignatureBox is one signature box: a heading, labelled lines and the
// blank signature line.
type SignatureBox struct {
	Heading   string         `json:"heading"`
	Fields    []LabeledValue `json:"fields"`
	Signature string         `json:"signature"`
}
