package layout

import (
	"image"
	"strings"

	"github.com/matzehuels/deliverynote/pkg/note"
)

// Printed labels.
const (
	TitleText               = "BON DE LIVRAISON"
	LogoPlaceholder         = "LOGO"
	NoObservationsText      = "Aucune observation."
	recipientTitle          = "Destinataire"
	itemsTitle              = "Marchandises livrées"
	observationsTitle       = "Observations"
	signaturesTitle         = "Signatures"
	signatureLine           = "Signature :"
	deliveryDateTimeLabel   = "Date et heure de livraison :"
	currencySuffix          = " €"
	companyVATPrefix        = "TVA : "
	numberLabel             = "Bon N° :"
	dateLabel               = "Date :"
	clientHeading           = "Client"
	deliveryPersonHeading   = "Livreur"
	clientNameFunctionLabel = "Nom & fonction :"
)

// Option configures [Build].
type Option func(*builder)

type builder struct {
	logo image.Image
}

// WithLogo supplies the resolved company logo. A nil image, or no WithLogo
// at all, leaves a referenced logo in the [LogoUnavailable] state.
func WithLogo(img image.Image) Option {
	return func(b *builder) { b.logo = img }
}

// Build lays out n on an A4 portrait page. It is pure: the same note and
// logo always give the same page, and n is not modified.
func Build(n note.DeliveryNote, opts ...Option) Page {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	totals := note.ComputeTotals(n).Formatted()

	return Page{
		WidthMM:  PageWidthMM,
		HeightMM: PageHeightMM,
		Header: Header{
			Logo: buildLogo(n.Company.Logo, b.logo),
			Company: CompanyBlock{
				Name:         n.Company.Name,
				AddressLines: SplitLines(n.Company.Address),
				VATLine:      companyVATPrefix + n.Company.VAT,
			},
			Title: TitleText,
			Fields: []LabeledValue{
				{Label: numberLabel, Value: n.Number, Mono: true},
				{Label: dateLabel, Value: n.Date},
			},
		},
		Recipient: KeyTable{
			Title: recipientTitle,
			Rows: []KeyRow{
				{Label: "Nom / Entreprise", Lines: SplitLines(n.Client.Name)},
				{Label: "Adresse", Lines: SplitLines(n.Client.Address)},
				{Label: "N° TVA", Lines: SplitLines(n.Client.VAT)},
				{Label: "Personne de contact", Lines: SplitLines(n.Client.ContactPerson)},
				{Label: "Téléphone / e-mail", Lines: SplitLines(n.Client.PhoneEmail)},
			},
		},
		Items: buildItems(n.Items),
		Totals: TotalsTable{
			Rows: []TotalRow{
				{Label: "Sous-total", Value: totals.SubTotal + currencySuffix, Shade: ShadeLight},
				{Label: "TVA " + note.FormatNumber(n.VATRate) + " %", Value: totals.VATAmount + currencySuffix, Shade: ShadeMedium},
				{Label: "TOTAL TTC", Value: totals.TotalWithVAT + currencySuffix, Shade: ShadeDark, Emphasis: true},
			},
		},
		Observations: buildObservations(n.Observations),
		Signatures: Signatures{
			Title: signaturesTitle,
			Client: SignatureBox{
				Heading:   clientHeading,
				Fields:    []LabeledValue{{Label: clientNameFunctionLabel}},
				Signature: signatureLine,
			},
			DeliveryPerson: SignatureBox{
				Heading: deliveryPersonHeading,
				Fields: []LabeledValue{
					{Label: "Nom :", Value: n.DeliveryPerson.Name},
					{Label: "TVA / Employeur :", Value: n.DeliveryPerson.VATEmployer},
				},
				Signature: signatureLine,
			},
		},
		Footer: LabeledValue{Label: deliveryDateTimeLabel, Value: n.DeliveryDateTime, Mono: true},
	}
}

func buildLogo(ref string, img image.Image) Logo {
	switch {
	case ref == "":
		return Logo{State: LogoNone, Placeholder: LogoPlaceholder}
	case img == nil:
		return Logo{State: LogoUnavailable, Ref: ref}
	default:
		return Logo{State: LogoReady, Ref: ref, Image: img}
	}
}

func buildItems(items []note.LineItem) ItemTable {
	t := ItemTable{
		Title: itemsTitle,
		Columns: []Column{
			{Label: "Description", Align: AlignLeft},
			{Label: "Quantité", Align: AlignLeft, Width: 96},
			{Label: "Total (€)", Align: AlignRight, Width: 128},
		},
		Rows: make([]ItemRow, 0, max(len(items), MinItemRows)),
	}
	for _, it := range items {
		t.Rows = append(t.Rows, ItemRow{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    note.FormatNumber(it.Quantity),
			Total:       note.FormatAmount(note.LineTotal(it)),
		})
	}
	for len(t.Rows) < MinItemRows {
		t.Rows = append(t.Rows, ItemRow{Blank: true})
	}
	return t
}

func buildObservations(text string) TextBlock {
	if text == "" {
		return TextBlock{Title: observationsTitle, Lines: []string{NoObservationsText}, Placeholder: true}
	}
	return TextBlock{Title: observationsTitle, Lines: SplitLines(text)}
}

// SplitLines splits text at line breaks, accepting \n, \r\n and \r.
// Empty text gives a single empty line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
