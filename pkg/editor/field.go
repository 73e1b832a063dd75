package editor

import (
	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// Field addresses one editable scalar of a delivery note. The string value is
// the dot-delimited path the form inputs use (company.address, vatRate, ...).
type Field string

// Editable document fields.
const (
	FieldNumber                    Field = "number"
	FieldDate                      Field = "date"
	FieldCompanyName               Field = "company.name"
	FieldCompanyAddress            Field = "company.address"
	FieldCompanyVAT                Field = "company.vat"
	FieldCompanyLogo               Field = "company.logo"
	FieldClientName                Field = "client.name"
	FieldClientAddress             Field = "client.address"
	FieldClientVAT                 Field = "client.vat"
	FieldClientContactPerson       Field = "client.contactPerson"
	FieldClientPhoneEmail          Field = "client.phoneEmail"
	FieldVATRate                   Field = "vatRate"
	FieldObservations              Field = "observations"
	FieldDeliveryPersonName        Field = "deliveryPerson.name"
	FieldDeliveryPersonVATEmployer Field = "deliveryPerson.vatEmployer"
	FieldDeliveryDateTime          Field = "deliveryDateTime"
)

// ItemField addresses one editable scalar of a line item.
type ItemField string

// Editable line item fields.
const (
	ItemDescription ItemField = "description"
	ItemQuantity    ItemField = "quantity"
	ItemUnitPrice   ItemField = "unitPrice"
)

type fieldInfo struct {
	label     string
	multiline bool
	numeric   bool
}

// fieldOrder is the form order: document, company, client, items (handled
// separately), VAT, observations, delivery.
var fieldOrder = []Field{
	FieldNumber,
	FieldDate,
	FieldCompanyLogo,
	FieldCompanyName,
	FieldCompanyAddress,
	FieldCompanyVAT,
	FieldClientName,
	FieldClientAddress,
	FieldClientVAT,
	FieldClientContactPerson,
	FieldClientPhoneEmail,
	FieldVATRate,
	FieldObservations,
	FieldDeliveryPersonName,
	FieldDeliveryPersonVATEmployer,
	FieldDeliveryDateTime,
}

var fields = map[Field]fieldInfo{
	FieldNumber:                    {label: "Numéro de Bon"},
	FieldDate:                      {label: "Date"},
	FieldCompanyLogo:               {label: "Logo URL"},
	FieldCompanyName:               {label: "Nom"},
	FieldCompanyAddress:            {label: "Adresse", multiline: true},
	FieldCompanyVAT:                {label: "N° TVA"},
	FieldClientName:                {label: "Nom / Entreprise"},
	FieldClientAddress:             {label: "Adresse", multiline: true},
	FieldClientVAT:                 {label: "N° TVA"},
	FieldClientContactPerson:       {label: "Contact"},
	FieldClientPhoneEmail:          {label: "Téléphone / E-mail"},
	FieldVATRate:                   {label: "Taux TVA (%)", numeric: true},
	FieldObservations:              {label: "Observations", multiline: true},
	FieldDeliveryPersonName:        {label: "Nom du Livreur"},
	FieldDeliveryPersonVATEmployer: {label: "TVA / Employeur Livreur"},
	FieldDeliveryDateTime:          {label: "Date et Heure de Livraison"},
}

var itemFields = map[ItemField]fieldInfo{
	ItemDescription: {label: "Description"},
	ItemQuantity:    {label: "Quantité", numeric: true},
	ItemUnitPrice:   {label: "Prix Unitaire (€)", numeric: true},
}

// Fields returns every editable document field in form order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ItemFields returns the editable line item fields in form order.
func ItemFields() []ItemField {
	return []ItemField{ItemDescription, ItemQuantity, ItemUnitPrice}
}

// ParseField resolves a dot-delimited path such as "company.address".
func ParseField(path string) (Field, error) {
	f := Field(path)
	if _, ok := fields[f]; !ok {
		return "", derrors.New(derrors.ErrCodeInvalidField, "unknown field: %q", path)
	}
	return f, nil
}

// ParseItemField resolves a line item field name.
func ParseItemField(name string) (ItemField, error) {
	f := ItemField(name)
	if _, ok := itemFields[f]; !ok {
		return "", derrors.New(derrors.ErrCodeInvalidField, "unknown item field: %q", name)
	}
	return f, nil
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool { _, ok := fields[f]; return ok }

// Label returns the form label of f.
func (f Field) Label() string { return fields[f].label }

// Multiline reports whether f accepts line breaks.
func (f Field) Multiline() bool { return fields[f].multiline }

// Numeric reports whether input for f is coerced to a number.
func (f Field) Numeric() bool { return fields[f].numeric }

// Section returns the form section f belongs to.
func (f Field) Section() string {
	switch f {
	case FieldNumber, FieldDate:
		return "Informations du Document"
	case FieldCompanyLogo, FieldCompanyName, FieldCompanyAddress, FieldCompanyVAT:
		return "Votre Entreprise"
	case FieldClientName, FieldClientAddress, FieldClientVAT, FieldClientContactPerson, FieldClientPhoneEmail:
		return "Destinataire"
	case FieldVATRate:
		return "Marchandises"
	default:
		return "Détails de Livraison"
	}
}

// Valid reports whether f is a known item field.
func (f ItemField) Valid() bool { _, ok := itemFields[f]; return ok }

// Label returns the form label of f.
func (f ItemField) Label() string { return itemFields[f].label }

// Numeric reports whether input for f is coerced to a number.
func (f ItemField) Numeric() bool { return itemFields[f].numeric }
