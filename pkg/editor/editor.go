package editor

import (
	"github.com/matzehuels/deliverynote/pkg/note"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// Edit is one field change, the command form of [Set].
type Edit struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// Apply returns the note produced by applying e to n.
func Apply(n note.DeliveryNote, e Edit) (note.DeliveryNote, error) {
	return Set(n, e.Field, e.Value)
}

// Set returns a copy of n with field f replaced by value. Numeric fields
// coerce value with [ParseNumber]. Every other field of the result equals
// the corresponding field of n, and n itself is left untouched.
//
// The only error is an unknown field, in which case n is returned unchanged.
func Set(n note.DeliveryNote, f Field, value string) (note.DeliveryNote, error) {
	if !f.Valid() {
		return n, derrors.New(derrors.ErrCodeInvalidField, "unknown field: %q", string(f))
	}

	// n is a copy of the caller's struct; Items is shared but not written.
	switch f {
	case FieldNumber:
		n.Number = value
	case FieldDate:
		n.Date = value
	case FieldCompanyName:
		n.Company.Name = value
	case FieldCompanyAddress:
		n.Company.Address = value
	case FieldCompanyVAT:
		n.Company.VAT = value
	case FieldCompanyLogo:
		n.Company.Logo = value
	case FieldClientName:
		n.Client.Name = value
	case FieldClientAddress:
		n.Client.Address = value
	case FieldClientVAT:
		n.Client.VAT = value
	case FieldClientContactPerson:
		n.Client.ContactPerson = value
	case FieldClientPhoneEmail:
		n.Client.PhoneEmail = value
	case FieldVATRate:
		n.VATRate = ParseNumber(value)
	case FieldObservations:
		n.Observations = value
	case FieldDeliveryPersonName:
		n.DeliveryPerson.Name = value
	case FieldDeliveryPersonVATEmployer:
		n.DeliveryPerson.VATEmployer = value
	case FieldDeliveryDateTime:
		n.DeliveryDateTime = value
	}
	return n, nil
}

// Get returns the current textual value of field f, formatted the way a
// form input would show it. Unknown fields yield "".
func Get(n note.DeliveryNote, f Field) string {
	switch f {
	case FieldNumber:
		return n.Number
	case FieldDate:
		return n.Date
	case FieldCompanyName:
		return n.Company.Name
	case FieldCompanyAddress:
		return n.Company.Address
	case FieldCompanyVAT:
		return n.Company.VAT
	case FieldCompanyLogo:
		return n.Company.Logo
	case FieldClientName:
		return n.Client.Name
	case FieldClientAddress:
		return n.Client.Address
	case FieldClientVAT:
		return n.Client.VAT
	case FieldClientContactPerson:
		return n.Client.ContactPerson
	case FieldClientPhoneEmail:
		return n.Client.PhoneEmail
	case FieldVATRate:
		return note.FormatNumber(n.VATRate)
	case FieldObservations:
		return n.Observations
	case FieldDeliveryPersonName:
		return n.DeliveryPerson.Name
	case FieldDeliveryPersonVATEmployer:
		return n.DeliveryPerson.VATEmployer
	case FieldDeliveryDateTime:
		return n.DeliveryDateTime
	}
	return ""
}

// GetItem returns the current textual value of field f of item it.
func GetItem(it note.LineItem, f ItemField) string {
	switch f {
	case ItemDescription:
		return it.Description
	case ItemQuantity:
		return note.FormatNumber(it.Quantity)
	case ItemUnitPrice:
		return note.FormatNumber(it.UnitPrice)
	}
	return ""
}

// AddItem returns a copy of n with a blank item appended (quantity 1, unit
// price 0) and the id of the new item.
func AddItem(n note.DeliveryNote) (note.DeliveryNote, string) {
	id := note.NewItemID()
	for n.IndexOf(id) >= 0 {
		id = note.NewItemID()
	}
	out := note.Clone(n)
	out.Items = append(out.Items, note.LineItem{ID: id, Quantity: 1})
	return out, id
}

// RemoveItem returns a copy of n without the item with the given id. Other
// items keep their relative order. An unknown id returns n unchanged.
func RemoveItem(n note.DeliveryNote, id string) note.DeliveryNote {
	i := n.IndexOf(id)
	if i < 0 {
		return n
	}
	out := note.Clone(n)
	out.Items = append(out.Items[:i], out.Items[i+1:]...)
	return out
}

// UpdateItem returns a copy of n where field f of the item with the given id
// is replaced by value. Numeric fields coerce value with [ParseNumber]. An
// unknown id returns n unchanged; an unknown field is an error.
func UpdateItem(n note.DeliveryNote, id string, f ItemField, value string) (note.DeliveryNote, error) {
	if !f.Valid() {
		return n, derrors.New(derrors.ErrCodeInvalidField, "unknown item field: %q", string(f))
	}
	i := n.IndexOf(id)
	if i < 0 {
		return n, nil
	}

	out := note.Clone(n)
	it := &out.Items[i]
	switch f {
	case ItemDescription:
		it.Description = value
	case ItemQuantity:
		it.Quantity = ParseNumber(value)
	case ItemUnitPrice:
		it.UnitPrice = ParseNumber(value)
	}
	return out, nil
}
