package note

import "slices"

// DeliveryNote is the root aggregate: one delivery note with its issuer,
// recipient, delivered goods and delivery metadata.
//
// A DeliveryNote is treated as an immutable value. Editors produce a new value
// for every change and never write through to a value they received; the
// Items slice in particular is cloned before it is modified.
type DeliveryNote struct {
	Number           string         `json:"number" toml:"number"`
	Date             string         `json:"date" toml:"date"` // YYYY-MM-DD
	Company          CompanyInfo    `json:"company" toml:"company"`
	Client           ClientInfo     `json:"client" toml:"client"`
	Items            []LineItem     `json:"items" toml:"items"`
	VATRate          float64        `json:"vatRate" toml:"vatRate"` // percent, 6 means 6%
	Observations     string         `json:"observations" toml:"observations"`
	DeliveryPerson   DeliveryPerson `json:"deliveryPerson" toml:"deliveryPerson"`
	DeliveryDateTime string         `json:"deliveryDateTime" toml:"deliveryDateTime"`
}

// CompanyInfo identifies the issuer. Address may contain line breaks.
// An empty Logo means no logo reference is set.
type CompanyInfo struct {
	Name    string `json:"name" toml:"name"`
	Address string `json:"address" toml:"address"`
	VAT     string `json:"vat" toml:"vat"`
	Logo    string `json:"logo,omitempty" toml:"logo,omitempty"`
}

// ClientInfo identifies the recipient.
type ClientInfo struct {
	Name          string `json:"name" toml:"name"`
	Address       string `json:"address" toml:"address"`
	VAT           string `json:"vat" toml:"vat"`
	ContactPerson string `json:"contactPerson" toml:"contactPerson"`
	PhoneEmail    string `json:"phoneEmail" toml:"phoneEmail"`
}

// LineItem is one row of delivered goods. ID is opaque and only used to
// address the row; it is never displayed.
type LineItem struct {
	ID          string  `json:"id" toml:"id"`
	Description string  `json:"description" toml:"description"`
	Quantity    float64 `json:"quantity" toml:"quantity"`
	UnitPrice   float64 `json:"unitPrice" toml:"unitPrice"`
}

// DeliveryPerson identifies who delivered the goods.
type DeliveryPerson struct {
	Name        string `json:"name" toml:"name"`
	VATEmployer string `json:"vatEmployer" toml:"vatEmployer"`
}

// HasLogo reports whether a logo reference is set.
func (c CompanyInfo) HasLogo() bool {
	return c.Logo != ""
}

// Clone returns a copy of n that shares no mutable state with it.
func Clone(n DeliveryNote) DeliveryNote {
	n.Items = slices.Clone(n.Items)
	if n.Items == nil {
		n.Items = []LineItem{}
	}
	return n
}

// IndexOf returns the position of the item with the given id, or -1.
func (n DeliveryNote) IndexOf(id string) int {
	return slices.IndexFunc(n.Items, func(it LineItem) bool { return it.ID == id })
}

// Item returns the item with the given id.
func (n DeliveryNote) Item(id string) (LineItem, bool) {
	if i := n.IndexOf(id); i >= 0 {
		return n.Items[i], true
	}
	return LineItem{}, false
}
