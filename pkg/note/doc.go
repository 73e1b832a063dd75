// Package note defines the delivery note document model and its derived totals.
//
// # Model
//
// A [DeliveryNote] holds the issuer ([CompanyInfo]), the recipient
// ([ClientInfo]), the delivered goods ([LineItem], in display order), a single
// VAT rate applied to every item, free-text observations and the delivery
// person. Every field is always populated; only CompanyInfo.Logo may be empty.
//
// Values are never modified in place. The editor package returns a new
// DeliveryNote for every change, so shells can compare revisions instead of
// watching fields.
//
// # Totals
//
// [ComputeTotals] derives the subtotal, VAT amount and total at full float64
// precision. Amounts are rounded only for display, by [FormatAmount]:
//
//	t := note.ComputeTotals(n)
//	f := t.Formatted() // {"15.99", "0.96", "16.95"}
//
// # Files
//
// Documents can be read from and written to TOML or JSON files with
// [ReadFile] and [WriteFile]. Decoded documents are passed through
// [Normalize], which repairs blank or duplicate item ids and non-finite
// numbers.
package note
