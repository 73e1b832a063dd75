// Package editor applies form edits to delivery notes.
//
// Every operation takes a [note.DeliveryNote] by value and returns a new one;
// the input is never modified and the Items slice is cloned before it is
// written. Shells hold the current note and replace it with the result.
//
// Document fields are addressed by [Field], a closed set of dot-delimited
// paths (company.address, deliveryPerson.name, ...). Line item fields are
// addressed by item id and [ItemField]:
//
//	n, _ = editor.Set(n, editor.FieldClientName, "ACME")
//	n, id := editor.AddItem(n)
//	n, _ = editor.UpdateItem(n, id, editor.ItemQuantity, "2,5")
//	n = editor.RemoveItem(n, id)
//
// Numeric input goes through [ParseNumber]: unparseable input becomes 0,
// never NaN.
package editor
