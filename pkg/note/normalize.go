package note

import (
	"math"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// Normalize returns a copy of n that satisfies the document invariants:
// every item has a non-empty id unique within the document, and every
// numeric field is finite. Blank or duplicate ids are re-issued, NaN and
// infinities become 0. Documents read from files go through Normalize.
func Normalize(n DeliveryNote) DeliveryNote {
	n = Clone(n)
	n.VATRate = finite(n.VATRate)

	seen := make(map[string]bool, len(n.Items))
	for i := range n.Items {
		it := &n.Items[i]
		it.Quantity = finite(it.Quantity)
		it.UnitPrice = finite(it.UnitPrice)
		for it.ID == "" || seen[it.ID] {
			it.ID = NewItemID()
		}
		seen[it.ID] = true
	}
	return n
}

// Validate reports the first invariant violation in n, if any.
func Validate(n DeliveryNote) error {
	if !isFinite(n.VATRate) {
		return derrors.New(derrors.ErrCodeInvalidInput, "vatRate is not a finite number")
	}
	seen := make(map[string]bool, len(n.Items))
	for i, it := range n.Items {
		if it.ID == "" {
			return derrors.New(derrors.ErrCodeInvalidInput, "item %d has no id", i+1)
		}
		if seen[it.ID] {
			return derrors.New(derrors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if !isFinite(it.Quantity) || !isFinite(it.UnitPrice) {
			return derrors.New(derrors.ErrCodeInvalidInput, "item %q has a non-finite amount", it.ID)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
