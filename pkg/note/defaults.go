package note

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DateLayout is the layout of DeliveryNote.Date.
	DateLayout = "2006-01-02"

	// DeliveryDateTimeLayout formats the default delivery date/time the way the
	// printed document shows it (18/10/2026 à 14:05).
	DeliveryDateTimeLayout = "02/01/2006 à 15:04"
)

// Default returns the example document every session starts from.
// Dates are derived from now; everything else is fixed.
func Default(now time.Time) DeliveryNote {
	return DeliveryNote{
		Number: "BL-2025-001",
		Date:   now.Format(DateLayout),
		Company: CompanyInfo{
			Name:    "Hind Pâtiss SRL",
			Address: "Rue du Korenbeek 81A\n1080 Bruxelles",
			VAT:     "BE0792.992.420",
			Logo:    "https://picsum.photos/seed/bakery/200/200",
		},
		Client: ClientInfo{
			Name:          "Centre médical Mettewie",
			Address:       "Bd Louis Mettewie 37, 1080 Molenbeek-Saint-Jean",
			VAT:           "BE0425260272",
			ContactPerson: "Secretariat",
			PhoneEmail:    "02 610 15 00",
		},
		Items: []LineItem{
			{
				ID:          "1",
				Description: "Assortiment pâtisseries orientales (boîte 500 g)",
				Quantity:    1,
				UnitPrice:   15.99,
			},
		},
		VATRate:      6,
		Observations: "Livraison effectuée sans anomalie.",
		DeliveryPerson: DeliveryPerson{
			Name:        "Zakariyae El Amri",
			VATEmployer: "BE0745539822",
		},
		DeliveryDateTime: now.Format(DeliveryDateTimeLayout),
	}
}

// NewItemID returns a fresh line item identifier.
func NewItemID() string {
	return uuid.NewString()
}
