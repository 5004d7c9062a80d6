package model

// DefaultPaymentMethod is assumed for legacy sales that never recorded one.
const DefaultPaymentMethod = "Espèces"

// PaymentMethod is a tender the shop accepts.
type PaymentMethod struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultPaymentMethods seeds a shop without a saved configuration.
func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{ID: "pm_1", Name: DefaultPaymentMethod, Color: "green"},
		{ID: "pm_2", Name: "Wave", Color: "blue"},
		{ID: "pm_3", Name: "OM", Color: "orange"},
		{ID: "pm_4", Name: "Carte", Color: "slate"},
	}
}
