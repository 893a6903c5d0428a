package models

import "github.com/shopspring/decimal"

// CartLine is one line of the order being built. Subtotal is price x quantity,
// already net of unit-level discounts.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartRequest struct {
	OrderID    string           `json:"order_id,omitempty"`
	Selections []PromoSelection `json:"promo_selections"`
	CartLines  []CartLine       `json:"cart_lines"`
}
