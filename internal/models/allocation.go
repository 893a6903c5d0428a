package models

import "github.com/shopspring/decimal"

type AffectedItem struct {
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	OriginalSubtotal decimal.Decimal `json:"original_subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
}

// FreeItem is a product granted at zero price. UnitPrice is what it would
// have cost and is kept for reporting only.
type FreeItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type UsedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AllocationOutcome is what a single allocator returns for one selection.
type AllocationOutcome struct {
	Applied       bool            `json:"applied"`
	Discount      decimal.Decimal `json:"discount"`
	Reason        string          `json:"reason,omitempty"`
	Sets          int             `json:"sets,omitempty"`
	AffectedItems []AffectedItem  `json:"affected_items"`
	FreeItems     []FreeItem      `json:"free_items"`
	UsedItems     []UsedItem      `json:"used_items"`
}

type AppliedPromo struct {
	PromoID       string          `json:"promo_id"`
	Name          string          `json:"name"`
	Type          PromoType       `json:"promo_type"`
	Discount      decimal.Decimal `json:"discount"`
	Sets          int             `json:"sets,omitempty"`
	AffectedItems []AffectedItem  `json:"affected_items"`
	FreeItems     []FreeItem      `json:"free_items"`
}

type RejectedSelection struct {
	PromoID string `json:"promo_id"`
	Reason  string `json:"reason"`
}

// AllocationResult is the immutable discount record handed back to the
// order-creation workflow.
type AllocationResult struct {
	TotalDiscount decimal.Decimal     `json:"total_discount"`
	AppliedPromos []AppliedPromo      `json:"applied_promos"`
	UsedItems     []UsedItem          `json:"used_items"`
	FreeItems     []FreeItem          `json:"free_items"`
	Rejected      []RejectedSelection `json:"rejected,omitempty"`
}

type ValidationResult struct {
	PromoID string `json:"promo_id"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}
