package models

// SelectedLine is a cashier-picked product quantity for a promotion.
type SelectedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PromoSelection is the cashier's intent to apply one promotion.
// BundleSets is only read for bundles; SelectedLines for the other shapes.
type PromoSelection struct {
	PromoID       string         `json:"promo_id"`
	BundleSets    int            `json:"bundle_sets,omitempty"`
	SelectedLines []SelectedLine `json:"selected_lines,omitempty"`
}
