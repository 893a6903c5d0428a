package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoType string

const (
	PromoTypeBundling           PromoType = "bundling"
	PromoTypeBuyXGetY           PromoType = "buy_x_get_y"
	PromoTypeProductSpecific    PromoType = "product_specific"
	PromoTypeDiscountOnQuantity PromoType = "discount_on_quantity"
	PromoTypeDiscountOnTotal    PromoType = "discount_on_total"
)

// Selectable reports whether a cashier may pick this type at order time.
// The quantity and total discounts are evaluated automatically elsewhere.
func (t PromoType) Selectable() bool {
	switch t {
	case PromoTypeBundling, PromoTypeBuyXGetY, PromoTypeProductSpecific:
		return true
	}
	return false
}

type DiscountKind string

const (
	DiscountKindPercentage DiscountKind = "percentage"
	DiscountKindFixed      DiscountKind = "fixed"
)

// Promotion is a fully resolved promotion definition.
type Promotion struct {
	ID        string
	Name      string
	Active    bool
	Rule      Rule
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Type returns the promo type of the promotion's rule.
func (p *Promotion) Type() PromoType {
	if p == nil || p.Rule == nil {
		return ""
	}
	return p.Rule.Type()
}

// Rule is the shape-specific part of a promotion. The set of implementations
// is closed: only the rule types in this package satisfy it.
type Rule interface {
	Type() PromoType
	isRule()
}

type BundleItem struct {
	ProductID        string `json:"product_id"`
	RequiredQuantity int    `json:"required_quantity"`
}

// BundleRule sells Items as a set for BundlePrice.
type BundleRule struct {
	Items       []BundleItem    `json:"items"`
	BundlePrice decimal.Decimal `json:"bundle_price"`
}

// BuyXGetYRule grants one GetProductID for every MinQuantityPerSet units of
// BuyProductID bought.
type BuyXGetYRule struct {
	BuyProductID      string          `json:"buy_product_id"`
	GetProductID      string          `json:"get_product_id"`
	GetProductName    string          `json:"get_product_name,omitempty"`
	GetUnitPrice      decimal.Decimal `json:"get_unit_price"`
	MinQuantityPerSet int             `json:"min_quantity_per_set"`
}

// ProductSpecificRule discounts selected units of the eligible products.
type ProductSpecificRule struct {
	EligibleProductIDs []string        `json:"eligible_product_ids"`
	Kind               DiscountKind    `json:"discount_kind"`
	Value              decimal.Decimal `json:"discount_value"`
}

// Eligible reports whether productID is covered by the rule.
func (r ProductSpecificRule) Eligible(productID string) bool {
	for _, id := range r.EligibleProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type QuantityDiscountRule struct {
	MinQuantity int             `json:"min_quantity"`
	Kind        DiscountKind    `json:"discount_kind"`
	Value       decimal.Decimal `json:"discount_value"`
}

type TotalDiscountRule struct {
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	Kind          DiscountKind    `json:"discount_kind"`
	Value         decimal.Decimal `json:"discount_value"`
}

func (BundleRule) Type() PromoType           { return PromoTypeBundling }
func (BuyXGetYRule) Type() PromoType         { return PromoTypeBuyXGetY }
func (ProductSpecificRule) Type() PromoType  { return PromoTypeProductSpecific }
func (QuantityDiscountRule) Type() PromoType { return PromoTypeDiscountOnQuantity }
func (TotalDiscountRule) Type() PromoType    { return PromoTypeDiscountOnTotal }

func (BundleRule) isRule()           {}
func (BuyXGetYRule) isRule()         {}
func (ProductSpecificRule) isRule()  {}
func (QuantityDiscountRule) isRule() {}
func (TotalDiscountRule) isRule()    {}
