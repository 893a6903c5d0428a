package repository

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

// promotionRow mirrors one row of the promotions table. Only the columns of
// the row's promo_type are set.
type promotionRow struct {
	PromoType         string
	BundlePrice       decimal.NullDecimal
	BuyProductID      sql.NullString
	GetProductID      sql.NullString
	MinQuantityPerSet sql.NullInt64
	MinQuantity       sql.NullInt64
	MinOrderValue     decimal.NullDecimal
	DiscountKind      sql.NullString
	DiscountValue     decimal.NullDecimal
}

type productRow struct {
	ProductID        string
	RequiredQuantity int
}

// buildRule turns the flat storage shape into the rule for its promo type.
// getProduct is only consulted for buy_x_get_y; a nil one leaves the rule
// without a get product so allocation rejects it.
func buildRule(row promotionRow, products []productRow, getProduct *models.Product) (models.Rule, error) {
	switch models.PromoType(row.PromoType) {
	case models.PromoTypeBundling:
		items := make([]models.BundleItem, 0, len(products))
		for _, p := range products {
			items = append(items, models.BundleItem{ProductID: p.ProductID, RequiredQuantity: p.RequiredQuantity})
		}
		return models.BundleRule{Items: items, BundlePrice: row.BundlePrice.Decimal}, nil

	case models.PromoTypeBuyXGetY:
		rule := models.BuyXGetYRule{
			BuyProductID:      row.BuyProductID.String,
			MinQuantityPerSet: int(row.MinQuantityPerSet.Int64),
		}
		if getProduct != nil {
			rule.GetProductID = getProduct.ID
			rule.GetProductName = getProduct.Name
			rule.GetUnitPrice = getProduct.Price
		}
		return rule, nil

	case models.PromoTypeProductSpecific:
		ids := make([]string, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ProductID)
		}
		return models.ProductSpecificRule{
			EligibleProductIDs: ids,
			Kind:               models.DiscountKind(row.DiscountKind.String),
			Value:              row.DiscountValue.Decimal,
		}, nil

	case models.PromoTypeDiscountOnQuantity:
		return models.QuantityDiscountRule{
			MinQuantity: int(row.MinQuantity.Int64),
			Kind:        models.DiscountKind(row.DiscountKind.String),
			Value:       row.DiscountValue.Decimal,
		}, nil

	case models.PromoTypeDiscountOnTotal:
		return models.TotalDiscountRule{
			MinOrderValue: row.MinOrderValue.Decimal,
			Kind:          models.DiscountKind(row.DiscountKind.String),
			Value:         row.DiscountValue.Decimal,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown promo type %q", models.ErrInvalidPromotion, row.PromoType)
}

// flattenRule is the inverse of buildRule.
func flattenRule(rule models.Rule) (promotionRow, []productRow, error) {
	if rule == nil {
		return promotionRow{}, nil, fmt.Errorf("%w: missing rule", models.ErrInvalidPromotion)
	}
	row := promotionRow{PromoType: string(rule.Type())}
	var products []productRow

	switch r := rule.(type) {
	case models.BundleRule:
		row.BundlePrice = decimal.NewNullDecimal(r.BundlePrice)
		for _, it := range r.Items {
			products = append(products, productRow{ProductID: it.ProductID, RequiredQuantity: it.RequiredQuantity})
		}
	case models.BuyXGetYRule:
		row.BuyProductID = sql.NullString{String: r.BuyProductID, Valid: r.BuyProductID != ""}
		row.GetProductID = sql.NullString{String: r.GetProductID, Valid: r.GetProductID != ""}
		row.MinQuantityPerSet = sql.NullInt64{Int64: int64(r.MinQuantityPerSet), Valid: true}
	case models.ProductSpecificRule:
		row.DiscountKind = sql.NullString{String: string(r.Kind), Valid: true}
		row.DiscountValue = decimal.NewNullDecimal(r.Value)
		for _, id := range r.EligibleProductIDs {
			products = append(products, productRow{ProductID: id, RequiredQuantity: 1})
		}
	case models.QuantityDiscountRule:
		row.MinQuantity = sql.NullInt64{Int64: int64(r.MinQuantity), Valid: true}
		row.DiscountKind = sql.NullString{String: string(r.Kind), Valid: true}
		row.DiscountValue = decimal.NewNullDecimal(r.Value)
	case models.TotalDiscountRule:
		row.MinOrderValue = decimal.NewNullDecimal(r.MinOrderValue)
		row.DiscountKind = sql.NullString{String: string(r.Kind), Valid: true}
		row.DiscountValue = decimal.NewNullDecimal(r.Value)
	default:
		return promotionRow{}, nil, fmt.Errorf("%w: unsupported rule %T", models.ErrInvalidPromotion, rule)
	}
	return row, products, nil
}
