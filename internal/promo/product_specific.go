package promo

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

var hundred = decimal.NewFromInt(100)

// allocateProductSpecific discounts the cashier-selected units line by line.
// Pairs that cannot be honoured are skipped; the promo applies if at least
// one pair went through.
func (e *Engine) allocateProductSpecific(promoID string, rule models.ProductSpecificRule, sel models.PromoSelection, cart cartIndex, avail availability) models.AllocationOutcome {
	if rule.Value.IsNegative() ||
		(rule.Kind != models.DiscountKindPercentage && rule.Kind != models.DiscountKindFixed) {
		return rejected(ReasonInvalidDiscount)
	}

	out := models.AllocationOutcome{
		Discount:      decimal.Zero,
		AffectedItems: []models.AffectedItem{},
		UsedItems:     []models.UsedItem{},
	}

	// units already taken by earlier pairs of this same selection
	pending := make(map[string]int)
	processed := 0

	for _, sl := range sel.SelectedLines {
		log := e.logger.With(zap.String("promo_id", promoID), zap.String("product_id", sl.ProductID))

		if !rule.Eligible(sl.ProductID) {
			log.Warn("skipping product not eligible for promotion")
			continue
		}
		line, ok := cart.line(sl.ProductID)
		if !ok {
			log.Warn("skipping product not in cart")
			continue
		}
		qty := min(sl.Quantity, avail.Available(sl.ProductID)-pending[sl.ProductID])
		if qty <= 0 {
			log.Warn("skipping product with no available quantity",
				zap.Int("selected", sl.Quantity))
			continue
		}

		subtotal := subtotalFor(line, qty, e.scale)
		var itemDiscount decimal.Decimal
		switch rule.Kind {
		case models.DiscountKindPercentage:
			itemDiscount = rule.Value.Div(hundred).Mul(subtotal).Round(e.scale)
		case models.DiscountKindFixed:
			itemDiscount = decimal.Min(rule.Value.Mul(decimal.NewFromInt(int64(qty))), subtotal)
		}
		// a percentage above 100 must not push the line below zero either
		itemDiscount = decimal.Min(itemDiscount, subtotal)

		pending[sl.ProductID] += qty
		processed++
		out.Discount = out.Discount.Add(itemDiscount)
		out.AffectedItems = append(out.AffectedItems, models.AffectedItem{
			ProductID:        sl.ProductID,
			Quantity:         qty,
			OriginalSubtotal: subtotal,
			DiscountAmount:   itemDiscount,
		})
		out.UsedItems = append(out.UsedItems, models.UsedItem{
			ProductID: sl.ProductID,
			Quantity:  qty,
		})
	}

	if processed == 0 {
		out.Reason = ReasonNoEligibleProducts
		return out
	}
	out.Applied = true
	return out
}
