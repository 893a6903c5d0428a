package promo

import (
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

func rejected(reason string) models.AllocationOutcome {
	return models.AllocationOutcome{
		Discount: decimal.Zero,
		Reason:   reason,
	}
}

// allocateBundle prices as many whole sets as the remaining cart allows, up
// to the number the cashier asked for.
func (e *Engine) allocateBundle(rule models.BundleRule, sel models.PromoSelection, cart cartIndex, avail availability) models.AllocationOutcome {
	if len(rule.Items) == 0 {
		return rejected(ReasonBundleEmpty)
	}

	requested := sel.BundleSets
	if requested <= 0 {
		requested = 1
	}

	// A product may appear in more than one item; its requirement per set is
	// the sum across those items.
	perSet := make(map[string]int, len(rule.Items))
	order := make([]string, 0, len(rule.Items))
	lines := make([]models.CartLine, len(rule.Items))
	for i, item := range rule.Items {
		if item.RequiredQuantity <= 0 {
			return rejected(ReasonInvalidRequiredQty)
		}
		line, ok := cart.line(item.ProductID)
		if !ok {
			return rejected(ReasonMissingProduct)
		}
		if _, seen := perSet[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		perSet[item.ProductID] += item.RequiredQuantity
		lines[i] = line
	}

	actualSets := requested
	for _, id := range order {
		available := avail.Available(id)
		if available < perSet[id] {
			return rejected(ReasonMissingProduct)
		}
		if maxSets := available / perSet[id]; maxSets < actualSets {
			actualSets = maxSets
		}
	}
	if actualSets == 0 {
		return rejected(ReasonNoCompleteSets)
	}

	originals := make([]decimal.Decimal, len(rule.Items))
	originalPrice := decimal.Zero
	for i, item := range rule.Items {
		originals[i] = subtotalFor(lines[i], item.RequiredQuantity*actualSets, e.scale)
		originalPrice = originalPrice.Add(originals[i])
	}
	discountedPrice := rule.BundlePrice.Mul(decimal.NewFromInt(int64(actualSets)))
	discount := decimal.Max(decimal.Zero, originalPrice.Sub(discountedPrice))

	out := models.AllocationOutcome{
		Applied:       true,
		Discount:      discount,
		Sets:          actualSets,
		AffectedItems: make([]models.AffectedItem, 0, len(rule.Items)),
		UsedItems:     make([]models.UsedItem, 0, len(order)),
	}

	shares := apportion(originals, originalPrice, discount, e.scale)
	for i, item := range rule.Items {
		qty := item.RequiredQuantity * actualSets
		out.AffectedItems = append(out.AffectedItems, models.AffectedItem{
			ProductID:        item.ProductID,
			Quantity:         qty,
			OriginalSubtotal: originals[i],
			DiscountAmount:   shares[i],
		})
	}
	for _, id := range order {
		out.UsedItems = append(out.UsedItems, models.UsedItem{
			ProductID: id,
			Quantity:  perSet[id] * actualSets,
		})
	}
	return out
}

// apportion splits discount across parts in proportion to their weight.
// Leading shares are rounded down so the last part, which takes what is
// left, never goes negative.
func apportion(weights []decimal.Decimal, total, discount decimal.Decimal, scale int32) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return shares
	}
	if total.IsZero() || discount.IsZero() {
		for i := range shares {
			shares[i] = decimal.Zero
		}
		return shares
	}

	assigned := decimal.Zero
	last := len(weights) - 1
	for i := 0; i < last; i++ {
		shares[i] = weights[i].Mul(discount).Div(total).RoundFloor(scale)
		assigned = assigned.Add(shares[i])
	}
	shares[last] = discount.Sub(assigned)
	return shares
}
