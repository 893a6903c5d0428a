package promo

import (
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

// allocateBuyXGetY turns the selected buy quantity into free units of the get
// product. Only the buy product consumes cart capacity; the get product is
// granted and need not be in the cart.
func (e *Engine) allocateBuyXGetY(rule models.BuyXGetYRule, sel models.PromoSelection, cart cartIndex, avail availability) models.AllocationOutcome {
	switch {
	case rule.BuyProductID == "":
		return rejected(ReasonNoBuyProduct)
	case rule.GetProductID == "":
		return rejected(ReasonNoGetProduct)
	case rule.MinQuantityPerSet <= 0:
		return rejected(ReasonInvalidMinQuantity)
	}

	if _, ok := cart.line(rule.BuyProductID); !ok {
		return rejected(ReasonBuyProductNotInCart)
	}

	selected := 0
	for _, sl := range sel.SelectedLines {
		if sl.ProductID == rule.BuyProductID && sl.Quantity > 0 {
			selected += sl.Quantity
		}
	}

	if avail.Available(rule.BuyProductID) < selected {
		return rejected(ReasonInsufficientQuantity)
	}
	if selected < rule.MinQuantityPerSet {
		return rejected(ReasonMinimumNotMet)
	}

	sets := selected / rule.MinQuantityPerSet
	if sets == 0 {
		return rejected(ReasonNoCompleteSets)
	}

	return models.AllocationOutcome{
		Applied:       true,
		Discount:      rule.GetUnitPrice.Mul(decimal.NewFromInt(int64(sets))).Round(e.scale),
		Sets:          sets,
		AffectedItems: []models.AffectedItem{},
		FreeItems: []models.FreeItem{{
			ProductID: rule.GetProductID,
			Name:      rule.GetProductName,
			Quantity:  sets,
			UnitPrice: rule.GetUnitPrice,
		}},
		UsedItems: []models.UsedItem{{
			ProductID: rule.BuyProductID,
			Quantity:  selected,
		}},
	}
}
