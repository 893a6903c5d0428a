// Package promo allocates cashier-selected promotions over an order's cart.
//
// Selections are processed strictly in the order the cashier applied them.
// Each one sees the cart as left by the selections before it: a unit claimed
// by one promotion is never counted toward another. The package performs no
// I/O; promotion definitions come in through a Resolver.
package promo

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

// DefaultScale is the number of decimal places discounts are rounded to.
const DefaultScale int32 = 2

// Resolver returns the definition for a promo ID, or nil when unknown.
type Resolver func(promoID string) *models.Promotion

// MapResolver resolves from an in-memory set of promotions.
func MapResolver(promos map[string]*models.Promotion) Resolver {
	return func(id string) *models.Promotion {
		return promos[id]
	}
}

type Engine struct {
	logger *zap.Logger
	scale  int32
}

// NewEngine returns an engine rounding to scale decimal places. A nil logger
// is replaced with a no-op one.
func NewEngine(logger *zap.Logger, scale int32) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scale < 0 {
		scale = DefaultScale
	}
	return &Engine{logger: logger, scale: scale}
}

// Allocate runs every selection against a fresh ledger for this cart. Business
// infeasibility never fails the call; rejected selections are reported in the
// result. An error means an allocator broke the ledger invariant and the whole
// result must be discarded.
func (e *Engine) Allocate(selections []models.PromoSelection, cart []models.CartLine, resolve Resolver) (*models.AllocationResult, error) {
	idx := indexCart(cart)
	ledger := newLedger(idx)

	result := &models.AllocationResult{
		TotalDiscount: decimal.Zero,
		AppliedPromos: []models.AppliedPromo{},
		FreeItems:     []models.FreeItem{},
	}

	for _, sel := range selections {
		promotion, outcome := e.evaluate(sel, idx, ledger, resolve)
		if !outcome.Applied {
			e.logger.Debug("promotion selection rejected",
				zap.String("promo_id", sel.PromoID),
				zap.String("reason", outcome.Reason))
			result.Rejected = append(result.Rejected, models.RejectedSelection{
				PromoID: sel.PromoID,
				Reason:  outcome.Reason,
			})
			continue
		}

		for _, used := range outcome.UsedItems {
			if err := ledger.Commit(used.ProductID, used.Quantity); err != nil {
				return nil, fmt.Errorf("commit promo %s: %w", sel.PromoID, err)
			}
		}

		result.TotalDiscount = result.TotalDiscount.Add(outcome.Discount)
		result.AppliedPromos = append(result.AppliedPromos, models.AppliedPromo{
			PromoID:       sel.PromoID,
			Name:          promotion.Name,
			Type:          promotion.Type(),
			Discount:      outcome.Discount,
			Sets:          outcome.Sets,
			AffectedItems: outcome.AffectedItems,
			FreeItems:     outcome.FreeItems,
		})
		result.FreeItems = mergeFreeItems(result.FreeItems, outcome.FreeItems)
	}

	result.UsedItems = ledger.UsedItems()
	return result, nil
}

// Validate checks each selection on its own against the untouched cart. It
// uses the same allocators as Allocate, each with a throwaway ledger.
func (e *Engine) Validate(selections []models.PromoSelection, cart []models.CartLine, resolve Resolver) []models.ValidationResult {
	idx := indexCart(cart)
	results := make([]models.ValidationResult, 0, len(selections))
	for _, sel := range selections {
		_, outcome := e.evaluate(sel, idx, newLedger(idx), resolve)
		results = append(results, models.ValidationResult{
			PromoID: sel.PromoID,
			Valid:   outcome.Applied,
			Error:   outcome.Reason,
		})
	}
	return results
}

func (e *Engine) evaluate(sel models.PromoSelection, cart cartIndex, avail availability, resolve Resolver) (*models.Promotion, models.AllocationOutcome) {
	var promotion *models.Promotion
	if resolve != nil {
		promotion = resolve(sel.PromoID)
	}
	if promotion == nil || promotion.Rule == nil {
		return nil, rejected(ReasonNotFound)
	}
	if !promotion.Type().Selectable() {
		return promotion, rejected(ReasonNotSelectable)
	}

	switch rule := promotion.Rule.(type) {
	case models.BundleRule:
		return promotion, e.allocateBundle(rule, sel, cart, avail)
	case models.BuyXGetYRule:
		return promotion, e.allocateBuyXGetY(rule, sel, cart, avail)
	case models.ProductSpecificRule:
		return promotion, e.allocateProductSpecific(promotion.ID, rule, sel, cart, avail)
	default:
		return promotion, rejected(ReasonNotSelectable)
	}
}

func mergeFreeItems(into, items []models.FreeItem) []models.FreeItem {
	for _, it := range items {
		merged := false
		for i := range into {
			if into[i].ProductID == it.ProductID && into[i].UnitPrice.Equal(it.UnitPrice) {
				into[i].Quantity += it.Quantity
				merged = true
				break
			}
		}
		if !merged {
			into = append(into, it)
		}
	}
	return into
}
