package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(productID string, qty int, subtotal string) models.CartLine {
	return models.CartLine{ProductID: productID, Quantity: qty, Subtotal: money(subtotal)}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, money(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func bundlePromo(id string, price string, items ...models.BundleItem) *models.Promotion {
	return &models.Promotion{
		ID:   id,
		Name: "Bundle " + id,
		Rule: models.BundleRule{Items: items, BundlePrice: money(price)},
	}
}

func buyXGetYPromo(id, buy, get string, minPerSet int, getPrice string) *models.Promotion {
	return &models.Promotion{
		ID:   id,
		Name: "BXGY " + id,
		Rule: models.BuyXGetYRule{
			BuyProductID:      buy,
			GetProductID:      get,
			GetProductName:    "Free " + get,
			GetUnitPrice:      money(getPrice),
			MinQuantityPerSet: minPerSet,
		},
	}
}

func productPromo(id string, kind models.DiscountKind, value string, eligible ...string) *models.Promotion {
	return &models.Promotion{
		ID:   id,
		Name: "Product " + id,
		Rule: models.ProductSpecificRule{
			EligibleProductIDs: eligible,
			Kind:               kind,
			Value:              money(value),
		},
	}
}

func resolverOf(promos ...*models.Promotion) Resolver {
	m := make(map[string]*models.Promotion, len(promos))
	for _, p := range promos {
		m[p.ID] = p
	}
	return MapResolver(m)
}

func pick(productID string, qty int) models.SelectedLine {
	return models.SelectedLine{ProductID: productID, Quantity: qty}
}
