package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

func runProduct(t *testing.T, p *models.Promotion, selected []models.SelectedLine, cart ...models.CartLine) models.AllocationOutcome {
	t.Helper()
	e := NewEngine(nil, DefaultScale)
	idx := indexCart(cart)
	sel := models.PromoSelection{PromoID: p.ID, SelectedLines: selected}
	return e.allocateProductSpecific(p.ID, p.Rule.(models.ProductSpecificRule), sel, idx, newLedger(idx))
}

func TestProductSpecific_Percentage(t *testing.T) {
	p := productPromo("p1", models.DiscountKindPercentage, "10", "C")

	out := runProduct(t, p, []models.SelectedLine{pick("C", 2)}, line("C", 2, "20000"))

	require.True(t, out.Applied)
	assertMoney(t, "2000", out.Discount)
	require.Len(t, out.AffectedItems, 1)
	assert.Equal(t, "C", out.AffectedItems[0].ProductID)
	assertMoney(t, "20000", out.AffectedItems[0].OriginalSubtotal)
	assertMoney(t, "2000", out.AffectedItems[0].DiscountAmount)
	assert.Equal(t, []models.UsedItem{{ProductID: "C", Quantity: 2}}, out.UsedItems)
}

func TestProductSpecific_FixedCappedAtSubtotal(t *testing.T) {
	p := productPromo("p1", models.DiscountKindFixed, "5000", "D")

	out := runProduct(t, p, []models.SelectedLine{pick("D", 1)}, line("D", 1, "3000"))

	require.True(t, out.Applied)
	assertMoney(t, "3000", out.Discount)
	assertMoney(t, "3000", out.AffectedItems[0].DiscountAmount)
}

func TestProductSpecific_FixedPerUnit(t *testing.T) {
	p := productPromo("p1", models.DiscountKindFixed, "2000", "D")

	out := runProduct(t, p, []models.SelectedLine{pick("D", 3)}, line("D", 4, "40000"))

	require.True(t, out.Applied)
	assertMoney(t, "6000", out.Discount)
	assertMoney(t, "30000", out.AffectedItems[0].OriginalSubtotal)
}

func TestProductSpecific_PartialApplication(t *testing.T) {
	p := productPromo("p1", models.DiscountKindPercentage, "50", "A", "B")

	out := runProduct(t, p,
		[]models.SelectedLine{pick("X", 1), pick("A", 1), pick("B", 1)},
		line("A", 1, "10000"), line("X", 1, "10000"))

	require.True(t, out.Applied)
	assertMoney(t, "5000", out.Discount)
	assert.Equal(t, []models.UsedItem{{ProductID: "A", Quantity: 1}}, out.UsedItems)
}

func TestProductSpecific_NothingProcessed(t *testing.T) {
	p := productPromo("p1", models.DiscountKindPercentage, "10", "A")

	out := runProduct(t, p, []models.SelectedLine{pick("B", 1)}, line("A", 1, "10000"), line("B", 1, "10000"))

	assert.False(t, out.Applied)
	assert.Equal(t, ReasonNoEligibleProducts, out.Reason)
	assertMoney(t, "0", out.Discount)
}

func TestProductSpecific_RepeatedPairsShareAvailability(t *testing.T) {
	p := productPromo("p1", models.DiscountKindPercentage, "10", "A")

	out := runProduct(t, p, []models.SelectedLine{pick("A", 2), pick("A", 2)}, line("A", 3, "30000"))

	require.True(t, out.Applied)
	assert.Equal(t, []models.UsedItem{
		{ProductID: "A", Quantity: 2},
		{ProductID: "A", Quantity: 1},
	}, out.UsedItems)
	assertMoney(t, "3000", out.Discount)
}

func TestProductSpecific_PercentageAboveHundredCapped(t *testing.T) {
	p := productPromo("p1", models.DiscountKindPercentage, "150", "A")

	out := runProduct(t, p, []models.SelectedLine{pick("A", 1)}, line("A", 1, "10000"))

	require.True(t, out.Applied)
	assertMoney(t, "10000", out.Discount)
}

func TestProductSpecific_InvalidDiscount(t *testing.T) {
	p := productPromo("p1", models.DiscountKind("bogus"), "10", "A")

	out := runProduct(t, p, []models.SelectedLine{pick("A", 1)}, line("A", 1, "10000"))
	assert.Equal(t, ReasonInvalidDiscount, out.Reason)

	neg := productPromo("p2", models.DiscountKindFixed, "-1", "A")
	out = runProduct(t, neg, []models.SelectedLine{pick("A", 1)}, line("A", 1, "10000"))
	assert.Equal(t, ReasonInvalidDiscount, out.Reason)
}
