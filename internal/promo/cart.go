package promo

import (
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

// cartIndex is the cart keyed by product. Several lines of the same product
// (different notes, split entry) are folded into one.
type cartIndex struct {
	lines map[string]models.CartLine
	order []string
}

func indexCart(lines []models.CartLine) cartIndex {
	idx := cartIndex{lines: make(map[string]models.CartLine, len(lines))}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		cur, ok := idx.lines[l.ProductID]
		if !ok {
			idx.order = append(idx.order, l.ProductID)
			idx.lines[l.ProductID] = l
			continue
		}
		cur.Quantity += l.Quantity
		cur.Subtotal = cur.Subtotal.Add(l.Subtotal)
		idx.lines[l.ProductID] = cur
	}
	return idx
}

func (c cartIndex) line(productID string) (models.CartLine, bool) {
	l, ok := c.lines[productID]
	return l, ok
}

// subtotalFor prices qty units of the line. It multiplies before dividing so
// that the full quantity maps back to the exact line subtotal.
func subtotalFor(l models.CartLine, qty int, scale int32) decimal.Decimal {
	if l.Quantity <= 0 || qty <= 0 {
		return decimal.Zero
	}
	return l.Subtotal.
		Mul(decimal.NewFromInt(int64(qty))).
		Div(decimal.NewFromInt(int64(l.Quantity))).
		Round(scale)
}
