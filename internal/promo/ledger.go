package promo

import (
	"fmt"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/models"
)

// InvariantViolation means an allocator tried to claim units that are not
// there. It is a bookkeeping bug, never a business outcome.
type InvariantViolation struct {
	ProductID string
	Claimed   int
	Requested int
	Capacity  int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("ledger invariant violated for product %q: claimed %d + requested %d exceeds capacity %d",
		e.ProductID, e.Claimed, e.Requested, e.Capacity)
}

type availability interface {
	Available(productID string) int
}

// Ledger tracks how many units of each product promotions earlier in the same
// allocation run have claimed. One ledger per order; never shared.
type Ledger struct {
	capacity map[string]int
	claimed  map[string]int
	order    []string
}

// NewLedger returns an empty ledger sized to the cart.
func NewLedger(cart []models.CartLine) *Ledger {
	return newLedger(indexCart(cart))
}

func newLedger(idx cartIndex) *Ledger {
	l := &Ledger{
		capacity: make(map[string]int, len(idx.lines)),
		claimed:  make(map[string]int),
	}
	for id, line := range idx.lines {
		l.capacity[id] = line.Quantity
	}
	return l
}

func (l *Ledger) Claimed(productID string) int {
	return l.claimed[productID]
}

// Available returns the cart quantity not yet claimed.
func (l *Ledger) Available(productID string) int {
	return l.capacity[productID] - l.claimed[productID]
}

// Commit claims qty units of productID. It is the only mutation point.
func (l *Ledger) Commit(productID string, qty int) error {
	if qty == 0 {
		return nil
	}
	claimed := l.claimed[productID]
	capacity := l.capacity[productID]
	if qty < 0 || claimed+qty > capacity {
		return &InvariantViolation{
			ProductID: productID,
			Claimed:   claimed,
			Requested: qty,
			Capacity:  capacity,
		}
	}
	if _, seen := l.claimed[productID]; !seen {
		l.order = append(l.order, productID)
	}
	l.claimed[productID] = claimed + qty
	return nil
}

// UsedItems lists claimed totals in first-claim order.
func (l *Ledger) UsedItems() []models.UsedItem {
	items := make([]models.UsedItem, 0, len(l.order))
	for _, id := range l.order {
		items = append(items, models.UsedItem{ProductID: id, Quantity: l.claimed[id]})
	}
	return items
}
