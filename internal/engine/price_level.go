package engine

import (
	"github.com/shopspring/decimal"

	"vidar/internal/common"
)

// PriceLevel is a FIFO queue of resting orders sharing one price. The
// aggregate remaining volume is maintained incrementally on every push,
// partial fill and removal so that volume queries cost O(1).
//
// A level never exists empty: the owning book deletes it when the last
// order leaves.
type PriceLevel struct {
	price  decimal.Decimal
	orders []*common.Order
	volume decimal.Decimal
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{price: price}
}

func (l *PriceLevel) Price() decimal.Decimal { return l.price }

// Volume is the sum of (volume - filled) over the level's orders.
func (l *PriceLevel) Volume() decimal.Decimal { return l.volume }

func (l *PriceLevel) Len() int { return len(l.orders) }

// Orders returns the resting orders in time priority. The slice is a
// copy; the orders are live.
func (l *PriceLevel) Orders() []*common.Order {
	out := make([]*common.Order, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *PriceLevel) empty() bool { return len(l.orders) == 0 }

func (l *PriceLevel) head() *common.Order { return l.orders[0] }

// push appends an order at the back of the queue, preserving strict
// arrival order within the level.
func (l *PriceLevel) push(o *common.Order) {
	l.orders = append(l.orders, o)
	l.volume = l.volume.Add(o.Remaining())
}

// reduce accounts a partial or full fill of a resident order.
func (l *PriceLevel) reduce(qty decimal.Decimal) {
	l.volume = l.volume.Sub(qty)
}

// dropHead removes the front order after it has been fully consumed. Its
// remaining volume is zero by then, so the aggregate needs no adjustment.
func (l *PriceLevel) dropHead() {
	l.orders[0] = nil
	l.orders = l.orders[1:]
}

// remove unlinks the order with the given id, returning it, or nil if the
// id is not resident at this level.
func (l *PriceLevel) remove(id uint64) *common.Order {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			l.volume = l.volume.Sub(o.Remaining())
			return o
		}
	}
	return nil
}
