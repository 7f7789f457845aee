package engine

import "vidar/internal/common"

// BookIterator is an explicit cursor over every resting order: bid side
// best to worst, then ask side best to worst, FIFO within each level. It
// snapshots the level structure when created or reset and walks orders
// lazily; mutate the book mid-walk and the results are unspecified, so
// Reset after mutating.
type BookIterator struct {
	book   *OrderBook
	levels []*PriceLevel
	li, oi int
}

// Iter starts a fresh traversal of the book's resting orders.
func (b *OrderBook) Iter() *BookIterator {
	it := &BookIterator{book: b}
	it.Reset()
	return it
}

// Reset restarts the traversal against the book's current state.
func (it *BookIterator) Reset() {
	it.levels = it.levels[:0]
	it.book.bids.Scan(func(level *PriceLevel) bool {
		it.levels = append(it.levels, level)
		return true
	})
	it.book.asks.Scan(func(level *PriceLevel) bool {
		it.levels = append(it.levels, level)
		return true
	})
	it.li, it.oi = 0, 0
}

// Next yields the next resting order, or false once exhausted.
func (it *BookIterator) Next() (*common.Order, bool) {
	for it.li < len(it.levels) {
		level := it.levels[it.li]
		if it.oi < len(level.orders) {
			order := level.orders[it.oi]
			it.oi++
			return order, true
		}
		it.li++
		it.oi = 0
	}
	return nil, false
}
