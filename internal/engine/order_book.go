package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"vidar/internal/common"
)

type PriceLevels = btree.BTreeG[*PriceLevel]

// OrderBook is the matching core for a single (instrument, exchange)
// pair. Price levels are kept in two trees sorted best-price-first, with
// an id index for O(1) cancels and a set of inactive stop orders awaiting
// a triggering trade.
//
// Every operation runs synchronously to completion on the caller's
// goroutine; the book performs no locking and callers must serialize
// access to one instance (single-writer discipline). Distinct books are
// fully independent.
type OrderBook struct {
	instrument common.Instrument
	exchange   common.ExchangeType
	callback   common.EventSink

	// Price levels to orders sat on the price level, sorted by time added
	// as they will be push-back'd.
	bids *PriceLevels
	asks *PriceLevels

	// Resident order id to its location, for O(1) cancels.
	index map[uint64]*bookEntry

	// Inactive stop orders; an order's own price is its trigger.
	stops []*common.Order

	lastTradeID uint64
}

type bookEntry struct {
	order *common.Order
	stop  bool
}

func New(instrument common.Instrument) *OrderBook {
	return NewWithExchange(instrument, common.NoExchange)
}

func NewWithExchange(instrument common.Instrument, exchange common.ExchangeType) *OrderBook {
	return NewWithCallback(instrument, exchange, nil)
}

func NewWithCallback(instrument common.Instrument, exchange common.ExchangeType, callback common.EventSink) *OrderBook {
	// Sorted greatest first.
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price.GreaterThan(b.price)
	})
	// Sorted least first.
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price.LessThan(b.price)
	})
	return &OrderBook{
		instrument: instrument,
		exchange:   exchange,
		callback:   callback,
		bids:       bids,
		asks:       asks,
		index:      make(map[uint64]*bookEntry),
	}
}

func (b *OrderBook) Instrument() common.Instrument { return b.instrument }
func (b *OrderBook) Exchange() common.ExchangeType { return b.exchange }

// SetCallback registers the notification sink. The sink is invoked inline
// at each state change; a nil sink drops notifications.
func (b *OrderBook) SetCallback(callback common.EventSink) {
	b.callback = callback
}

func (b *OrderBook) notify(event common.Event) {
	if b.callback != nil {
		b.callback(event)
	}
}

// Add submits an order to the book. Limit orders match against crossing
// opposite levels in price-time priority and rest any permitted
// remainder; market orders sweep whatever levels exist and never rest;
// stop orders park in the stop set until a trade prints through their
// trigger. Validation and flag feasibility are checked before any
// mutation, so a returned error means an unchanged book.
func (b *OrderBook) Add(order *common.Order) error {
	if order == nil {
		return ErrInvalidOrder
	}
	if err := order.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, err)
	}
	if _, ok := b.index[order.ID]; ok {
		return fmt.Errorf("%w: duplicate id %d", ErrInvalidOrder, order.ID)
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}

	if order.OrderType == common.StopOrder {
		b.index[order.ID] = &bookEntry{order: order, stop: true}
		b.stops = append(b.stops, order)
		return nil
	}

	span, err := b.execute(order)
	if err != nil {
		return err
	}
	b.fireStops(span)
	return nil
}

// execute runs the matching loop for an active (non-stop) order and
// handles its remainder. Returns the range of prices traded so the
// caller can activate stops.
func (b *OrderBook) execute(order *common.Order) (priceSpan, error) {
	var span priceSpan

	opposite := b.asks
	if order.Side == common.Sell {
		opposite = b.bids
	}

	// FILL_OR_KILL and ALL_OR_NONE demand the full volume or nothing, so
	// feasibility is simulated before the first mutation.
	if order.Flag == common.FillOrKill || order.Flag == common.AllOrNone {
		if !b.satisfiable(order, opposite) {
			return span, ErrUnsatisfiableFlag
		}
	}

	// Consume crossing levels best-first. This is the incoming order
	// sweeping across price levels as far as its price bound and the
	// opposing liquidity go; within a level, strict FIFO.
	var makers []*common.Order
	matched := decimal.Zero
	last := decimal.Zero
	for order.Remaining().IsPositive() {
		// Min accounts for bids and asks being in inverse order, so both
		// trees yield their best price first.
		level, ok := opposite.MinMut()
		if !ok || !crosses(order, level.price) {
			break
		}
		for !level.empty() && order.Remaining().IsPositive() {
			maker := level.head()
			qty := decimal.Min(order.Remaining(), maker.Remaining())
			maker.Filled = maker.Filled.Add(qty)
			order.Filled = order.Filled.Add(qty)
			level.reduce(qty)

			matched = matched.Add(qty)
			last = level.price
			span.observe(level.price)
			makers = append(makers, maker)

			if maker.Remaining().IsPositive() {
				b.notify(common.NewOrderEvent(common.EventChange, maker))
			} else {
				level.dropHead()
				delete(b.index, maker.ID)
				b.notify(common.NewOrderEvent(common.EventFill, maker))
			}
		}
		if level.empty() {
			opposite.Delete(level)
		}
	}

	if matched.IsPositive() {
		trade := b.newTrade(order, makers, matched, last)
		b.notify(common.NewTradeEvent(common.EventTrade, trade))
	}

	if order.Remaining().IsPositive() {
		switch {
		case order.OrderType == common.MarketOrder:
			// A market remainder means the book ran out of liquidity; it
			// is never rested.
		case order.Flag == common.ImmediateOrCancel:
			// Remainder discarded rather than rested.
		default:
			b.rest(order)
		}
	}
	return span, nil
}

// crosses reports whether an order may trade at the given opposite-side
// price. Market orders ignore their own price as a bound.
func crosses(order *common.Order, levelPrice decimal.Decimal) bool {
	if order.OrderType == common.MarketOrder {
		return true
	}
	if order.Side == common.Buy {
		return levelPrice.LessThanOrEqual(order.Price)
	}
	return levelPrice.GreaterThanOrEqual(order.Price)
}

// satisfiable simulates whether the order's full remaining volume can be
// matched against current opposing liquidity, spanning as many crossing
// levels as needed. Aggregate level volumes make this a walk over levels,
// not orders.
func (b *OrderBook) satisfiable(order *common.Order, opposite *PriceLevels) bool {
	need := order.Remaining()
	opposite.Scan(func(level *PriceLevel) bool {
		if !crosses(order, level.price) {
			return false
		}
		need = need.Sub(level.volume)
		return need.IsPositive()
	})
	return !need.IsPositive()
}

// rest opens the order's remainder at its price level, lazily creating
// the level.
func (b *OrderBook) rest(order *common.Order) {
	side := b.bids
	if order.Side == common.Sell {
		side = b.asks
	}
	// Comparator only looks at price, so a bare level works as a probe.
	level, ok := side.GetMut(&PriceLevel{price: order.Price})
	if !ok {
		level = newPriceLevel(order.Price)
		side.Set(level)
	}
	level.push(order)
	b.index[order.ID] = &bookEntry{order: order}
	b.notify(common.NewOrderEvent(common.EventOpen, order))
}

func (b *OrderBook) newTrade(taker *common.Order, makers []*common.Order, volume, price decimal.Decimal) *common.Trade {
	b.lastTradeID++
	return &common.Trade{
		MarketRecord: common.MarketRecord{
			ID:         b.lastTradeID,
			Timestamp:  time.Now(),
			Volume:     volume,
			Price:      price,
			Side:       taker.Side,
			Kind:       common.TradeRecord,
			Instrument: b.instrument,
			Exchange:   b.exchange,
			Filled:     volume,
		},
		MakerOrders: makers,
		TakerOrder:  taker,
	}
}

// priceSpan is the closed range of prices an execution traded through,
// used to decide which stops fire.
type priceSpan struct {
	low, high decimal.Decimal
	traded    bool
}

func (s *priceSpan) observe(price decimal.Decimal) {
	if !s.traded {
		s.low, s.high, s.traded = price, price, true
		return
	}
	if price.LessThan(s.low) {
		s.low = price
	}
	if price.GreaterThan(s.high) {
		s.high = price
	}
}

func (s *priceSpan) extend(other priceSpan) {
	if other.traded {
		s.observe(other.low)
		s.observe(other.high)
	}
}

// fireStops activates every stop order triggered by the executed price
// range, transitively: activations that trade may trigger further stops,
// all within the same Add call.
func (b *OrderBook) fireStops(span priceSpan) {
	for span.traded {
		fired := b.takeTriggered(span)
		if len(fired) == 0 {
			return
		}
		var next priceSpan
		for _, stop := range fired {
			target := stop.StopTarget
			if target.Timestamp.IsZero() {
				target.Timestamp = time.Now()
			}
			if _, ok := b.index[target.ID]; ok {
				log.Warn().
					Uint64("id", target.ID).
					Msg("stop target id already resident, activation dropped")
				continue
			}
			// An activation failure (an unsatisfiable flag on the
			// target) only affects that stop, never the outer add.
			result, err := b.execute(target)
			if err != nil {
				log.Warn().
					Err(err).
					Uint64("id", target.ID).
					Msg("stop activation rejected")
				continue
			}
			next.extend(result)
		}
		span = next
	}
}

// takeTriggered removes and returns the stops fired by the executed
// range: buy stops trigger once a trade prints at or above their
// trigger, sell stops at or below.
func (b *OrderBook) takeTriggered(span priceSpan) []*common.Order {
	var fired []*common.Order
	kept := b.stops[:0]
	for _, stop := range b.stops {
		triggered := false
		if stop.Side == common.Buy {
			triggered = span.high.GreaterThanOrEqual(stop.Price)
		} else {
			triggered = span.low.LessThanOrEqual(stop.Price)
		}
		if triggered {
			delete(b.index, stop.ID)
			fired = append(fired, stop)
		} else {
			kept = append(kept, stop)
		}
	}
	b.stops = kept
	return fired
}

// Cancel removes a resident order. Ids of fully filled, already canceled
// or unknown orders report ErrOrderNotFound.
func (b *OrderBook) Cancel(id uint64) error {
	entry, ok := b.index[id]
	if !ok {
		return ErrOrderNotFound
	}
	delete(b.index, id)
	order := entry.order

	if entry.stop {
		for i, stop := range b.stops {
			if stop.ID == id {
				b.stops = append(b.stops[:i], b.stops[i+1:]...)
				b.notify(common.NewOrderEvent(common.EventCancel, order))
				return nil
			}
		}
		log.Panic().Uint64("id", id).Msg("indexed stop order missing from stop set")
	}

	side := b.bids
	if order.Side == common.Sell {
		side = b.asks
	}
	level, ok := side.GetMut(&PriceLevel{price: order.Price})
	if !ok || level.remove(id) == nil {
		// The index and the levels disagree about where this order
		// lives. That is a logic defect, not an input problem.
		log.Panic().
			Uint64("id", id).
			Str("price", order.Price.String()).
			Msg("indexed order missing from its level")
	}
	if level.empty() {
		side.Delete(level)
	}
	b.notify(common.NewOrderEvent(common.EventCancel, order))
	return nil
}

// Quote is one side of the top of book.
type Quote struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// BookTop reports the best price and aggregate volume per side; a side
// with no levels reports nil rather than a sentinel price.
type BookTop struct {
	Bid *Quote
	Ask *Quote
}

func (b *OrderBook) TopOfBook() BookTop {
	var top BookTop
	if level, ok := b.bids.Min(); ok {
		top.Bid = &Quote{Price: level.price, Volume: level.volume}
	}
	if level, ok := b.asks.Min(); ok {
		top.Ask = &Quote{Price: level.price, Volume: level.volume}
	}
	return top
}

// Spread is best ask minus best bid.
func (b *OrderBook) Spread() (decimal.Decimal, error) {
	top := b.TopOfBook()
	if top.Bid == nil || top.Ask == nil {
		return decimal.Zero, ErrEmptyBookQuery
	}
	return top.Ask.Price.Sub(top.Bid.Price), nil
}

// Level returns the resting orders at the exact price in time priority;
// empty if no level exists there. The book is never crossed between
// calls, so a price can live on at most one side.
func (b *OrderBook) Level(price decimal.Decimal) []*common.Order {
	probe := &PriceLevel{price: price}
	if level, ok := b.bids.Get(probe); ok {
		return level.Orders()
	}
	if level, ok := b.asks.Get(probe); ok {
		return level.Orders()
	}
	return []*common.Order{}
}

// PriceAtDepth returns both sides' prices at the given rank from the
// best; depth 0 is the top of book. ErrEmptyBookQuery when either side
// is shallower than the requested depth.
func (b *OrderBook) PriceAtDepth(depth int) (bid, ask decimal.Decimal, err error) {
	bidLevel := levelAt(b.bids, depth)
	askLevel := levelAt(b.asks, depth)
	if bidLevel == nil || askLevel == nil {
		return decimal.Zero, decimal.Zero, ErrEmptyBookQuery
	}
	return bidLevel.price, askLevel.price, nil
}

func levelAt(side *PriceLevels, depth int) *PriceLevel {
	var found *PriceLevel
	i := 0
	side.Scan(func(level *PriceLevel) bool {
		if i == depth {
			found = level
			return false
		}
		i++
		return true
	})
	return found
}

// LevelSnapshot pairs the bid and ask quotes at one depth rank.
type LevelSnapshot struct {
	Bid *Quote
	Ask *Quote
}

// Levels snapshots the whole book, best to worst. A side exhausted
// before the other reports nil quotes at the deeper ranks.
func (b *OrderBook) Levels() []LevelSnapshot {
	bids := collectQuotes(b.bids)
	asks := collectQuotes(b.asks)
	out := make([]LevelSnapshot, max(len(bids), len(asks)))
	for i := range out {
		if i < len(bids) {
			out[i].Bid = bids[i]
		}
		if i < len(asks) {
			out[i].Ask = asks[i]
		}
	}
	return out
}

func collectQuotes(side *PriceLevels) []*Quote {
	quotes := make([]*Quote, 0, side.Len())
	side.Scan(func(level *PriceLevel) bool {
		quotes = append(quotes, &Quote{Price: level.price, Volume: level.volume})
		return true
	})
	return quotes
}

func (b *OrderBook) String() string {
	top := b.TopOfBook()
	bid, ask := "-", "-"
	if top.Bid != nil {
		bid = fmt.Sprintf("%s@%s", top.Bid.Volume, top.Bid.Price)
	}
	if top.Ask != nil {
		ask = fmt.Sprintf("%s@%s", top.Ask.Volume, top.Ask.Price)
	}
	return fmt.Sprintf("OrderBook+(%s bid=%s ask=%s)", b.instrument.Name, bid, ask)
}
