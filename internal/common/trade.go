package common

import (
	"encoding/json"
	"fmt"
)

// Trade records one taker execution: the resting orders consumed, in
// consumption order, and the incoming order that caused the match. Trades
// are transient; the book produces them at match time and never stores
// them.
type Trade struct {
	MarketRecord
	MakerOrders []*Order
	TakerOrder  *Order
}

func (t *Trade) String() string {
	return fmt.Sprintf(
		"Trade+(id=%d %s %s vol=%s px=%s makers=%d taker=%d)",
		t.ID,
		t.Instrument.Name,
		t.Side,
		t.Volume,
		t.Price,
		len(t.MakerOrders),
		t.TakerOrder.ID,
	)
}

type tradeJSON struct {
	recordJSON
	MakerOrders []*Order `json:"maker_orders"`
	TakerOrder  *Order   `json:"taker_order"`
}

// MarshalJSON emits the stable trade surface: the shared record fields
// plus maker_orders and taker_order.
func (t *Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(tradeJSON{
		recordJSON:  t.toJSON(),
		MakerOrders: t.MakerOrders,
		TakerOrder:  t.TakerOrder,
	})
}
