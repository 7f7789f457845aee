package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrBadVolume       = errors.New("order volume must be positive")
	ErrBadPrice        = errors.New("order price must be positive")
	ErrBadFill         = errors.New("order filled exceeds volume")
	ErrBadStopTarget   = errors.New("stop order requires a limit or market target")
	ErrStopSideMatch   = errors.New("stop target must share the stop order's side")
	ErrNestedStopOrder = errors.New("stop target may not itself be a stop order")
)

// Order is a market record plus the fields that only matter while the
// record is an instruction rather than an execution.
//
// A stop order uses its own Price as the trigger level and carries the
// order to activate in StopTarget; for every other order type StopTarget
// is nil.
type Order struct {
	MarketRecord
	OrderType  OrderType
	Flag       OrderFlag
	StopTarget *Order
	Notional   decimal.Decimal
}

// Validate checks the order is well formed before it touches a book.
func (o *Order) Validate() error {
	if !o.Volume.IsPositive() {
		return ErrBadVolume
	}
	if o.Filled.IsNegative() || o.Filled.GreaterThan(o.Volume) {
		return ErrBadFill
	}
	// Market orders match at whatever prices exist, so their own price is
	// not meaningful; limit and stop prices bound real book positions.
	if o.OrderType != MarketOrder && !o.Price.IsPositive() {
		return ErrBadPrice
	}
	if o.OrderType == StopOrder {
		if o.StopTarget == nil {
			return ErrBadStopTarget
		}
		if o.StopTarget.OrderType == StopOrder {
			return ErrNestedStopOrder
		}
		if o.StopTarget.Side != o.Side {
			return ErrStopSideMatch
		}
		return o.StopTarget.Validate()
	}
	return nil
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"Order+(id=%d %s %s %s vol=%s px=%s filled=%s flag=%s)",
		o.ID,
		o.Instrument.Name,
		o.Side,
		o.OrderType,
		o.Volume,
		o.Price,
		o.Filled,
		o.Flag,
	)
}

type orderJSON struct {
	recordJSON
	OrderType  string          `json:"order_type"`
	Flag       string          `json:"flag"`
	StopTarget *Order          `json:"stop_target"`
	Notional   decimal.Decimal `json:"notional"`
}

// MarshalJSON emits the stable order surface: the shared record fields
// plus order_type, flag, stop_target and notional.
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		recordJSON: o.toJSON(),
		OrderType:  o.OrderType.String(),
		Flag:       o.Flag.String(),
		StopTarget: o.StopTarget,
		Notional:   o.Notional,
	})
}
