package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketRecord carries the attributes shared by every tradable unit. Order
// and Trade embed it rather than inheriting from it; the kind-specific
// fields live on the embedding type.
type MarketRecord struct {
	ID         uint64          // Unique within a book, monotonic by submission
	Timestamp  time.Time       // Time of arrival into the book
	Volume     decimal.Decimal // Total volume requested, > 0
	Price      decimal.Decimal
	Side       Side
	Kind       RecordKind
	Instrument Instrument
	Exchange   ExchangeType
	Filled     decimal.Decimal // Volume matched so far, 0 <= Filled <= Volume
}

// Remaining is the volume still open for matching.
func (r *MarketRecord) Remaining() decimal.Decimal {
	return r.Volume.Sub(r.Filled)
}

// recordJSON is the stable shared serialization surface consumed by the
// export layer. Field names must not change across engine versions.
type recordJSON struct {
	ID         uint64          `json:"id"`
	Timestamp  int64           `json:"timestamp"`
	Volume     decimal.Decimal `json:"volume"`
	Price      decimal.Decimal `json:"price"`
	Side       string          `json:"side"`
	Kind       string          `json:"kind"`
	Instrument string          `json:"instrument"`
	Exchange   string          `json:"exchange"`
	Filled     decimal.Decimal `json:"filled"`
}

func (r *MarketRecord) toJSON() recordJSON {
	return recordJSON{
		ID:         r.ID,
		Timestamp:  r.Timestamp.UnixNano(),
		Volume:     r.Volume,
		Price:      r.Price,
		Side:       r.Side.String(),
		Kind:       r.Kind.String(),
		Instrument: r.Instrument.Name,
		Exchange:   r.Exchange.Name,
		Filled:     r.Filled,
	}
}
