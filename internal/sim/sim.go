package sim

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"vidar/internal/common"
	"vidar/internal/engine"
)

// Simulator drives one order book per instrument with a random order
// flow. Each book gets exactly one driver goroutine, honoring the
// engine's single-writer discipline; books never share state, so the
// drivers need no coordination beyond the owning tomb.
type Config struct {
	Instruments   []common.Instrument
	Exchange      common.ExchangeType
	OrdersPerBook int
	Seed          int64
}

type Simulator struct {
	cfg Config
	run string
}

func New(cfg Config) *Simulator {
	if cfg.OrdersPerBook <= 0 {
		cfg.OrdersPerBook = 1000
	}
	return &Simulator{
		cfg: cfg,
		run: uuid.NewString(),
	}
}

// Run blocks until every driver finishes or the context is canceled.
func (s *Simulator) Run(ctx context.Context) error {
	t, _ := tomb.WithContext(ctx)
	for i, instrument := range s.cfg.Instruments {
		t.Go(func() error {
			return s.drive(t, instrument, s.cfg.Seed+int64(i))
		})
	}
	return t.Wait()
}

// drive is one book's writer: it submits a random flow of limit, market
// and stop orders around a wandering mid price, cancelling a slice of
// what it opened, and logs the notifications the book pushes back.
func (s *Simulator) drive(t *tomb.Tomb, instrument common.Instrument, seed int64) error {
	logger := log.With().
		Str("run", s.run).
		Str("instrument", instrument.Name).
		Logger()

	var trades, opens, cancels int
	book := engine.NewWithCallback(instrument, s.cfg.Exchange, func(event common.Event) {
		switch event.Type {
		case common.EventTrade:
			trades++
			trade := event.Target.(*common.Trade)
			logger.Debug().
				Str("volume", trade.Volume.String()).
				Str("price", trade.Price.String()).
				Int("makers", len(trade.MakerOrders)).
				Msg("trade")
		case common.EventOpen:
			opens++
		case common.EventCancel:
			cancels++
		}
	})

	rng := rand.New(rand.NewSource(seed))
	mid := decimal.NewFromInt(100)
	var lastID uint64
	var open []uint64

	for i := 0; i < s.cfg.OrdersPerBook; i++ {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		lastID++
		order := s.nextOrder(rng, instrument, mid, lastID)
		if order.OrderType == common.StopOrder {
			lastID++
			order.StopTarget.ID = lastID
		}
		if err := book.Add(order); err != nil {
			// Unsatisfiable flags are an expected part of the flow.
			logger.Debug().Err(err).Uint64("id", order.ID).Msg("order rejected")
			continue
		}
		if order.OrderType == common.LimitOrder && order.Remaining().IsPositive() {
			open = append(open, order.ID)
		}

		// Occasionally cancel something we opened earlier. Already
		// filled ids come back ErrOrderNotFound, which is fine.
		if len(open) > 0 && rng.Intn(10) == 0 {
			idx := rng.Intn(len(open))
			_ = book.Cancel(open[idx])
			open = append(open[:idx], open[idx+1:]...)
		}

		// Let the mid wander a tick either way.
		mid = mid.Add(decimal.NewFromInt(int64(rng.Intn(3) - 1)))
	}

	logTop(logger, book)
	logger.Info().
		Int("trades", trades).
		Int("opens", opens).
		Int("cancels", cancels).
		Msg("driver finished")
	return nil
}

// nextOrder draws a mostly-limit order near the mid: limit 80%, market
// 10%, stop 10%.
func (s *Simulator) nextOrder(rng *rand.Rand, instrument common.Instrument, mid decimal.Decimal, id uint64) *common.Order {
	side := common.Buy
	if rng.Intn(2) == 1 {
		side = common.Sell
	}
	offset := decimal.NewFromInt(int64(rng.Intn(5)))
	price := mid.Sub(offset)
	if side == common.Sell {
		price = mid.Add(offset)
	}
	volume := decimal.NewFromInt(int64(rng.Intn(20) + 1))

	record := common.MarketRecord{
		ID:         id,
		Volume:     volume,
		Price:      price,
		Side:       side,
		Kind:       common.OrderRecord,
		Instrument: instrument,
		Exchange:   s.cfg.Exchange,
	}

	switch roll := rng.Intn(10); {
	case roll < 8:
		flag := common.FlagNone
		if rng.Intn(20) == 0 {
			flag = common.ImmediateOrCancel
		}
		return &common.Order{MarketRecord: record, OrderType: common.LimitOrder, Flag: flag}
	case roll == 8:
		return &common.Order{MarketRecord: record, OrderType: common.MarketOrder}
	default:
		target := &common.Order{MarketRecord: record, OrderType: common.MarketOrder}
		trigger := record
		// Trigger a few ticks through the mid so some stops fire.
		if side == common.Buy {
			trigger.Price = mid.Add(decimal.NewFromInt(int64(rng.Intn(3) + 1)))
		} else {
			trigger.Price = mid.Sub(decimal.NewFromInt(int64(rng.Intn(3) + 1)))
		}
		return &common.Order{MarketRecord: trigger, OrderType: common.StopOrder, StopTarget: target}
	}
}

func logTop(logger zerolog.Logger, book *engine.OrderBook) {
	top := book.TopOfBook()
	event := logger.Info()
	if top.Bid != nil {
		event = event.
			Str("bid_price", top.Bid.Price.String()).
			Str("bid_volume", top.Bid.Volume.String())
	}
	if top.Ask != nil {
		event = event.
			Str("ask_price", top.Ask.Price.String()).
			Str("ask_volume", top.Ask.Volume.String())
	}
	event.Msg("top of book")
}
