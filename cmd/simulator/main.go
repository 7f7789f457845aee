package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vidar/internal/common"
	"vidar/internal/sim"
)

func main() {
	instruments := flag.String("instruments", "BTC,ETH", "Comma-separated instrument symbols")
	exchange := flag.String("exchange", "vidar-sim", "Exchange name stamped on records")
	orders := flag.Int("orders", 1000, "Orders submitted per book")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	verbose := flag.Bool("v", false, "Log individual trades")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := sim.Config{
		Exchange:      common.NewExchangeType(*exchange),
		OrdersPerBook: *orders,
		Seed:          *seed,
	}
	for _, name := range strings.Split(*instruments, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cfg.Instruments = append(cfg.Instruments, common.NewInstrument(name, common.Currency))
	}
	if len(cfg.Instruments) == 0 {
		log.Fatal().Msg("no instruments given")
	}

	if err := sim.New(cfg).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
}
