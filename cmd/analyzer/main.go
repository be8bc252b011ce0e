package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/analysis"
	"earnwatch/internal/api/finnhub"
	"earnwatch/internal/api/twelvedata"
	"earnwatch/internal/config"
	"earnwatch/internal/history"
	"earnwatch/internal/quote"
)

// analyzer prints the volatility analysis for symbols given on the command
// line: ad-hoc lookups without a calendar scan.
func main() {
	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: analyzer SYMBOL [SYMBOL...]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config failed")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	primary := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveDataAPIKey,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	secondary := finnhub.NewClient(finnhub.ClientOptions{
		APIKey:         cfg.FinnhubAPIKey,
		RequestTimeout: cfg.RequestTimeout,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	assembler := analysis.NewAssembler(
		quote.NewResolver(cfg.QuoteCacheTTL, primary, secondary),
		history.NewResolver(primary),
		cfg.HistoryDays,
	)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	ctx := context.Background()
	for _, symbol := range os.Args[1:] {
		a, err := assembler.Analyze(ctx, symbol)
		if err != nil {
			if errors.Is(err, analysis.ErrInvalidSymbol) {
				log.Error().Str("symbol", symbol).Msg("invalid symbol")
				continue
			}
			log.Error().Err(err).Str("symbol", symbol).Msg("analysis failed")
			continue
		}
		if err := encoder.Encode(a); err != nil {
			log.Fatal().Err(err).Msg("encode failed")
		}
	}
}
