package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/analysis"
	"earnwatch/internal/api/finnhub"
	"earnwatch/internal/api/twelvedata"
	"earnwatch/internal/config"
	"earnwatch/internal/history"
	"earnwatch/internal/model"
	"earnwatch/internal/quote"
	"earnwatch/internal/rank"
	"earnwatch/internal/scan"
)

func main() {
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

	quotes := quote.NewResolver(cfg.QuoteCacheTTL, primary, secondary)
	hist := history.NewResolver(primary)
	assembler := analysis.NewAssembler(quotes, hist, cfg.HistoryDays)
	ranker := rank.NewRanker(cfg.TopOpportunities, cfg.MinQualityScore)
	orchestrator := scan.NewOrchestrator(assembler, cfg.RequestDelay)

	run := func() {
		if err := runScan(context.Background(), secondary, orchestrator, ranker, cfg); err != nil {
			log.Error().Err(err).Msg("scan failed")
		}
	}

	if cfg.ScanSchedule != "" {
		log.Info().Str("schedule", cfg.ScanSchedule).Msg("Running on schedule")
		c := cron.New()
		if _, err := c.AddFunc(cfg.ScanSchedule, run); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ScanSchedule).Msg("invalid scan schedule")
		}
		c.Run()
		return
	}

	run()
}

// runScan fetches the earnings calendar, analyzes every symbol on it and
// writes the ranked opportunities to stdout as JSON for downstream
// consumers.
func runScan(ctx context.Context, calendar model.EarningsSource, orchestrator *scan.Orchestrator, ranker *rank.Ranker, cfg *config.Config) error {
	from := time.Now()
	to := from.AddDate(0, 0, cfg.CalendarDaysAhead)

	events, err := calendar.FetchEarningsCalendar(ctx, from, to)
	if err != nil {
		return err
	}
	log.Info().Int("events", len(events)).Msg("Earnings calendar fetched")

	results, err := orchestrator.ScanAll(ctx, uniqueSymbols(events))
	if err != nil {
		return err
	}

	opportunities := ranker.Rank(events, results.Analyses())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(opportunities)
}

// uniqueSymbols extracts each symbol once, preserving calendar order.
func uniqueSymbols(events []model.EarningsEvent) []string {
	seen := make(map[string]bool, len(events))
	symbols := make([]string, 0, len(events))
	for _, e := range events {
		if seen[e.Symbol] {
			continue
		}
		seen[e.Symbol] = true
		symbols = append(symbols, e.Symbol)
	}
	return symbols
}
