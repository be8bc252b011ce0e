package scan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"earnwatch/internal/analysis"
	"earnwatch/internal/model"
)

// DefaultRequestDelay spaces out per-symbol analyses so the free-tier
// provider quotas survive a full scan.
const DefaultRequestDelay = 800 * time.Millisecond

// Result pairs a scanned symbol with its analysis. Analysis is nil only for
// symbols rejected as invalid.
type Result struct {
	Symbol   string
	Analysis *model.VolatilityAnalysis
}

// Results is a scan's per-symbol output in input order.
type Results []Result

// Analyses returns the symbol-keyed view the ranker joins against.
func (rs Results) Analyses() map[string]*model.VolatilityAnalysis {
	m := make(map[string]*model.VolatilityAnalysis, len(rs))
	for _, r := range rs {
		if r.Analysis != nil {
			m[r.Symbol] = r.Analysis
		}
	}
	return m
}

// Orchestrator drives the assembler across a symbol list, strictly
// sequentially with a fixed delay between symbols. No fan-out: provider
// rate limits are per account, not per connection.
type Orchestrator struct {
	assembler *analysis.Assembler
	delay     time.Duration
	logger    zerolog.Logger
}

// NewOrchestrator creates an Orchestrator with the given inter-request delay.
func NewOrchestrator(assembler *analysis.Assembler, delay time.Duration) *Orchestrator {
	if delay <= 0 {
		delay = DefaultRequestDelay
	}
	return &Orchestrator{
		assembler: assembler,
		delay:     delay,
		logger:    log.With().Str("component", "scan_orchestrator").Logger(),
	}
}

// ScanAll analyzes every symbol in order. Invalid symbols are recorded with
// a nil analysis and the batch continues; it stops early only on context
// cancellation, returning what it has.
func (o *Orchestrator) ScanAll(ctx context.Context, symbols []string) (Results, error) {
	logger := o.logger.With().Str("scan_id", uuid.NewString()).Logger()
	logger.Info().Int("symbols", len(symbols)).Dur("delay", o.delay).Msg("Starting scan")

	// A 1-burst limiter enforces the inter-request delay while honoring
	// context cancellation mid-wait.
	limiter := rate.NewLimiter(rate.Every(o.delay), 1)

	results := make(Results, 0, len(symbols))
	for _, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			return results, err
		}

		a, err := o.assembler.Analyze(ctx, symbol)
		if err != nil {
			if errors.Is(err, analysis.ErrInvalidSymbol) {
				logger.Warn().Str("symbol", symbol).Msg("Skipping invalid symbol")
				results = append(results, Result{Symbol: symbol})
				continue
			}
			// The assembler's contract makes this unreachable for valid
			// symbols; record and keep the batch alive regardless.
			logger.Error().Err(err).Str("symbol", symbol).Msg("Unexpected analysis failure")
			results = append(results, Result{Symbol: symbol})
			continue
		}

		logger.Debug().
			Str("symbol", symbol).
			Int("volatility_score", a.VolatilityScore).
			Str("data_quality", string(a.DataQuality)).
			Msg("Symbol analyzed")
		results = append(results, Result{Symbol: symbol, Analysis: &a})
	}

	logger.Info().Int("analyzed", len(results.Analyses())).Msg("Scan complete")
	return results, nil
}
