package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/history"
	"earnwatch/internal/model"
	"earnwatch/internal/quote"
	"earnwatch/internal/volatility"
)

// ErrInvalidSymbol is the only error Analyze returns. Anything that is not a
// plausible ticker is rejected up front; everything after that degrades to
// estimates instead of failing.
var ErrInvalidSymbol = errors.New("invalid symbol")

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// placeholderPrice stands in for the current price when every quote source
// failed. Downstream must branch on DataQuality, not on field presence.
const placeholderPrice = 100.0

// fiveWeekBars is how many recent daily closes make a measured five-week range.
const fiveWeekBars = 25

// Assembler builds a VolatilityAnalysis per symbol. It is a total function
// over valid symbols: resolver failures degrade the result, they never
// escape it.
type Assembler struct {
	quotes      *quote.Resolver
	history     *history.Resolver
	historyDays int
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssembler creates an Assembler over the given resolvers.
func NewAssembler(quotes *quote.Resolver, hist *history.Resolver, historyDays int) *Assembler {
	if historyDays <= 0 {
		historyDays = history.DefaultDays
	}
	return &Assembler{
		quotes:      quotes,
		history:     hist,
		historyDays: historyDays,
		logger:      log.With().Str("component", "analysis_assembler").Logger(),
		now:         time.Now,
	}
}

// Analyze resolves market data for a symbol and assembles the volatility
// analysis. It returns an error only for a syntactically invalid symbol.
func (a *Assembler) Analyze(ctx context.Context, symbol string) (model.VolatilityAnalysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) {
		return model.VolatilityAnalysis{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	q, err := a.quotes.Resolve(ctx, symbol)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote resolution failed, producing estimated analysis")
		return a.estimated(symbol), nil
	}

	histVol := 0.0
	histTier := model.TierEstimated
	series, err := a.history.Resolve(ctx, symbol, a.historyDays)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("History resolution failed, estimating volatility")
		histVol = volatility.EstimateHistorical(symbol)
	} else {
		histVol = volatility.Annualized(series.Points)
		histTier = series.Source
	}

	impliedVol := volatility.EstimateImplied(symbol, histVol)

	analysis := model.VolatilityAnalysis{
		Symbol:                symbol,
		CurrentPrice:          q.Price,
		Change:                q.Change,
		ChangePercent:         q.ChangePercent,
		Volume:                q.Volume,
		HistoricalVolatility:  histVol,
		ImpliedVolatility:     impliedVol,
		ExpectedMove:          expectedMove(q.Price, impliedVol),
		OptionsVolumeEstimate: estimateOptionsVolume(symbol, q.Volume),
		Technical:             model.TechnicalIndicators{RSI: pseudoRSI(q.ChangePercent)},
		FiftyTwoWeekHigh:      q.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:       q.FiftyTwoWeekLow,
		FiveWeekRange:         fiveWeekRange(symbol, q.Price, histVol, series),
		DataSources:           model.DataSources{Quote: q.Source, Historical: histTier},
		LastUpdated:           a.now(),
	}
	analysis.DataQuality = dataQuality(analysis.DataSources)
	analysis.VolatilityScore = Score(analysis)
	return analysis, nil
}

// estimated is the terminal fallback: every field filled from lookup tables
// so ranking and display code downstream sees the same shape as a live
// analysis.
func (a *Assembler) estimated(symbol string) model.VolatilityAnalysis {
	histVol := volatility.EstimateHistorical(symbol)
	impliedVol := volatility.EstimateImplied(symbol, histVol)

	analysis := model.VolatilityAnalysis{
		Symbol:                symbol,
		CurrentPrice:          placeholderPrice,
		HistoricalVolatility:  histVol,
		ImpliedVolatility:     impliedVol,
		ExpectedMove:          expectedMove(placeholderPrice, impliedVol),
		OptionsVolumeEstimate: estimateOptionsVolume(symbol, 0),
		Technical:             model.TechnicalIndicators{RSI: pseudoRSI(0)},
		FiveWeekRange:         fiveWeekRange(symbol, placeholderPrice, histVol, nil),
		DataQuality:           model.QualityEstimated,
		DataSources: model.DataSources{
			Quote:      model.TierEstimated,
			Historical: model.TierEstimated,
		},
		LastUpdated: a.now(),
	}
	analysis.VolatilityScore = Score(analysis)
	return analysis
}

// dataQuality is real only when both halves resolved without falling back to
// estimates.
func dataQuality(sources model.DataSources) model.DataQuality {
	if sources.Quote != model.TierEstimated && sources.Historical != model.TierEstimated {
		return model.QualityReal
	}
	return model.QualityEstimated
}

// expectedMove is the one-sigma 30-day move in currency units.
func expectedMove(price, impliedVol float64) float64 {
	return round2(price * (impliedVol / 100) * math.Sqrt(30.0/365.0))
}

// fiveWeekRange measures the high/low of the most recent 25 closes when
// enough history exists, and otherwise estimates a two-sigma band around the
// current price.
func fiveWeekRange(symbol string, price, histVol float64, series *model.HistoricalSeries) model.PriceRange {
	if series != nil && len(series.Points) >= fiveWeekBars {
		recent := series.Points[len(series.Points)-fiveWeekBars:]
		high, low := recent[0].Close, recent[0].Close
		for _, p := range recent[1:] {
			if p.Close > high {
				high = p.Close
			}
			if p.Close < low {
				low = p.Close
			}
		}
		return model.PriceRange{High: high, Low: low, Source: model.QualityReal}
	}

	vol := histVol
	if vol <= 0 {
		vol = volatility.EstimateHistorical(symbol)
	}
	spread := 2 * price * (vol / 100) * math.Sqrt(float64(fiveWeekBars)/252.0)
	return model.PriceRange{
		High:   round2(price + spread),
		Low:    round2(price - spread),
		Source: model.QualityEstimated,
	}
}

// optionsLiquidityMultiplier boosts the options-volume estimate for names
// with famously deep chains.
var optionsLiquidityMultiplier = map[string]float64{
	"SPY":   5,
	"QQQ":   4,
	"TSLA":  3,
	"AAPL":  3,
	"NVDA":  3,
	"AMD":   2.5,
	"AMZN":  2,
	"META":  2,
	"MSFT":  2,
	"GOOGL": 1.5,
	"NFLX":  1.5,
	"COIN":  1.5,
}

const (
	optionsVolumeBaseRatio = 0.02
	optionsVolumeFloor     = 1000
	liquidNameVolumeFloor  = 5000
)

// estimateOptionsVolume derives a rough options contract volume from stock
// volume. A heuristic proxy for chain liquidity, not market data.
func estimateOptionsVolume(symbol string, stockVolume int64) int64 {
	multiplier, liquid := optionsLiquidityMultiplier[symbol]
	if !liquid {
		multiplier = 1
	}
	estimate := int64(float64(stockVolume) * optionsVolumeBaseRatio * multiplier)

	floor := int64(optionsVolumeFloor)
	if liquid {
		floor = liquidNameVolumeFloor
	}
	if estimate < floor {
		return floor
	}
	return estimate
}

// pseudoRSI maps the day's percent change onto an RSI-like [20,80] scale.
// Not a 14-period RSI; a labeled estimate for ranking extremity.
func pseudoRSI(changePercent float64) float64 {
	rsi := 50 + changePercent*3
	if rsi < 20 {
		return 20
	}
	if rsi > 80 {
		return 80
	}
	return round2(rsi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
