package volatility

import (
	"math"

	"earnwatch/internal/model"
)

// tradingDaysPerYear scales daily return variance to an annual figure.
const tradingDaysPerYear = 252

// Annualized computes annualized historical volatility in percent from a
// daily price series: standard deviation of daily log returns scaled by
// sqrt(252). Returns 0 when there is no usable signal (fewer than two
// returns), which callers must treat as "no data", not "flat market".
func Annualized(points []model.PricePoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var returns []float64
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1].Close, points[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	vol := math.Sqrt(variance*tradingDaysPerYear) * 100
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0
	}

	rounded := math.Round(vol*100) / 100
	if rounded == 0 {
		// Valid inputs that round to zero would be indistinguishable from
		// the no-data sentinel.
		return 1
	}
	return rounded
}

// ivPremiumMultiplier maps symbols to the markup applied over historical
// volatility when estimating implied volatility: options on high-beta names
// trade at a premium, mega-cap staples closer to realized.
var ivPremiumMultiplier = map[string]float64{
	"TSLA":  1.4,
	"GME":   1.4,
	"MSTR":  1.4,
	"AMC":   1.35,
	"COIN":  1.35,
	"PLTR":  1.3,
	"NVDA":  1.25,
	"AMD":   1.25,
	"AMZN":  1.05,
	"AAPL":  1.0,
	"GOOGL": 1.0,
	"JPM":   1.0,
	"MSFT":  0.95,
	"JNJ":   0.95,
	"PG":    0.95,
	"KO":    0.95,
	"WMT":   0.95,
}

const defaultIVMultiplier = 1.1

// EstimateImplied derives an implied-volatility estimate from historical
// volatility via a per-symbol premium multiplier. This is a documented
// heuristic, not exchange-sourced data.
func EstimateImplied(symbol string, historicalVol float64) float64 {
	if historicalVol <= 0 {
		return 0
	}
	multiplier, ok := ivPremiumMultiplier[symbol]
	if !ok {
		multiplier = defaultIVMultiplier
	}
	return math.Round(historicalVol*multiplier*10) / 10
}

// assumedVolatility holds fallback annualized volatility per symbol for when
// no historical data can be resolved. Values are rough sector-level figures.
var assumedVolatility = map[string]float64{
	"GME":   90,
	"AMC":   85,
	"MSTR":  80,
	"COIN":  70,
	"TSLA":  55,
	"PLTR":  50,
	"NVDA":  45,
	"AMD":   45,
	"NFLX":  40,
	"META":  35,
	"AMZN":  30,
	"GOOGL": 28,
	"AAPL":  25,
	"XOM":   25,
	"MSFT":  22,
	"JPM":   22,
	"WMT":   16,
	"JNJ":   15,
	"PG":    14,
	"KO":    13,
}

const defaultAssumedVolatility = 30

// EstimateHistorical returns an assumed annualized volatility for a symbol
// when no price history is available.
func EstimateHistorical(symbol string) float64 {
	if vol, ok := assumedVolatility[symbol]; ok {
		return vol
	}
	return defaultAssumedVolatility
}
