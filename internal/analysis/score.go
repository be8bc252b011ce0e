package analysis

import "earnwatch/internal/model"

// Score rates an analysis 0-100 for options opportunity. Four independent
// bands are summed: historical volatility in the sweet spot, implied
// volatility in the tradable range, price sanity, and data quality plus a
// liquidity proxy on traded volume.
func Score(a model.VolatilityAnalysis) int {
	score := 0

	// Historical volatility (0-30): the 20-50 band is where earnings plays
	// price well.
	hv := a.HistoricalVolatility
	switch {
	case hv >= 20 && hv <= 50:
		score += 30
	case hv >= 15 && hv <= 60:
		score += 25
	case hv >= 10:
		score += 20
	}

	// Implied volatility (0-25).
	iv := a.ImpliedVolatility
	switch {
	case iv >= 25 && iv <= 55:
		score += 25
	case iv >= 20 && iv <= 65:
		score += 20
	case iv >= 15:
		score += 15
	}

	// Price sanity (0-20): sub-$10 names have unusable spreads, four-digit
	// prices unusable premiums.
	price := a.CurrentPrice
	switch {
	case price >= 20 && price <= 500:
		score += 20
	case price >= 10:
		score += 15
	}

	// Data quality (0-15 flat).
	if a.DataQuality == model.QualityReal {
		score += 15
	}

	// Liquidity proxy (0-10) banded on traded volume.
	switch {
	case a.Volume > 1_000_000:
		score += 10
	case a.Volume > 500_000:
		score += 8
	case a.Volume > 100_000:
		score += 5
	default:
		score += 3
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
