package model

import "time"

// DataQuality flags whether an analysis was built from live market data or
// degraded to estimates somewhere along the way.
type DataQuality string

const (
	QualityReal      DataQuality = "real"
	QualityEstimated DataQuality = "estimated"
)

// DataSources records which tier served each half of an analysis.
type DataSources struct {
	Quote      SourceTier `json:"quote"`
	Historical SourceTier `json:"historical"`
}

// PriceRange is a derived high/low band, either measured from real closes or
// estimated from volatility.
type PriceRange struct {
	High   float64     `json:"high"`
	Low    float64     `json:"low"`
	Source DataQuality `json:"source"`
}

// TechnicalIndicators carries the heuristic technical signals attached to an
// analysis. RSI here is a bounded pseudo-indicator seeded from the day's move,
// not a true 14-period RSI.
type TechnicalIndicators struct {
	RSI float64 `json:"rsi"`
}

// VolatilityAnalysis is the per-symbol output of the analysis pipeline. It is
// always well-formed: when every source fails the fields hold estimates and
// DataQuality says so.
type VolatilityAnalysis struct {
	Symbol                string              `json:"symbol"`
	CurrentPrice          float64             `json:"current_price"`
	Change                float64             `json:"change"`
	ChangePercent         float64             `json:"change_percent"`
	Volume                int64               `json:"volume"`
	HistoricalVolatility  float64             `json:"historical_volatility"`
	ImpliedVolatility     float64             `json:"implied_volatility"`
	ExpectedMove          float64             `json:"expected_move"`
	VolatilityScore       int                 `json:"volatility_score"`
	OptionsVolumeEstimate int64               `json:"options_volume_estimate"`
	Technical             TechnicalIndicators `json:"technical_indicators"`
	FiftyTwoWeekHigh      float64             `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow       float64             `json:"fifty_two_week_low,omitempty"`
	FiveWeekRange         PriceRange          `json:"five_week_range"`
	DataQuality           DataQuality         `json:"data_quality"`
	DataSources           DataSources         `json:"data_sources"`
	LastUpdated           time.Time           `json:"last_updated"`
}
