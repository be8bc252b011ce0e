package model

import "time"

// SourceTier identifies which rung of the provider fallback chain produced a value.
type SourceTier string

const (
	TierPrimary   SourceTier = "primary"
	TierSecondary SourceTier = "secondary"
	TierEstimated SourceTier = "estimated"
)

// Quote is an immutable snapshot of a symbol's current market state.
type Quote struct {
	Symbol           string     `json:"symbol"`
	Price            float64    `json:"price"`
	PreviousClose    float64    `json:"previous_close"`
	Change           float64    `json:"change"`
	ChangePercent    float64    `json:"change_percent"`
	DayHigh          float64    `json:"day_high"`
	DayLow           float64    `json:"day_low"`
	DayOpen          float64    `json:"day_open"`
	Volume           int64      `json:"volume"`
	FiftyTwoWeekHigh float64    `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  float64    `json:"fifty_two_week_low,omitempty"`
	Source           SourceTier `json:"source"`
}

// PricePoint is a single daily bar within a historical series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume int64     `json:"volume"`
}

// HistoricalSeries holds daily price points ordered oldest to newest.
type HistoricalSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
	Source SourceTier   `json:"source"`
}
