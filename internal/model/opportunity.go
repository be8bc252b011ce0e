package model

import "time"

// EarningsEvent is one entry from the earnings calendar. Hour is the
// reporting slot as published by the calendar ("bmo", "amc", "dmh").
type EarningsEvent struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Hour   string    `json:"hour,omitempty"`
}

// Opportunity is a ranked earnings play: the calendar event joined with its
// volatility analysis and a composite quality score. Created once per scan
// and never mutated after scoring.
type Opportunity struct {
	Event          EarningsEvent      `json:"event"`
	DaysToEarnings int                `json:"days_to_earnings"`
	Analysis       VolatilityAnalysis `json:"analysis"`
	QualityScore   float64            `json:"quality_score"`
}
