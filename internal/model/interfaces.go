package model

import (
	"context"
	"time"
)

// QuoteProvider is one rung of the quote fallback chain.
type QuoteProvider interface {
	Name() string
	Tier() SourceTier
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
}

// HistoryProvider serves daily price history. Only the primary source
// implements this; the secondary source has no historical endpoint at
// free-tier level.
type HistoryProvider interface {
	Name() string
	FetchDailyHistory(ctx context.Context, symbol string, days int) ([]PricePoint, error)
}

// EarningsSource provides the upcoming-earnings calendar.
type EarningsSource interface {
	FetchEarningsCalendar(ctx context.Context, from, to time.Time) ([]EarningsEvent, error)
}
