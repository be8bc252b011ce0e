package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/model"
)

// DefaultDays is the history window used by the analysis pipeline.
const DefaultDays = 60

// Resolver fetches daily price history. There is no fallback chain here:
// only the primary source serves history, so a failure means the caller
// works from estimates instead.
type Resolver struct {
	provider model.HistoryProvider
	logger   zerolog.Logger
}

// NewResolver creates a Resolver over the primary history provider.
func NewResolver(provider model.HistoryProvider) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   log.With().Str("component", "history_resolver").Logger(),
	}
}

// Resolve fetches up to days daily bars for a symbol, oldest first. Bars
// with non-positive closes are dropped. An error here is a signal to
// estimate, not a pipeline failure.
func (r *Resolver) Resolve(ctx context.Context, symbol string, days int) (*model.HistoricalSeries, error) {
	if days <= 0 {
		days = DefaultDays
	}

	points, err := r.provider.FetchDailyHistory(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("%s history: %w", r.provider.Name(), err)
	}

	usable := points[:0]
	for _, p := range points {
		if p.Close > 0 {
			usable = append(usable, p)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("%s history: no usable points for %s", r.provider.Name(), symbol)
	}

	r.logger.Debug().Str("symbol", symbol).Int("points", len(usable)).Msg("History resolved")
	return &model.HistoricalSeries{
		Symbol: symbol,
		Points: usable,
		Source: model.TierPrimary,
	}, nil
}
