package rank

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/model"
)

const (
	// DefaultTopN is how many opportunities a scan surfaces.
	DefaultTopN = 5
	// DefaultMinScore filters out entries whose quality score is not above it.
	DefaultMinScore = 5.0
)

// Ranker joins earnings events with their analyses and produces a ranked,
// truncated opportunity list.
type Ranker struct {
	topN     int
	minScore float64
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRanker creates a Ranker keeping the topN entries scoring above minScore.
func NewRanker(topN int, minScore float64) *Ranker {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{
		topN:     topN,
		minScore: minScore,
		logger:   log.With().Str("component", "opportunity_ranker").Logger(),
		now:      time.Now,
	}
}

// Rank joins each event to its analysis by symbol (events without one are
// dropped), scores, filters, sorts descending and truncates. The sort is
// stable: equal scores keep calendar order.
func (r *Ranker) Rank(events []model.EarningsEvent, analyses map[string]*model.VolatilityAnalysis) []model.Opportunity {
	now := r.now()

	opportunities := make([]model.Opportunity, 0, len(events))
	for _, event := range events {
		analysis := analyses[event.Symbol]
		if analysis == nil {
			r.logger.Debug().Str("symbol", event.Symbol).Msg("No analysis for event, dropping")
			continue
		}

		days := daysToEarnings(event.Date, now)
		score := qualityScore(analysis, days)
		if score <= r.minScore {
			continue
		}

		opportunities = append(opportunities, model.Opportunity{
			Event:          event,
			DaysToEarnings: days,
			Analysis:       *analysis,
			QualityScore:   score,
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].QualityScore > opportunities[j].QualityScore
	})

	if len(opportunities) > r.topN {
		opportunities = opportunities[:r.topN]
	}

	r.logger.Info().Int("events", len(events)).Int("ranked", len(opportunities)).Msg("Ranked opportunities")
	return opportunities
}

func daysToEarnings(earningsDate, now time.Time) int {
	return int(math.Ceil(earningsDate.Sub(now).Hours() / 24))
}

// qualityScore combines volatility, timing, liquidity and technical signals
// into a 0-100 composite.
func qualityScore(a *model.VolatilityAnalysis, daysToEarnings int) float64 {
	score := 10.0

	// Volatility setup (0-30), scaled from the analysis score.
	switch vs := a.VolatilityScore; {
	case vs > 70:
		score += 30
	case vs > 50:
		score += 24
	case vs > 30:
		score += 18
	case vs > 10:
		score += 12
	default:
		score += 6
	}

	// Timing (0-25): premium sellers want 2-3 weeks of runway, so the curve
	// peaks at 14-21 days out.
	switch d := daysToEarnings; {
	case d >= 14 && d <= 21:
		score += 25
	case d >= 10 && d <= 28:
		score += 17.5
	case d >= 5 && d <= 35:
		score += 10
	default:
		score += 5
	}

	// Options liquidity (0-20).
	switch ov := a.OptionsVolumeEstimate; {
	case ov > 10000:
		score += 20
	case ov > 5000:
		score += 14
	case ov > 1000:
		score += 8
	case ov > 0:
		score += 4
	}

	// RSI extremity (0-15): stretched names move hardest on earnings.
	switch rsi := a.Technical.RSI; {
	case rsi > 70 || rsi < 30:
		score += 15
	case rsi > 60 || rsi < 40:
		score += 7.5
	default:
		score += 3
	}

	// Presence bonus: any volatility signal at all beats none.
	if a.HistoricalVolatility > 0 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}
