package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnwatch/internal/history"
	"earnwatch/internal/model"
	"earnwatch/internal/quote"
)

type fakeQuoteProvider struct {
	tier  model.SourceTier
	quote model.Quote
	err   error
}

func (f *fakeQuoteProvider) Name() string           { return string(f.tier) }
func (f *fakeQuoteProvider) Tier() model.SourceTier { return f.tier }

func (f *fakeQuoteProvider) FetchQuote(_ context.Context, _ string) (model.Quote, error) {
	if f.err != nil {
		return model.Quote{}, f.err
	}
	return f.quote, nil
}

type fakeHistoryProvider struct {
	points []model.PricePoint
	err    error
}

func (f *fakeHistoryProvider) Name() string { return "fake_history" }

func (f *fakeHistoryProvider) FetchDailyHistory(_ context.Context, _ string, _ int) ([]model.PricePoint, error) {
	return f.points, f.err
}

func newAssembler(qp model.QuoteProvider, hp model.HistoryProvider) *Assembler {
	return NewAssembler(
		quote.NewResolver(time.Minute, qp),
		history.NewResolver(hp),
		60,
	)
}

func seriesPoints(closes ...float64) []model.PricePoint {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c, Volume: 500_000}
	}
	return pts
}

// oscillating builds n closes wobbling around base so volatility is non-zero.
func oscillating(base float64, n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		offset := float64(i%5) - 2
		closes[i] = base + offset
	}
	return closes
}

func TestAnalyze_RealData(t *testing.T) {
	qp := &fakeQuoteProvider{
		tier: model.TierPrimary,
		quote: model.Quote{
			Price:            250,
			PreviousClose:    245,
			Volume:           3_000_000,
			FiftyTwoWeekHigh: 300,
			FiftyTwoWeekLow:  180,
		},
	}
	hp := &fakeHistoryProvider{points: seriesPoints(oscillating(250, 40)...)}
	a := newAssembler(qp, hp)

	analysis, err := a.Analyze(context.Background(), "msft")
	require.NoError(t, err)

	assert.Equal(t, "MSFT", analysis.Symbol, "symbol is normalized")
	assert.Equal(t, model.QualityReal, analysis.DataQuality)
	assert.Equal(t, model.TierPrimary, analysis.DataSources.Quote)
	assert.Equal(t, model.TierPrimary, analysis.DataSources.Historical)
	assert.Greater(t, analysis.HistoricalVolatility, 0.0)
	assert.Greater(t, analysis.ImpliedVolatility, 0.0)
	assert.Greater(t, analysis.ExpectedMove, 0.0)
	assert.GreaterOrEqual(t, analysis.VolatilityScore, 0)
	assert.LessOrEqual(t, analysis.VolatilityScore, 100)
	assert.False(t, analysis.LastUpdated.IsZero())
}

func TestAnalyze_AllSourcesFail(t *testing.T) {
	qp := &fakeQuoteProvider{tier: model.TierPrimary, err: errors.New("network down")}
	hp := &fakeHistoryProvider{err: errors.New("network down")}
	a := newAssembler(qp, hp)

	analysis, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err, "total source failure must not escape the assembler")

	assert.Equal(t, model.QualityEstimated, analysis.DataQuality)
	assert.Equal(t, placeholderPrice, analysis.CurrentPrice)
	assert.Equal(t, model.TierEstimated, analysis.DataSources.Quote)
	assert.Equal(t, model.TierEstimated, analysis.DataSources.Historical)
	assert.Equal(t, 25.0, analysis.HistoricalVolatility, "AAPL assumed volatility")
	assert.Greater(t, analysis.ImpliedVolatility, 0.0)
	assert.GreaterOrEqual(t, analysis.VolatilityScore, 0)
	assert.LessOrEqual(t, analysis.VolatilityScore, 100)
}

func TestAnalyze_HistoryFailureDegradesToEstimate(t *testing.T) {
	qp := &fakeQuoteProvider{
		tier:  model.TierPrimary,
		quote: model.Quote{Price: 250, PreviousClose: 245, Volume: 1_000_000},
	}
	hp := &fakeHistoryProvider{err: errors.New("no history access")}
	a := newAssembler(qp, hp)

	analysis, err := a.Analyze(context.Background(), "ZZZZ")
	require.NoError(t, err)

	assert.Equal(t, model.QualityEstimated, analysis.DataQuality, "one estimated tier degrades quality")
	assert.Equal(t, model.TierPrimary, analysis.DataSources.Quote)
	assert.Equal(t, model.TierEstimated, analysis.DataSources.Historical)
	assert.Equal(t, 30.0, analysis.HistoricalVolatility, "default assumed volatility")
	assert.Equal(t, 250.0, analysis.CurrentPrice, "quote half stays real")
}

func TestAnalyze_FiveWeekRangeFromHistory(t *testing.T) {
	closes := oscillating(100, 40)
	// Plant the extremes inside the most recent 25 bars.
	closes[20] = 130
	closes[30] = 70
	qp := &fakeQuoteProvider{
		tier:  model.TierPrimary,
		quote: model.Quote{Price: 100, PreviousClose: 99, Volume: 1_000_000},
	}
	hp := &fakeHistoryProvider{points: seriesPoints(closes...)}
	a := newAssembler(qp, hp)

	analysis, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, model.QualityReal, analysis.FiveWeekRange.Source)
	assert.Equal(t, 130.0, analysis.FiveWeekRange.High)
	assert.Equal(t, 70.0, analysis.FiveWeekRange.Low)
}

func TestAnalyze_FiveWeekRangeEstimatedWhenHistoryShort(t *testing.T) {
	qp := &fakeQuoteProvider{
		tier:  model.TierPrimary,
		quote: model.Quote{Price: 100, PreviousClose: 99, Volume: 1_000_000},
	}
	hp := &fakeHistoryProvider{points: seriesPoints(oscillating(100, 10)...)}
	a := newAssembler(qp, hp)

	analysis, err := a.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, model.QualityEstimated, analysis.FiveWeekRange.Source)
	assert.Greater(t, analysis.FiveWeekRange.High, analysis.CurrentPrice)
	assert.Less(t, analysis.FiveWeekRange.Low, analysis.CurrentPrice)
}

func TestAnalyze_InvalidSymbol(t *testing.T) {
	a := newAssembler(&fakeQuoteProvider{tier: model.TierPrimary}, &fakeHistoryProvider{})

	for _, symbol := range []string{"", "   ", "123", "$PY", "WAYTOOLONGTICKER"} {
		_, err := a.Analyze(context.Background(), symbol)
		assert.ErrorIs(t, err, ErrInvalidSymbol, "symbol %q", symbol)
	}
}

func TestPseudoRSI(t *testing.T) {
	assert.Equal(t, 50.0, pseudoRSI(0))
	assert.Equal(t, 56.0, pseudoRSI(2))
	assert.Equal(t, 80.0, pseudoRSI(25), "clamped high")
	assert.Equal(t, 20.0, pseudoRSI(-25), "clamped low")
}

func TestEstimateOptionsVolume(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		volume   int64
		expected int64
	}{
		{"unknown name uses base ratio", "ZZZZ", 1_000_000, 20_000},
		{"liquid name gets multiplier", "AAPL", 1_000_000, 60_000},
		{"unknown name floor", "ZZZZ", 0, 1000},
		{"liquid name floor", "SPY", 0, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, estimateOptionsVolume(tt.symbol, tt.volume))
		})
	}
}
