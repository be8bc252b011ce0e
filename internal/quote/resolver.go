package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/model"
)

// ErrQuoteUnavailable is returned when every provider in the chain failed.
// The analysis assembler converts it into a fully-estimated analysis.
var ErrQuoteUnavailable = errors.New("quote unavailable from all sources")

// DefaultCacheTTL bounds how long a resolved quote is served without going
// back to a provider.
const DefaultCacheTTL = 5 * time.Minute

type cachedQuote struct {
	quote    model.Quote
	storedAt time.Time
}

// Resolver resolves current quotes through an ordered provider chain with a
// short-TTL cache. The cache only ever holds provider-sourced quotes, never
// estimates. Safe for concurrent use.
type Resolver struct {
	providers []model.QuoteProvider
	ttl       time.Duration
	logger    zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedQuote
	now   func() time.Time
}

// NewResolver creates a Resolver over the given providers, tried in order.
func NewResolver(ttl time.Duration, providers ...model.QuoteProvider) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{
		providers: providers,
		ttl:       ttl,
		logger:    log.With().Str("component", "quote_resolver").Logger(),
		cache:     make(map[string]cachedQuote),
		now:       time.Now,
	}
}

// Resolve returns the current quote for a symbol: cache first, then each
// provider in order, first valid answer wins. A provider answer is valid
// only if price and previous close are both positive.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (model.Quote, error) {
	if q, ok := r.cached(symbol); ok {
		r.logger.Debug().Str("symbol", symbol).Str("source", string(q.Source)).Msg("Quote served from cache")
		return q, nil
	}

	var failures []error
	for _, p := range r.providers {
		q, err := p.FetchQuote(ctx, symbol)
		if err != nil {
			r.logger.Warn().Err(err).Str("symbol", symbol).Str("provider", p.Name()).Msg("Quote fetch failed, falling through")
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if q.Price <= 0 || q.PreviousClose <= 0 {
			r.logger.Warn().
				Str("symbol", symbol).
				Str("provider", p.Name()).
				Float64("price", q.Price).
				Float64("previous_close", q.PreviousClose).
				Msg("Quote rejected by validation, falling through")
			failures = append(failures, fmt.Errorf("%s: incomplete quote", p.Name()))
			continue
		}

		q.Symbol = symbol
		q.Change = round2(q.Price - q.PreviousClose)
		q.ChangePercent = round2((q.Price - q.PreviousClose) / q.PreviousClose * 100)
		q.Source = p.Tier()

		r.store(symbol, q)
		r.logger.Debug().Str("symbol", symbol).Str("source", string(q.Source)).Msg("Quote resolved")
		return q, nil
	}

	return model.Quote{}, fmt.Errorf("%w for %s: %w", ErrQuoteUnavailable, symbol, errors.Join(failures...))
}

func (r *Resolver) cached(symbol string) (model.Quote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[symbol]
	if !ok || r.now().Sub(entry.storedAt) >= r.ttl {
		return model.Quote{}, false
	}
	return entry.quote, true
}

func (r *Resolver) store(symbol string, q model.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[symbol] = cachedQuote{quote: q, storedAt: r.now()}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
