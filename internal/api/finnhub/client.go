package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/model"
	httpclient "earnwatch/internal/platform/http"
)

// Client is the Finnhub API client. It is the secondary quote tier (the free
// tier has no historical candle access) and the earnings-calendar source.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Finnhub client
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Finnhub API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://finnhub.io/api/v1"
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "finnhub_client").Logger(),
	}
}

// Name identifies the provider in logs and error chains.
func (c *Client) Name() string { return "finnhub" }

// Tier reports this provider's rank in the fallback chain.
func (c *Client) Tier() model.SourceTier { return model.TierSecondary }

// quoteResponse mirrors the /quote payload.
type quoteResponse struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
}

// FetchQuote fetches the current quote for a symbol. Finnhub answers 200
// with all-zero fields for unknown symbols; the resolver's price validation
// rejects those.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf(
		"%s/quote?symbol=%s&token=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		c.apiKey,
	)

	c.logger.Debug().Str("symbol", symbol).Msg("Fetching quote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Quote{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Quote{}, fmt.Errorf("reading response body: %w", err)
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return model.Quote{}, fmt.Errorf("parsing JSON: %w", err)
	}

	return model.Quote{
		Symbol:        symbol,
		Price:         data.Current,
		PreviousClose: data.PreviousClose,
		DayHigh:       data.High,
		DayLow:        data.Low,
		DayOpen:       data.Open,
	}, nil
}

// calendarResponse mirrors the /calendar/earnings payload.
type calendarResponse struct {
	EarningsCalendar []struct {
		Date   string `json:"date"`
		Symbol string `json:"symbol"`
		Hour   string `json:"hour"`
	} `json:"earningsCalendar"`
}

// FetchEarningsCalendar fetches earnings events between from and to
// inclusive. Unlike the per-symbol quote path this runs once per scan, so
// transient failures are retried with exponential backoff.
func (c *Client) FetchEarningsCalendar(ctx context.Context, from, to time.Time) ([]model.EarningsEvent, error) {
	endpoint := fmt.Sprintf(
		"%s/calendar/earnings?from=%s&to=%s&token=%s",
		c.baseURL,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		c.apiKey,
	)

	c.logger.Debug().
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Fetching earnings calendar")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Use exponential backoff for retries
	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.DoRequest(ctx, req)
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data calendarResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var events []model.EarningsEvent
	for _, e := range data.EarningsCalendar {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			c.logger.Debug().Str("symbol", e.Symbol).Str("date", e.Date).Msg("Dropping event with unusable date")
			continue
		}
		events = append(events, model.EarningsEvent{
			Symbol: e.Symbol,
			Date:   date,
			Hour:   e.Hour,
		})
	}

	c.logger.Debug().Int("count", len(events)).Msg("Fetched earnings calendar")
	return events, nil
}
