package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"earnwatch/internal/model"
	httpclient "earnwatch/internal/platform/http"
)

// Client is the Twelve Data API client. It is the primary tier: it serves
// both current quotes and daily history.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Twelve Data client
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Twelve Data API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twelvedata.com"
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Name identifies the provider in logs and error chains.
func (c *Client) Name() string { return "twelvedata" }

// Tier reports this provider's rank in the fallback chain.
func (c *Client) Tier() model.SourceTier { return model.TierPrimary }

// quoteResponse mirrors the /quote payload. Twelve Data serializes numbers
// as strings.
type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Open          float64 `json:"open,string"`
	High          float64 `json:"high,string"`
	Low           float64 `json:"low,string"`
	Close         float64 `json:"close,string"`
	PreviousClose float64 `json:"previous_close,string"`
	Volume        int64   `json:"volume,string"`
	FiftyTwoWeek  struct {
		Low  float64 `json:"low,string"`
		High float64 `json:"high,string"`
	} `json:"fifty_two_week"`
}

// FetchQuote fetches the current quote for a symbol
func (c *Client) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	endpoint := fmt.Sprintf(
		"%s/quote?symbol=%s&apikey=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		c.apiKey,
	)

	c.logger.Debug().Str("symbol", symbol).Msg("Fetching quote")

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return model.Quote{}, err
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return model.Quote{}, fmt.Errorf("parsing JSON: %w", err)
	}

	return model.Quote{
		Symbol:           symbol,
		Price:            data.Close,
		PreviousClose:    data.PreviousClose,
		DayHigh:          data.High,
		DayLow:           data.Low,
		DayOpen:          data.Open,
		Volume:           data.Volume,
		FiftyTwoWeekHigh: data.FiftyTwoWeek.High,
		FiftyTwoWeekLow:  data.FiftyTwoWeek.Low,
	}, nil
}

// timeSeriesResponse mirrors the /time_series payload. Values are kept as
// raw strings so a single malformed bar can be dropped instead of failing
// the whole decode.
type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// FetchDailyHistory fetches up to days daily bars, oldest first.
func (c *Client) FetchDailyHistory(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf(
		"%s/time_series?symbol=%s&interval=1day&outputsize=%d&apikey=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		days,
		c.apiKey,
	)

	c.logger.Debug().Str("symbol", symbol).Int("days", days).Msg("Fetching daily history")

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No bars in response")
		return nil, fmt.Errorf("empty data returned")
	}

	var points []model.PricePoint
	for _, v := range data.Values {
		closePrice, err := strconv.ParseFloat(v.Close, 64)
		if err != nil || closePrice <= 0 {
			// Dropped, not zero-filled: a zero close would poison log returns.
			c.logger.Debug().Str("symbol", symbol).Str("datetime", v.Datetime).Msg("Dropping bar with unusable close")
			continue
		}
		date, err := time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			c.logger.Debug().Str("symbol", symbol).Str("datetime", v.Datetime).Msg("Dropping bar with unusable date")
			continue
		}
		high, _ := strconv.ParseFloat(v.High, 64)
		low, _ := strconv.ParseFloat(v.Low, 64)
		volume, _ := strconv.ParseInt(v.Volume, 10, 64)
		points = append(points, model.PricePoint{
			Date:   date,
			Close:  closePrice,
			High:   high,
			Low:    low,
			Volume: volume,
		})
	}

	// Sort bars by date (oldest first for proper calculations)
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	c.logger.Debug().Int("count", len(points)).Msg("Fetched daily history")
	return points, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if strings.Contains(string(body), `"status":"error"`) {
		c.logger.Error().Str("response", string(body)).Msg("Twelve Data API error")
		return nil, fmt.Errorf("Twelve Data API error: %s", string(body))
	}

	return body, nil
}
