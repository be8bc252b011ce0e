package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnwatch/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		APIKey:         "test-token",
		BaseURL:        server.URL,
		RequestTimeout: 2 * time.Second,
		RequestsPerSec: 100,
	})
}

func TestFetchQuote(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c": 150.5, "pc": 149.0, "h": 151.2, "l": 148.7, "o": 149.3, "d": 1.5, "dp": 1.0067, "t": 1756180800}`))
	})

	q, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 150.5, q.Price)
	assert.Equal(t, 149.0, q.PreviousClose)
	assert.Equal(t, 151.2, q.DayHigh)
}

func TestFetchQuote_UnknownSymbolAllZero(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"c": 0, "pc": 0, "h": 0, "l": 0, "o": 0}`))
	})

	// The provider itself passes zeros through; rejecting them is the
	// resolver's validation step.
	q, err := client.FetchQuote(context.Background(), "NOSUCH")
	require.NoError(t, err)
	assert.Zero(t, q.Price)
}

func TestFetchEarningsCalendar(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/earnings", r.URL.Path)
		assert.Equal(t, "2026-08-26", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-09-16", r.URL.Query().Get("to"))
		w.Write([]byte(`{
			"earningsCalendar": [
				{"date": "2026-09-01", "symbol": "AAPL", "hour": "amc", "epsEstimate": 1.45},
				{"date": "not-a-date", "symbol": "BAD", "hour": "bmo"},
				{"date": "2026-09-03", "symbol": "MSFT", "hour": "bmo"}
			]
		}`))
	})

	from := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	events, err := client.FetchEarningsCalendar(context.Background(), from, from.AddDate(0, 0, 21))
	require.NoError(t, err)
	require.Len(t, events, 2, "event with unusable date is dropped")
	assert.Equal(t, "AAPL", events[0].Symbol)
	assert.Equal(t, "amc", events[0].Hour)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), events[0].Date)
	assert.Equal(t, "MSFT", events[1].Symbol)
}

func TestFetchEarningsCalendar_RetriesTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"earningsCalendar": [{"date": "2026-09-01", "symbol": "AAPL", "hour": "amc"}]}`))
	})

	from := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	events, err := client.FetchEarningsCalendar(context.Background(), from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.GreaterOrEqual(t, attempts.Load(), int32(2))
}

func TestProviderIdentity(t *testing.T) {
	c := NewClient(ClientOptions{})
	assert.Equal(t, "finnhub", c.Name())
	assert.Equal(t, model.TierSecondary, c.Tier())
}
