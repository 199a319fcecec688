// Package alphavantage fetches daily closing prices from the Alpha
// Vantage API.
//
// Fetches are sequential and rate-limited: the free tier allows a handful
// of requests per minute, so the client enforces a mandatory delay between
// requests. A slower fetch never changes the result.
package alphavantage

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/finbook/microfolio"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Alpha Vantage endpoint.
const DefaultBaseURL = "https://www.alphavantage.co"

// pricePath extracts the close from a GLOBAL_QUOTE response, whose keys
// are numbered strings like "05. price".
const pricePath = `$["Global Quote"]["05. price"]`

// Client queries the Alpha Vantage API for closing prices.
type Client struct {
	// APIKey authenticates every request. Required.
	APIKey string
	// BaseURL may be overridden in tests.
	BaseURL string
	// HTTPClient defaults to a client with a daily-expiring disk cache, so
	// re-running a report does not spend API quota.
	HTTPClient *http.Client
	// Limiter spaces out requests to respect the API rate limit.
	Limiter *rate.Limiter
}

// NewClient creates a Client with the default endpoint, cache, and a
// conservative 12s inter-request delay (5 requests per minute).
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: newDailyCachingClient(),
		Limiter:    rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

// Close fetches the last close price for one symbol.
func (c *Client) Close(ctx context.Context, symbol string) (microfolio.Money, error) {
	if c.APIKey == "" {
		return microfolio.Money{}, fmt.Errorf("alphavantage: no API key configured")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return microfolio.Money{}, err
		}
	}

	addr := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.BaseURL, url.QueryEscape(symbol), url.QueryEscape(c.APIKey))

	// The GLOBAL_QUOTE payload is a small object with awkward numbered
	// keys; jsonpath keeps the extraction to one line.
	var doc interface{}
	if err := jwget(c.HTTPClient, addr, &doc); err != nil {
		return microfolio.Money{}, fmt.Errorf("cannot fetch quote for %s: %w", symbol, err)
	}
	raw, err := jsonpath.Get(pricePath, doc)
	if err != nil {
		return microfolio.Money{}, fmt.Errorf("no quote for %s in response", symbol)
	}
	text, ok := raw.(string)
	if !ok {
		return microfolio.Money{}, fmt.Errorf("unexpected price type %T for %s", raw, symbol)
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return microfolio.Money{}, fmt.Errorf("invalid price %q for %s: %w", text, symbol, err)
	}
	if !price.IsPositive() {
		return microfolio.Money{}, fmt.Errorf("non-positive price %q for %s", text, symbol)
	}
	return microfolio.M(price), nil
}

// Snapshot fetches the close for every symbol of the universe, in order.
// A failed fetch degrades that symbol to "unavailable" and the run
// continues; only when every symbol fails does Snapshot return an error
// wrapping microfolio.ErrNoPrices.
func (c *Client) Snapshot(ctx context.Context, on microfolio.Date, symbols []string) (microfolio.PriceSnapshot, error) {
	prices := make(map[string]microfolio.Money, len(symbols))
	for _, symbol := range symbols {
		price, err := c.Close(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return microfolio.PriceSnapshot{}, ctx.Err()
			}
			log.Printf("fetch %s: %v", symbol, err)
			continue
		}
		prices[symbol] = price
	}
	snapshot := microfolio.NewPriceSnapshot(on, prices)
	if snapshot.Len() == 0 {
		return snapshot, fmt.Errorf("all %d fetches failed: %w", len(symbols), microfolio.ErrNoPrices)
	}
	return snapshot, nil
}
