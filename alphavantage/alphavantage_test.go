package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finbook/microfolio"
)

// quotes maps symbol to the price the fake server returns; an absent symbol
// gets an empty body, the way Alpha Vantage answers unknown tickers.
func fakeServer(t *testing.T, quotes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("function = %q, want GLOBAL_QUOTE", got)
		}
		if r.URL.Query().Get("apikey") == "" {
			t.Error("request carries no API key")
		}
		symbol := r.URL.Query().Get("symbol")
		price, ok := quotes[symbol]
		if !ok {
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprintf(w, `{"Global Quote":{"01. symbol":%q,"05. price":%q}}`, symbol, price)
	}))
}

// testClient returns a client pointed at the fake server, with no rate
// limiter and no disk cache so tests stay fast and hermetic.
func testClient(url string) *Client {
	return &Client{
		APIKey:     "test-key",
		BaseURL:    url,
		HTTPClient: http.DefaultClient,
	}
}

func TestClient_Close(t *testing.T) {
	srv := fakeServer(t, map[string]string{"ARQ": "5.0000"})
	defer srv.Close()
	c := testClient(srv.URL)

	price, err := c.Close(context.Background(), "ARQ")
	if err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !price.Equal(microfolio.M(5)) {
		t.Errorf("price = %s, want $5.00", price)
	}

	if _, err := c.Close(context.Background(), "NOPE"); err == nil {
		t.Error("Close() on an unknown symbol succeeded")
	}
}

func TestClient_CloseRequiresAPIKey(t *testing.T) {
	c := testClient("http://invalid")
	c.APIKey = ""
	if _, err := c.Close(context.Background(), "ARQ"); err == nil {
		t.Error("Close() without API key succeeded")
	}
}

func TestClient_SnapshotDegradesPerSymbol(t *testing.T) {
	srv := fakeServer(t, map[string]string{"ARQ": "5.00", "GEVO": "1.74"})
	defer srv.Close()
	c := testClient(srv.URL)
	on := microfolio.MustParseDate("2025-08-22")

	snap, err := c.Snapshot(context.Background(), on, []string{"ARQ", "FEIM", "GEVO"})
	if err != nil {
		t.Fatalf("Snapshot() = %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("snapshot has %d prices, want 2", snap.Len())
	}
	if _, ok := snap.Price("FEIM"); ok {
		t.Error("failed symbol has a price")
	}
	if snap.On() != on {
		t.Errorf("snapshot date = %s, want %s", snap.On(), on)
	}
}

func TestClient_SnapshotAllFailed(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()
	c := testClient(srv.URL)

	_, err := c.Snapshot(context.Background(), microfolio.Today(), []string{"ARQ", "GEVO"})
	if !errors.Is(err, microfolio.ErrNoPrices) {
		t.Fatalf("Snapshot() = %v, want ErrNoPrices", err)
	}
}
