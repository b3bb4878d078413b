package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"rapport/internal/domain"
)

// Client looks up the latest stock quote for a ticker symbol. It is a
// best-effort feature: callers log failures as warnings and carry on
// without the market-data hint.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewClient creates a quote client against a Yahoo-finance-style endpoint.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}, log: log}
}

// Lookup fetches the latest quote for symbol. No retries: a miss degrades
// to skipping the hint.
func (c *Client) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.Quote{}, fmt.Errorf("quote lookup for %s: %s", symbol, resp.Status)
	}
	var out struct {
		QuoteResponse struct {
			Result []struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
			} `json:"result"`
		} `json:"quoteResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Quote{}, err
	}
	if len(out.QuoteResponse.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("no quote found for %s", symbol)
	}
	r := out.QuoteResponse.Result[0]
	return domain.Quote{Symbol: r.Symbol, Price: r.RegularMarketPrice, Currency: r.Currency}, nil
}

// Hint renders a quote as a one-line directive that can prefix a question,
// so the generator can relate the report to the current share price.
func Hint(q domain.Quote) string {
	return fmt.Sprintf("[Aktuell kurs för %s: %.2f %s] ", q.Symbol, q.Price, q.Currency)
}
