package quotes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rapport/internal/domain"
)

func TestLookupParsesQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "VOLV-B.ST", r.URL.Query().Get("symbols"))
		resp := map[string]any{
			"quoteResponse": map[string]any{
				"result": []map[string]any{
					{"symbol": "VOLV-B.ST", "regularMarketPrice": 271.35, "currency": "SEK"},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	q, err := c.Lookup(context.Background(), "VOLV-B.ST")
	require.NoError(t, err)
	assert.Equal(t, "VOLV-B.ST", q.Symbol)
	assert.InDelta(t, 271.35, q.Price, 1e-9)
	assert.Equal(t, "SEK", q.Currency)
}

func TestLookupUnknownSymbolIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"quoteResponse": map[string]any{"result": []any{}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second, nil)
	_, err := c.Lookup(context.Background(), "NOPE")
	require.Error(t, err)
}

func TestHintFormat(t *testing.T) {
	h := Hint(domain.Quote{Symbol: "VOLV-B.ST", Price: 271.35, Currency: "SEK"})
	assert.Equal(t, "[Aktuell kurs för VOLV-B.ST: 271.35 SEK] ", h)
}
