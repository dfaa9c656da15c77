package auctionapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Trades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades", r.URL.Path)
		assert.Equal(t, "0xaaa", r.URL.Query().Get("tokenA"))
		assert.Equal(t, "0xbbb", r.URL.Query().Get("tokenB"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"orderUid": "o1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	records, err := c.Trades(context.Background(), "0xaaa", "0xbbb")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "o1", records[0].OrderUID)
}

func TestClient_Non2xxIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(0))
	_, err := c.Trades(context.Background(), "0xaaa", "0xbbb")
	assert.Error(t, err)
}

func TestClient_NonJSONContentTypeIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(0))
	_, err := c.Trades(context.Background(), "0xaaa", "0xbbb")
	assert.ErrorIs(t, err, ErrNotApplicationJSON)
}

func TestClient_CancelledContextSurfacesAsCtxErr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, WithMaxRetries(0))
	_, err := c.Trades(ctx, "0xaaa", "0xbbb")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
	_, err := c.Trades(context.Background(), "0xaaa", "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestClient_URLVariants(t *testing.T) {
	c := NewClient("http://api.example.com/")
	assert.Equal(t, "http://api.example.com/trades?tokenA=0xa&tokenB=0xb", c.TradesURL("0xa", "0xb"))
	assert.Contains(t, c.TradesByOrderUIDURL("0xuid"), "orderUid=0xuid")
	assert.Contains(t, c.TradesByTxHashURL("0xhash"), "transactionHash=0xhash")
}
