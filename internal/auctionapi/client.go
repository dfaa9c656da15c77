package auctionapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 1 * time.Second
)

// ErrNotApplicationJSON marks a response served with a non-JSON content
// type; callers treat it as a hard fetch failure (and may try a fallback).
var ErrNotApplicationJSON = errors.New("response content-type is not application/json")

// Client talks to the trades API over HTTP.
type Client struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithMaxRetries sets the retry attempts for transport-level failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets the delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a trades API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TradesURL builds the pair-scoped trades URL.
func (c *Client) TradesURL(tokenA, tokenB string) string {
	q := url.Values{}
	q.Set("tokenA", tokenA)
	q.Set("tokenB", tokenB)
	return c.baseURL + "/trades?" + q.Encode()
}

// TradesByOrderUIDURL builds the order-scoped trades URL.
func (c *Client) TradesByOrderUIDURL(orderUID string) string {
	q := url.Values{}
	q.Set("orderUid", orderUID)
	return c.baseURL + "/trades?" + q.Encode()
}

// TradesByTxHashURL builds the transaction-scoped trades URL.
func (c *Client) TradesByTxHashURL(txHash string) string {
	q := url.Values{}
	q.Set("transactionHash", txHash)
	return c.baseURL + "/trades?" + q.Encode()
}

// Trades fetches all trades for a token pair.
func (c *Client) Trades(ctx context.Context, tokenA, tokenB string) ([]domain.TradeRecord, error) {
	return c.FetchTrades(ctx, c.TradesURL(tokenA, tokenB))
}

// TradesByOrderUID fetches the trades for one order.
func (c *Client) TradesByOrderUID(ctx context.Context, orderUID string) ([]domain.TradeRecord, error) {
	return c.FetchTrades(ctx, c.TradesByOrderUIDURL(orderUID))
}

// TradesByTxHash fetches the trades settled in one transaction.
func (c *Client) TradesByTxHash(ctx context.Context, txHash string) ([]domain.TradeRecord, error) {
	return c.FetchTrades(ctx, c.TradesByTxHashURL(txHash))
}

// FetchTrades GETs an absolute URL and parses the payload. A non-2xx
// status or a non-JSON content type is a hard failure. A cancelled context
// surfaces as ctx.Err so callers can tell abort from breakage.
func (c *Client) FetchTrades(ctx context.Context, rawURL string) ([]domain.TradeRecord, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	records, err := ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return records, nil
}

// FetchRaw GETs an absolute URL and returns the validated raw payload,
// for callers that cache the body before parsing.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// Retry server errors, fail fast on the rest.
			lastErr = fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
			if resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		ct := resp.Header.Get("Content-Type")
		if !strings.Contains(ct, "application/json") {
			return nil, fmt.Errorf("%w: got %q", ErrNotApplicationJSON, ct)
		}
		return body, nil
	}
	return nil, lastErr
}
