// Package main runs the auction analytics service: it fetches the trades
// payload on a schedule (Redis-cached), aggregates it into a snapshot, and
// serves the snapshot plus filter recomputations over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/auctionapi"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/cache"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/httpapi"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/index"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/observability"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/worker"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/ws"
)

// Server wires the refresh loop to the serving surfaces.
type Server struct {
	client          *auctionapi.Client
	fallback        *auctionapi.Client
	slot            *cache.Slot
	engine          *aggregation.Engine
	hub             *ws.Hub
	work            *worker.Worker
	refreshInterval time.Duration
	filterTimeout   time.Duration
	sellToken       string
	buyToken        string
	logger          *log.Logger

	mu     sync.RWMutex
	latest *aggregation.Snapshot
}

func main() {
	loadEnvFile()

	apiBase := flag.String("api-base", os.Getenv("AUCTION_API_BASE"), "Trades API base URL")
	fallbackBase := flag.String("fallback-api-base", os.Getenv("AUCTION_API_FALLBACK"), "Fallback trades API base URL")
	sellToken := flag.String("sell-token", token.WETH, "Sell token address for the trades query")
	buyToken := flag.String("buy-token", token.USDC, "Buy token address for the trades query")
	focusSolver := flag.String("focus-solver", os.Getenv("FOCUS_SOLVER"), "Solver address for win-rate and runner-up series")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the payload cache (empty disables caching)")
	cacheKey := flag.String("cache-key", "auction:trades:payload", "Redis key for the cached payload")
	cacheTTL := flag.Duration("cache-ttl", cache.DefaultTTL, "Cache freshness horizon")
	refreshInterval := flag.Duration("refresh-interval", 10*time.Minute, "Payload refresh interval")
	windowDays := flag.Int("window-days", aggregation.DefaultWindowDays, "Day window for the daily series")
	listenAddr := flag.String("listen-addr", ":8080", "API HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *apiBase == "" {
		logger.Fatal("--api-base is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	engine := &aggregation.Engine{
		FocusSolver: strings.ToLower(*focusSolver),
		WindowDays:  *windowDays,
	}
	client := auctionapi.NewClient(*apiBase)

	server := &Server{
		client:          client,
		slot:            newCacheSlot(*redisAddr, *cacheKey, *cacheTTL, logger),
		engine:          engine,
		hub:             ws.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags)),
		work:            worker.New(engine, client, 8, log.New(os.Stdout, "[worker] ", log.LstdFlags)),
		refreshInterval: *refreshInterval,
		filterTimeout:   10 * time.Second,
		sellToken:       *sellToken,
		buyToken:        *buyToken,
		logger:          logger,
	}
	if *fallbackBase != "" {
		server.fallback = auctionapi.NewClient(*fallbackBase)
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go server.startMetricsServer(ctx, *metricsAddr)
	go server.startAPIServer(ctx, *listenAddr)
	go server.work.Run(ctx)

	err := server.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// newCacheSlot builds the Redis-backed cache slot, or nil when no Redis
// address is configured.
func newCacheSlot(addr, key string, ttl time.Duration, logger *log.Logger) *cache.Slot {
	if addr == "" {
		logger.Println("No --redis-addr, payload caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return cache.NewSlot(&cache.RedisKV{Client: rdb}, key, ttl, logger)
}

// Run serves cached data immediately if available, then refreshes on the
// configured interval until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if s.serveFromCache(ctx) {
		s.logger.Println("Serving cached payload while first refresh runs")
	}

	s.refresh(ctx)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// serveFromCache publishes a snapshot built from the cached payload.
// Returns false on miss or corruption; stale entries still publish.
func (s *Server) serveFromCache(ctx context.Context) bool {
	if s.slot == nil {
		return false
	}

	data, stale, ok := s.slot.Get(ctx)
	if !ok {
		observability.RecordCacheRead("miss")
		return false
	}
	if stale {
		observability.RecordCacheRead("stale")
	} else {
		observability.RecordCacheRead("fresh")
	}

	records, err := auctionapi.ParseResponse(data)
	if err != nil {
		s.logger.Printf("Cached payload unusable: %v", err)
		return false
	}
	s.publish(ctx, records)
	return true
}

// refresh fetches the payload (fallback host on primary failure), caches
// the raw bytes and publishes a fresh snapshot.
func (s *Server) refresh(ctx context.Context) {
	start := time.Now()

	raw, err := s.client.FetchRaw(ctx, s.client.TradesURL(s.sellToken, s.buyToken))
	if err != nil && s.fallback != nil && ctx.Err() == nil {
		s.logger.Printf("Primary fetch failed (%v), trying fallback", err)
		raw, err = s.fallback.FetchRaw(ctx, s.fallback.TradesURL(s.sellToken, s.buyToken))
	}
	if ctx.Err() != nil {
		observability.RecordFetch("cancelled", time.Since(start).Seconds())
		return
	}
	if err != nil {
		s.logger.Printf("Fetch failed: %v", err)
		observability.RecordFetch("error", time.Since(start).Seconds())
		return
	}
	observability.RecordFetch("ok", time.Since(start).Seconds())

	records, err := auctionapi.ParseResponse(raw)
	if err != nil {
		s.logger.Printf("Payload unusable: %v", err)
		observability.RecordAggregation("parse_error", time.Since(start).Seconds(), 0)
		return
	}
	observability.DefaultMetrics.RecordsParsed.Add(float64(len(records)))

	if s.slot != nil {
		if err := s.slot.Put(ctx, raw); err != nil {
			s.logger.Printf("Cache write failed (continuing): %v", err)
		}
	}

	s.publish(ctx, records)
	s.logger.Printf("Refreshed: %d records in %v", len(records), time.Since(start))
}

// publish aggregates, swaps in the new snapshot, hydrates the filter
// worker and notifies WebSocket subscribers.
func (s *Server) publish(ctx context.Context, records []domain.TradeRecord) {
	start := time.Now()
	snap := s.engine.Aggregate(records)
	observability.RecordAggregation("success", time.Since(start).Seconds(), snap.ValidRecords)
	observability.RecordInvalid(snap.MissingFields)

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	select {
	case s.work.Requests() <- worker.Request{Kind: worker.KindHydrate, Ctx: ctx, Index: snap.Index}:
	case <-ctx.Done():
		return
	}

	s.hub.Broadcast(map[string]any{
		"event":        "snapshot",
		"generatedAt":  snap.GeneratedAt,
		"totalRecords": snap.TotalRecords,
		"validRecords": snap.ValidRecords,
	})
}

// Latest implements httpapi.SnapshotProvider.
func (s *Server) Latest() *aggregation.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// runFilter routes a filter request through the worker and waits for the
// recomputed view.
func (s *Server) runFilter(f *index.Filter) (*index.Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.filterTimeout)
	defer cancel()

	reply := make(chan worker.Response, 1)
	select {
	case s.work.Requests() <- worker.Request{Kind: worker.KindFilter, Ctx: ctx, Filter: f, Reply: reply}:
	case <-ctx.Done():
		return nil, fmt.Errorf("filter queue full: %w", ctx.Err())
	}

	select {
	case resp := <-reply:
		if resp.Kind == worker.KindError {
			return nil, resp.Err
		}
		return resp.Filtered, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("filter timed out: %w", ctx.Err())
	}
}

func (s *Server) startAPIServer(ctx context.Context, addr string) {
	handler := httpapi.NewServer(s, s.runFilter, s.hub)
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting API server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Printf("API server error: %v", err)
	}
}

func (s *Server) startMetricsServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting metrics server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Printf("Metrics server error: %v", err)
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
