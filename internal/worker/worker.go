// Package worker runs aggregation off the serving path. Requests and
// responses are plain structs over channels; each request carries its own
// context and cancelled work emits nothing, so a superseded request is a
// silent no-op rather than an error.
package worker

import (
	"context"
	"log"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/index"
)

// Fetcher loads raw trade records from a URL. The auctionapi client
// satisfies this.
type Fetcher interface {
	FetchTrades(ctx context.Context, url string) ([]domain.TradeRecord, error)
}

// RequestKind discriminates the three message shapes.
type RequestKind int

const (
	// KindAggregate fetches from URL (FallbackURL on a non-JSON primary)
	// and runs the full aggregation.
	KindAggregate RequestKind = iota
	// KindFilter recomputes from the previously hydrated index; no fetch.
	KindFilter
	// KindHydrate replaces the held index for later filtering.
	KindHydrate
)

// Request is one unit of work.
type Request struct {
	Kind RequestKind

	// Ctx cancels this request only. A nil Ctx means context.Background.
	Ctx context.Context

	// Aggregate
	URL         string
	FallbackURL string

	// Filter
	Filter *index.Filter

	// Hydrate
	Index []domain.FlatTrade

	// Reply receives exactly one response for aggregate/filter requests,
	// none when the request is cancelled. Hydrate sends no response.
	Reply chan<- Response
}

// ResponseKind discriminates worker results.
type ResponseKind int

const (
	// KindDone carries a full snapshot from an aggregate request.
	KindDone ResponseKind = iota
	// KindFiltered carries a recomputed view from a filter request.
	KindFiltered
	// KindError carries a terminal failure for the request.
	KindError
)

// Response is the worker's answer to one request.
type Response struct {
	Kind     ResponseKind
	Snapshot *aggregation.Snapshot
	Filtered *index.Result
	Err      error
}

// Worker owns one hydrated index and processes requests sequentially.
// There is no shared mutable state across requests beyond that index.
type Worker struct {
	engine   *aggregation.Engine
	fetcher  Fetcher
	requests chan Request
	logger   *log.Logger

	held []domain.FlatTrade // hydrated index for filter requests
}

// New creates a worker. queue bounds the pending request channel.
func New(engine *aggregation.Engine, fetcher Fetcher, queue int, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		engine:   engine,
		fetcher:  fetcher,
		requests: make(chan Request, queue),
		logger:   logger,
	}
}

// Requests returns the submission channel.
func (w *Worker) Requests() chan<- Request { return w.requests }

// Run processes requests until ctx is done. Intended to run in its own
// goroutine.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			w.handle(ctx, req)
		}
	}
}

func (w *Worker) handle(ctx context.Context, req Request) {
	reqCtx := req.Ctx
	if reqCtx == nil {
		reqCtx = context.Background()
	}

	switch req.Kind {
	case KindHydrate:
		w.held = req.Index

	case KindFilter:
		subset := index.Apply(w.held, req.Filter)
		w.reply(reqCtx, req, Response{Kind: KindFiltered, Filtered: index.Recompute(subset)})

	case KindAggregate:
		records, err := w.fetch(reqCtx, req.URL, req.FallbackURL)
		if reqCtx.Err() != nil || ctx.Err() != nil {
			// Cancelled mid-flight: discard silently, update nothing.
			return
		}
		if err != nil {
			w.logger.Printf("[worker] aggregate fetch failed: %v", err)
			w.reply(reqCtx, req, Response{Kind: KindError, Err: err})
			return
		}
		snap := w.engine.Aggregate(records)
		w.held = snap.Index
		w.reply(reqCtx, req, Response{Kind: KindDone, Snapshot: snap})
	}
}

func (w *Worker) fetch(ctx context.Context, url, fallback string) ([]domain.TradeRecord, error) {
	records, err := w.fetcher.FetchTrades(ctx, url)
	if err == nil || fallback == "" || ctx.Err() != nil {
		return records, err
	}
	w.logger.Printf("[worker] primary fetch failed (%v), trying fallback", err)
	return w.fetcher.FetchTrades(ctx, fallback)
}

func (w *Worker) reply(ctx context.Context, req Request, resp Response) {
	if req.Reply == nil {
		return
	}
	select {
	case req.Reply <- resp:
	case <-ctx.Done():
		// Receiver gone; drop the response.
	}
}
