package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/index"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

type stubFetcher struct {
	byURL map[string][]domain.TradeRecord
	errs  map[string]error
	calls []string
}

func (s *stubFetcher) FetchTrades(ctx context.Context, url string) ([]domain.TradeRecord, error) {
	s.calls = append(s.calls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	return s.byURL[url], nil
}

func validRecord(uid string) domain.TradeRecord {
	return domain.TradeRecord{
		OrderUID:       uid,
		TxHash:         "0xtx" + uid,
		BlockTimestamp: time.Now().UTC().Unix(),
		SellToken:      token.USDC,
		BuyToken:       token.WETH,
		SellAmount:     "3000000000",
		BuyAmount:      "1000000000000000000",
		MarketPrices:   &domain.PricePair{SellTokenUSD: 1, BuyTokenUSD: 3000},
		Bids:           []domain.Bid{{SolverAddress: "0xaaa", Winner: true}},
	}
}

func startWorker(t *testing.T, f Fetcher) (*Worker, context.CancelFunc) {
	t.Helper()
	w := New(&aggregation.Engine{}, f, 4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	return w, cancel
}

func TestWorker_AggregateDone(t *testing.T) {
	f := &stubFetcher{byURL: map[string][]domain.TradeRecord{
		"primary": {validRecord("o1"), validRecord("o2")},
	}}
	w, cancel := startWorker(t, f)
	defer cancel()

	reply := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindAggregate, URL: "primary", Reply: reply}

	select {
	case resp := <-reply:
		require.Equal(t, KindDone, resp.Kind)
		require.NotNil(t, resp.Snapshot)
		assert.Equal(t, 2, resp.Snapshot.ValidRecords)
	case <-time.After(2 * time.Second):
		t.Fatal("no response")
	}
}

func TestWorker_FallbackURL(t *testing.T) {
	f := &stubFetcher{
		byURL: map[string][]domain.TradeRecord{"fallback": {validRecord("o1")}},
		errs:  map[string]error{"primary": errors.New("not json")},
	}
	w, cancel := startWorker(t, f)
	defer cancel()

	reply := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindAggregate, URL: "primary", FallbackURL: "fallback", Reply: reply}

	resp := <-reply
	require.Equal(t, KindDone, resp.Kind)
	assert.Equal(t, []string{"primary", "fallback"}, f.calls)
}

func TestWorker_AggregateError(t *testing.T) {
	fetchErr := errors.New("boom")
	f := &stubFetcher{errs: map[string]error{"primary": fetchErr}}
	w, cancel := startWorker(t, f)
	defer cancel()

	reply := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindAggregate, URL: "primary", Reply: reply}

	resp := <-reply
	require.Equal(t, KindError, resp.Kind)
	assert.ErrorIs(t, resp.Err, fetchErr)
}

func TestWorker_CancelledRequestEmitsNothing(t *testing.T) {
	f := &stubFetcher{byURL: map[string][]domain.TradeRecord{"primary": {validRecord("o1")}}}
	w, cancel := startWorker(t, f)
	defer cancel()

	reqCtx, reqCancel := context.WithCancel(context.Background())
	reqCancel() // cancelled before the worker picks it up

	reply := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindAggregate, Ctx: reqCtx, URL: "primary", Reply: reply}

	select {
	case resp := <-reply:
		t.Fatalf("cancelled request produced a response: %+v", resp)
	case <-time.After(200 * time.Millisecond):
		// Silence is the contract.
	}
}

func TestWorker_HydrateThenFilter(t *testing.T) {
	f := &stubFetcher{}
	w, cancel := startWorker(t, f)
	defer cancel()

	flats := []domain.FlatTrade{
		{OrderUID: "o1", Ts: 1700000000, NotionalUSD: 1500, HasNotional: true, Winner: "0xaaa", Solvers: []string{"0xaaa"}, Participants: 1},
		{OrderUID: "o2", Ts: 1700000000, NotionalUSD: 80_000, HasNotional: true, Winner: "0xbbb", Solvers: []string{"0xbbb"}, Participants: 1},
	}
	w.Requests() <- Request{Kind: KindHydrate, Index: flats}

	reply := make(chan Response, 1)
	min := 50_000.0
	w.Requests() <- Request{Kind: KindFilter, Filter: &index.Filter{MinNotional: &min}, Reply: reply}

	resp := <-reply
	require.Equal(t, KindFiltered, resp.Kind)
	require.NotNil(t, resp.Filtered)
	assert.Equal(t, 1, resp.Filtered.Trades)
	require.Len(t, resp.Filtered.SolverStats, 1)
	assert.Equal(t, "0xbbb", resp.Filtered.SolverStats[0].SolverAddress)
}

func TestWorker_AggregateHydratesIndexForFiltering(t *testing.T) {
	f := &stubFetcher{byURL: map[string][]domain.TradeRecord{
		"primary": {validRecord("o1")},
	}}
	w, cancel := startWorker(t, f)
	defer cancel()

	done := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindAggregate, URL: "primary", Reply: done}
	<-done

	filtered := make(chan Response, 1)
	w.Requests() <- Request{Kind: KindFilter, Filter: &index.Filter{}, Reply: filtered}
	resp := <-filtered
	require.Equal(t, KindFiltered, resp.Kind)
	assert.Equal(t, 1, resp.Filtered.Trades)
}
