package pricing

import (
	"math"
	"testing"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

func TestAdjustedPctDelta_SignNormalization(t *testing.T) {
	// Executing at 3100 against a 3000 reference: +3.33% raw.
	sell := AdjustedPctDelta(3100, 3000, domain.DirectionSell)
	buy := AdjustedPctDelta(3100, 3000, domain.DirectionBuy)
	if !sell.OK() || !buy.OK() {
		t.Fatal("both deltas should be eligible")
	}
	if sell.Pct <= 0 {
		t.Errorf("seller got a higher price: delta should be positive, got %v", sell.Pct)
	}
	if buy.Pct >= 0 {
		t.Errorf("buyer paid a higher price: delta should be negative, got %v", buy.Pct)
	}
}

func TestAdjustedPctDelta_FlipAntisymmetry(t *testing.T) {
	cases := []struct{ a, b float64 }{
		{3100, 3000},
		{2900, 3000},
		{3000, 3000},
		{0.5, 1.25},
	}
	for _, c := range cases {
		sell := AdjustedPctDelta(c.a, c.b, domain.DirectionSell)
		buy := AdjustedPctDelta(c.a, c.b, domain.DirectionBuy)
		if sell.Pct != -buy.Pct {
			t.Errorf("flip(%v, %v): %v != -%v", c.a, c.b, sell.Pct, buy.Pct)
		}
	}
}

func TestAdjustedPctDelta_Ineligible(t *testing.T) {
	cases := []struct {
		name   string
		a, b   float64
		dir    domain.Direction
		reason SkipReason
	}{
		{"unknown direction", 3100, 3000, domain.DirectionUnknown, SkipUnknownDirection},
		{"zero reference", 3100, 0, domain.DirectionSell, SkipZeroReference},
		{"nan candidate", math.NaN(), 3000, domain.DirectionSell, SkipNonFinite},
		{"inf reference", 3100, math.Inf(1), domain.DirectionBuy, SkipNonFinite},
	}
	for _, c := range cases {
		d := AdjustedPctDelta(c.a, c.b, c.dir)
		if d.OK() {
			t.Errorf("%s: delta unexpectedly eligible", c.name)
		}
		if d.Reason != c.reason {
			t.Errorf("%s: reason = %v, want %v", c.name, d.Reason, c.reason)
		}
	}
}

func TestDelta_Bps(t *testing.T) {
	d := AdjustedPctDelta(3030, 3000, domain.DirectionSell)
	if !d.OK() {
		t.Fatal("expected eligible delta")
	}
	if math.Abs(d.Bps()-100) > 1e-9 {
		t.Errorf("1%% should be 100 bps, got %v", d.Bps())
	}
}

func TestAverageDelta_SkipsIneligible(t *testing.T) {
	deltas := []Delta{
		{Pct: 2},
		{Reason: SkipZeroReference},
		{Pct: 4},
		{Reason: SkipNonFinite},
	}
	avg, ok := AverageDelta(deltas)
	if !ok {
		t.Fatal("expected signal")
	}
	// Averaged over the 2 eligible entries only, not all 4.
	if avg != 3 {
		t.Errorf("avg = %v, want 3", avg)
	}
}

func TestAverageDelta_NoEligible(t *testing.T) {
	deltas := []Delta{{Reason: SkipZeroReference}, {Reason: SkipUnknownDirection}}
	if _, ok := AverageDelta(deltas); ok {
		t.Error("zero eligible entries must return no-signal, not 0")
	}
	if _, ok := AverageDelta(nil); ok {
		t.Error("empty input must return no-signal")
	}
}

func sampleTrade() *domain.TradeRecord {
	return &domain.TradeRecord{
		OrderUID:   "0xorder",
		SellToken:  token.USDC,
		BuyToken:   token.WETH,
		SellAmount: "3100000000",          // 3100 USDC
		BuyAmount:  "1000000000000000000", // 1 WETH -> exec price 3100
		MarketPrices: &domain.PricePair{
			SellTokenUSD: 1,
			BuyTokenUSD:  3000,
		},
		Bids: []domain.Bid{
			{SolverAddress: "0xaaa", SellAmount: "3100000000", BuyAmount: "1000000000000000000", Winner: true},
			{SolverAddress: "0xbbb", SellAmount: "3100000000", BuyAmount: "970000000000000000"},
		},
	}
}

func TestExecutionVsMarket(t *testing.T) {
	d := ExecutionVsMarket(sampleTrade())
	if !d.OK() {
		t.Fatalf("ineligible: %v", d.Reason)
	}
	// Paid 3100 for a token quoted at 3000: 3.33% worse for a buyer.
	want := -(3100.0 - 3000.0) / 3000.0 * 100
	if math.Abs(d.Pct-want) > 1e-9 {
		t.Errorf("pct = %v, want %v", d.Pct, want)
	}
}

func TestWinnerVsMarket(t *testing.T) {
	tr := sampleTrade()
	d := WinnerVsMarket(tr)
	if !d.OK() {
		t.Fatalf("ineligible: %v", d.Reason)
	}

	tr.Bids = nil
	if WinnerVsMarket(tr).OK() {
		t.Error("no winner: delta must be ineligible")
	}
}

func TestSolverBidVsMarket(t *testing.T) {
	tr := sampleTrade()
	// 0xbbb proposed 0.97 WETH for 3100 USDC -> 3195.87 USD/WETH, worse for a buyer.
	d := SolverBidVsMarket(tr, "0xbbb")
	if !d.OK() {
		t.Fatalf("ineligible: %v", d.Reason)
	}
	if d.Pct >= 0 {
		t.Errorf("worse bid should be negative after adjustment, got %v", d.Pct)
	}
	if SolverBidVsMarket(tr, "0xmissing").OK() {
		t.Error("absent solver: delta must be ineligible")
	}
}

func TestQuoteVsMarket(t *testing.T) {
	tr := sampleTrade()
	if QuoteVsMarket(tr).OK() {
		t.Error("no API quote attached: delta must be ineligible")
	}
	quote := 2940.0
	tr.APIQuotePrice = &quote
	d := QuoteVsMarket(tr)
	if !d.OK() {
		t.Fatalf("ineligible: %v", d.Reason)
	}
	// Quote below market favors a buyer: positive after adjustment.
	if d.Pct <= 0 {
		t.Errorf("pct = %v, want positive", d.Pct)
	}
}

func TestAverageExecutionVsMarket(t *testing.T) {
	trades := []*domain.TradeRecord{sampleTrade(), sampleTrade()}
	avg, ok := AverageExecutionVsMarket(trades)
	if !ok {
		t.Fatal("expected signal")
	}
	want := -(3100.0 - 3000.0) / 3000.0 * 100
	if math.Abs(avg-want) > 1e-9 {
		t.Errorf("avg = %v, want %v", avg, want)
	}

	// A trade without a market quote is skipped, not averaged as zero.
	noQuote := sampleTrade()
	noQuote.MarketPrices = nil
	avg2, ok := AverageExecutionVsMarket(append(trades, noQuote))
	if !ok || math.Abs(avg2-want) > 1e-9 {
		t.Errorf("avg with skipped record = (%v, %v), want (%v, true)", avg2, ok, want)
	}
}
