package pricing

import (
	"math"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
)

// SkipReason explains why a delta could not be computed for a record.
type SkipReason int

const (
	// SkipNone marks an eligible delta.
	SkipNone SkipReason = iota
	// SkipNonFinite marks a NaN/Inf candidate or reference price.
	SkipNonFinite
	// SkipZeroReference marks a zero reference denominator.
	SkipZeroReference
	// SkipUnknownDirection marks a trade whose direction is undetermined.
	SkipUnknownDirection
)

// String returns a diagnostic label for the reason.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "ok"
	case SkipNonFinite:
		return "non_finite"
	case SkipZeroReference:
		return "zero_reference"
	case SkipUnknownDirection:
		return "unknown_direction"
	default:
		return "unknown"
	}
}

// Delta is the result of one direction-adjusted price comparison. Pct is
// meaningful only when Reason is SkipNone.
type Delta struct {
	Pct    float64
	Reason SkipReason
}

// OK reports whether the delta is eligible for averaging.
func (d Delta) OK() bool { return d.Reason == SkipNone }

// Bps returns the delta in basis points (1% = 100 bps).
func (d Delta) Bps() float64 { return d.Pct * 100 }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AdjustedPctDelta computes ((candidate - reference) / reference) * 100 with
// the sign normalized so that positive always means "favorable to the
// trader" regardless of trade direction.
func AdjustedPctDelta(candidate, reference float64, dir domain.Direction) Delta {
	if dir == domain.DirectionUnknown {
		return Delta{Reason: SkipUnknownDirection}
	}
	if !isFinite(candidate) || !isFinite(reference) {
		return Delta{Reason: SkipNonFinite}
	}
	if reference == 0 {
		return Delta{Reason: SkipZeroReference}
	}
	pct := (candidate - reference) / reference * 100
	if dir == domain.DirectionBuy {
		pct = -pct
	}
	return Delta{Pct: pct}
}

// AverageDelta folds eligible deltas into a mean percentage. Ineligible
// entries are skipped; (0, false) is returned when none are eligible,
// distinguishing "no signal" from "signal is zero".
func AverageDelta(deltas []Delta) (float64, bool) {
	sum := 0.0
	n := 0
	for _, d := range deltas {
		if !d.OK() {
			continue
		}
		sum += d.Pct
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ExecutionVsMarket compares the settled execution price to the market
// reference for one trade.
func ExecutionVsMarket(t *domain.TradeRecord) Delta {
	exec, ok := ExecutionPrice(t)
	if !ok {
		return Delta{Reason: priceFailureReason(t)}
	}
	return vsMarket(t, exec)
}

// priceFailureReason distinguishes an ambiguous pair from a degenerate
// amount when price derivation fails.
func priceFailureReason(t *domain.TradeRecord) SkipReason {
	if TradeDirection(t.SellToken, t.BuyToken) == domain.DirectionUnknown {
		return SkipUnknownDirection
	}
	return SkipZeroReference
}

// QuoteVsMarket compares the third-party API quote attached to the trade to
// the market reference.
func QuoteVsMarket(t *domain.TradeRecord) Delta {
	if t.APIQuotePrice == nil {
		return Delta{Reason: SkipNonFinite}
	}
	return vsMarket(t, *t.APIQuotePrice)
}

// WinnerVsMarket compares the winning bid's implied price to the market
// reference.
func WinnerVsMarket(t *domain.TradeRecord) Delta {
	w := t.WinningBid()
	if w == nil {
		return Delta{Reason: SkipNonFinite}
	}
	price, ok := BidPrice(t, w)
	if !ok {
		return Delta{Reason: priceFailureReason(t)}
	}
	return vsMarket(t, price)
}

// SolverBidVsMarket compares one named solver's bid price to the market
// reference. The solver's first bid on the trade is used.
func SolverBidVsMarket(t *domain.TradeRecord, solver string) Delta {
	for i := range t.Bids {
		if t.Bids[i].SolverAddress != solver {
			continue
		}
		price, ok := BidPrice(t, &t.Bids[i])
		if !ok {
			return Delta{Reason: priceFailureReason(t)}
		}
		return vsMarket(t, price)
	}
	return Delta{Reason: SkipNonFinite}
}

func vsMarket(t *domain.TradeRecord, candidate float64) Delta {
	ref, ok := MarketReference(t)
	if !ok {
		return Delta{Reason: SkipNonFinite}
	}
	return AdjustedPctDelta(candidate, ref, TradeDirection(t.SellToken, t.BuyToken))
}

// AverageExecutionVsMarket averages the execution-vs-market delta over a
// trade collection, skipping ineligible records.
func AverageExecutionVsMarket(trades []*domain.TradeRecord) (float64, bool) {
	deltas := make([]Delta, 0, len(trades))
	for _, t := range trades {
		deltas = append(deltas, ExecutionVsMarket(t))
	}
	return AverageDelta(deltas)
}

// AverageWinnerVsMarket averages the winning-bid-vs-market delta.
func AverageWinnerVsMarket(trades []*domain.TradeRecord) (float64, bool) {
	deltas := make([]Delta, 0, len(trades))
	for _, t := range trades {
		deltas = append(deltas, WinnerVsMarket(t))
	}
	return AverageDelta(deltas)
}

// AverageQuoteVsMarket averages the API-quote-vs-market delta.
func AverageQuoteVsMarket(trades []*domain.TradeRecord) (float64, bool) {
	deltas := make([]Delta, 0, len(trades))
	for _, t := range trades {
		deltas = append(deltas, QuoteVsMarket(t))
	}
	return AverageDelta(deltas)
}

// AverageSolverBidVsMarket averages one solver's bid-vs-market delta.
func AverageSolverBidVsMarket(trades []*domain.TradeRecord, solver string) (float64, bool) {
	deltas := make([]Delta, 0, len(trades))
	for _, t := range trades {
		deltas = append(deltas, SolverBidVsMarket(t, solver))
	}
	return AverageDelta(deltas)
}
