package domain

import (
	"math/big"
	"strings"
)

// TradeRecord represents one settled batch-auction order together with the
// solver competition data attached to it. Immutable once fetched.
type TradeRecord struct {
	OrderUID    string // unique order identifier
	TxHash      string // settlement transaction hash
	BlockNumber int64  // settlement block

	// BlockTimestamp is UTC epoch seconds. Zero or negative means the
	// upstream payload carried no usable timestamp; such records are
	// excluded from all day/hour bucketing but still aggregated otherwise.
	BlockTimestamp int64

	SellToken  string // lowercase token address
	BuyToken   string // lowercase token address
	SellAmount string // raw integer string in the token's smallest unit
	BuyAmount  string // raw integer string in the token's smallest unit

	// FeeAmount may exceed float64 safe-integer range, kept arbitrary-precision.
	FeeAmount *big.Int

	// Bids holds zero or more competing solver quotes for this order.
	// At most one has Winner set. Empty means no competition data.
	Bids []Bid

	// MarketPrices is the point-in-time external reference quote pair,
	// nil when the feed had no quote for this trade.
	MarketPrices *PricePair

	// Derived fields, attached by the aggregation engine.
	SellValueUSD  *float64 // normalized sell amount x sell reference price
	BuyValueUSD   *float64 // normalized buy amount x buy reference price
	APIQuotePrice *float64 // third-party quoted price for the focus solver
}

// Bid is one solver's proposed execution for an order.
type Bid struct {
	SolverAddress string // lowercase solver address
	SellAmount    string // raw integer string
	BuyAmount     string // raw integer string
	Winner        bool   // true for the settled bid only
}

// PricePair is an external market quote for both sides of a trade.
type PricePair struct {
	SellTokenUSD float64
	BuyTokenUSD  float64
}

// NotionalUSD returns the trade's USD size, preferring the sell side.
// Returns (0, false) when neither side has a derived USD value.
func (t *TradeRecord) NotionalUSD() (float64, bool) {
	if t.SellValueUSD != nil {
		return *t.SellValueUSD, true
	}
	if t.BuyValueUSD != nil {
		return *t.BuyValueUSD, true
	}
	return 0, false
}

// WinningBid returns the bid marked as winner, or nil if none is marked.
func (t *TradeRecord) WinningBid() *Bid {
	for i := range t.Bids {
		if t.Bids[i].Winner {
			return &t.Bids[i]
		}
	}
	return nil
}

// HasBidder reports whether the given solver appears in the bid list.
// Addresses compare case-insensitively.
func (t *TradeRecord) HasBidder(solver string) bool {
	for i := range t.Bids {
		if strings.EqualFold(t.Bids[i].SolverAddress, solver) {
			return true
		}
	}
	return false
}

// TimeFilterable reports whether the record carries a usable timestamp.
func (t *TradeRecord) TimeFilterable() bool {
	return t.BlockTimestamp > 0
}

// MissingFields returns the names of required identity/amount fields that
// are absent. A record is valid for aggregation only when this is empty.
func (t *TradeRecord) MissingFields() []string {
	var missing []string
	if t.OrderUID == "" {
		missing = append(missing, "orderUid")
	}
	if t.TxHash == "" {
		missing = append(missing, "txHash")
	}
	if t.SellToken == "" {
		missing = append(missing, "sellToken")
	}
	if t.BuyToken == "" {
		missing = append(missing, "buyToken")
	}
	if t.SellAmount == "" {
		missing = append(missing, "sellAmount")
	}
	if t.BuyAmount == "" {
		missing = append(missing, "buyAmount")
	}
	return missing
}

// Direction classifies which side of the non-stable token the trader is on.
type Direction int

const (
	// DirectionUnknown means both or neither side of the trade is a
	// stable token, so "better price" is undetermined.
	DirectionUnknown Direction = iota
	// DirectionSell means the trader sells the non-stable token; a higher
	// USD-per-token execution favors them.
	DirectionSell
	// DirectionBuy means the trader buys the non-stable token; a lower
	// USD-per-token execution favors them.
	DirectionBuy
)

// String returns the wire/report label for the direction.
func (d Direction) String() string {
	switch d {
	case DirectionSell:
		return "sell"
	case DirectionBuy:
		return "buy"
	default:
		return "unknown"
	}
}
