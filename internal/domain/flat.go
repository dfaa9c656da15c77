package domain

import "strings"

// FlatTrade is the re-hydratable per-trade record derived once at ingestion.
// It carries enough to re-run the competition and time-series aggregations
// under a filter without touching raw amounts again.
type FlatTrade struct {
	OrderUID       string    `json:"orderUid"`
	Ts             int64     `json:"ts"` // UTC epoch seconds, <= 0 when unknown
	Direction      Direction `json:"direction"`
	NotionalUSD    float64   `json:"notionalUsd"`
	HasNotional    bool      `json:"hasNotional"`
	Participants   int       `json:"participants"`
	PriceMarginPct float64   `json:"priceMarginPct"` // direction-adjusted execution-vs-market %
	HasMargin      bool      `json:"hasMargin"`
	Winner         string    `json:"winner"` // empty when no winning bid
	Solvers        []string  `json:"solvers"`
}

// HasBidder reports whether the given solver bid on this trade. Addresses
// compare case-insensitively.
func (f *FlatTrade) HasBidder(solver string) bool {
	for _, s := range f.Solvers {
		if strings.EqualFold(s, solver) {
			return true
		}
	}
	return false
}
