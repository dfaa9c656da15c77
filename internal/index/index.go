// Package index maintains the flattened, re-hydratable trade list used for
// re-filtering without re-parsing the raw payload. Applying a filter is a
// full recomputation over the matching subset, not an incremental update.
package index

import (
	"sort"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/pricing"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/stats"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/timeseries"
)

// Flatten derives the filterable record for each trade. Done once at
// ingestion; downstream filters never touch raw amounts again.
func Flatten(trades []*domain.TradeRecord) []domain.FlatTrade {
	out := make([]domain.FlatTrade, 0, len(trades))
	for _, t := range trades {
		f := domain.FlatTrade{
			OrderUID:  t.OrderUID,
			Ts:        t.BlockTimestamp,
			Direction: pricing.TradeDirection(t.SellToken, t.BuyToken),
		}
		if notional, ok := t.NotionalUSD(); ok {
			f.NotionalUSD = notional
			f.HasNotional = true
		}
		if d := pricing.ExecutionVsMarket(t); d.OK() {
			f.PriceMarginPct = d.Pct
			f.HasMargin = true
		}
		seen := make(map[string]bool, len(t.Bids))
		for i := range t.Bids {
			addr := t.Bids[i].SolverAddress
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			f.Solvers = append(f.Solvers, addr)
		}
		f.Participants = len(f.Solvers)
		if w := t.WinningBid(); w != nil {
			f.Winner = w.SolverAddress
		}
		out = append(out, f)
	}
	return out
}

// Filter selects a subset of flattened trades. Zero values mean "no
// constraint" except Direction, which uses DirectionUnknown as wildcard.
type Filter struct {
	FromTs      int64            `json:"fromTs"` // inclusive, epoch seconds
	ToTs        int64            `json:"toTs"`   // exclusive, epoch seconds
	Direction   domain.Direction `json:"direction"`
	MinNotional *float64         `json:"minNotional"`
	MaxNotional *float64         `json:"maxNotional"`
	Solver      string           `json:"solver"` // participation match
}

// Matches reports whether one flattened trade passes the filter.
func (f *Filter) Matches(t *domain.FlatTrade) bool {
	if f.FromTs != 0 && (t.Ts <= 0 || t.Ts < f.FromTs) {
		return false
	}
	if f.ToTs != 0 && (t.Ts <= 0 || t.Ts >= f.ToTs) {
		return false
	}
	if f.Direction != domain.DirectionUnknown && t.Direction != f.Direction {
		return false
	}
	if f.MinNotional != nil && (!t.HasNotional || t.NotionalUSD < *f.MinNotional) {
		return false
	}
	if f.MaxNotional != nil && (!t.HasNotional || t.NotionalUSD > *f.MaxNotional) {
		return false
	}
	if f.Solver != "" && !t.HasBidder(f.Solver) {
		return false
	}
	return true
}

// Apply returns the flattened trades passing the filter.
func Apply(flats []domain.FlatTrade, f *Filter) []domain.FlatTrade {
	out := make([]domain.FlatTrade, 0, len(flats))
	for i := range flats {
		if f == nil || f.Matches(&flats[i]) {
			out = append(out, flats[i])
		}
	}
	return out
}

// Result is the aggregate view recomputed over a filtered subset.
type Result struct {
	Trades          int                   `json:"trades"`
	SolverStats     []*domain.SolverStats `json:"solverStats"`
	NotionalSummary stats.Summary         `json:"notionalSummary"`
	BucketCounts    []stats.BinCount      `json:"bucketCounts"`
	AvgMarginPct    float64               `json:"avgMarginPct"`
	HasAvgMargin    bool                  `json:"hasAvgMargin"`
	DailyRate       []domain.DayRatePoint `json:"dailyRate"`
}

// Recompute re-runs the competition and daily aggregations over the subset.
func Recompute(flats []domain.FlatTrade) *Result {
	r := &Result{Trades: len(flats)}

	bySolver := make(map[string]*domain.SolverStats)
	get := func(addr string) *domain.SolverStats {
		s, ok := bySolver[addr]
		if !ok {
			s = &domain.SolverStats{SolverAddress: addr}
			bySolver[addr] = s
		}
		return s
	}

	var notionals []float64
	marginSum := 0.0
	marginN := 0
	byDay := make(map[string]*domain.DayRatePoint)

	for i := range flats {
		f := &flats[i]
		for _, addr := range f.Solvers {
			get(addr).TradesParticipated++
		}
		if f.Winner != "" {
			s := get(f.Winner)
			s.Wins++
			if f.HasNotional {
				s.VolumeUSD += f.NotionalUSD
			}
		}
		if f.HasNotional {
			notionals = append(notionals, f.NotionalUSD)
		}
		if f.HasMargin {
			marginSum += f.PriceMarginPct
			marginN++
		}
		if f.Ts > 0 {
			day := timeseries.DayKey(f.Ts)
			p, ok := byDay[day]
			if !ok {
				p = &domain.DayRatePoint{Day: day}
				byDay[day] = p
			}
			p.Total++
			if f.Winner != "" {
				p.Wins++
			}
		}
	}

	for _, s := range bySolver {
		r.SolverStats = append(r.SolverStats, s)
	}
	sort.Slice(r.SolverStats, func(i, j int) bool {
		if r.SolverStats[i].Wins != r.SolverStats[j].Wins {
			return r.SolverStats[i].Wins > r.SolverStats[j].Wins
		}
		return r.SolverStats[i].SolverAddress < r.SolverStats[j].SolverAddress
	})

	r.NotionalSummary = stats.Summarize(notionals)
	r.BucketCounts = stats.Bucketize(notionals, domain.SizeBucketEdges)
	if marginN > 0 {
		r.AvgMarginPct = marginSum / float64(marginN)
		r.HasAvgMargin = true
	}

	for _, p := range byDay {
		if p.Total > 0 {
			p.Rate = float64(p.Wins) / float64(p.Total)
		}
		r.DailyRate = append(r.DailyRate, *p)
	}
	sort.Slice(r.DailyRate, func(i, j int) bool { return r.DailyRate[i].Day < r.DailyRate[j].Day })

	return r
}
