// Package aggregation runs the full analytics pass over a raw trade
// collection and produces one immutable snapshot: validation tally, derived
// USD values, size buckets, premium averages, solver competition aggregates
// and time series. A pass is synchronous and side-effect-free with respect
// to its inputs; records are copied before derived fields are attached.
package aggregation

import (
	"math"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/competition"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/index"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/pricing"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/stats"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/timeseries"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

// Default windows, matching the dashboard charts.
const (
	DefaultWindowDays      = 20
	DefaultRateMAWindow    = 7
	DefaultPremiumMAWindow = 6
)

// BucketView is one size band with its premium averages.
type BucketView struct {
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	AvgExecPct   float64 `json:"avgExecPct"` // execution vs market, adjusted %
	HasExecPct   bool    `json:"hasExecPct"`
	AvgWinnerPct float64 `json:"avgWinnerPct"` // winning bid vs market
	HasWinnerPct bool    `json:"hasWinnerPct"`
}

// Snapshot is the complete aggregation output handed to presentation.
// Plain data, immutable after construction.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`

	TotalRecords  int            `json:"totalRecords"`
	ValidRecords  int            `json:"validRecords"`
	MissingFields map[string]int `json:"missingFields"` // tally per field name

	Buckets         []BucketView  `json:"buckets"`
	NotionalSummary stats.Summary `json:"notionalSummary"`

	AvgExecutionVsMarketPct float64 `json:"avgExecutionVsMarketPct"`
	HasExecutionVsMarket    bool    `json:"hasExecutionVsMarket"`
	AvgQuoteVsMarketPct     float64 `json:"avgQuoteVsMarketPct"`
	HasQuoteVsMarket        bool    `json:"hasQuoteVsMarket"`

	SolverStats []*domain.SolverStats     `json:"solverStats"`
	Rivalry     *domain.RivalryMatrix     `json:"rivalry"`
	RunnerUp    competition.RunnerUpStudy `json:"runnerUp"`

	DailyRate     []domain.DayRatePoint   `json:"dailyRate"`
	DailyRateMA   []float64               `json:"dailyRateMa"`
	DailyVolume   []domain.DayVolumePoint `json:"dailyVolume"`
	DailyVolumeMA []float64               `json:"dailyVolumeMa"`
	HourlyPremium []domain.HourPoint      `json:"hourlyPremium"`

	// HourlyPremiumMA uses nil for windows with no eligible hour, keeping
	// the snapshot JSON-encodable (NaN is not valid JSON).
	HourlyPremiumMA []*float64 `json:"hourlyPremiumMa"`

	Index []domain.FlatTrade `json:"index"`
}

// Engine holds the aggregation parameters. Zero windows fall back to the
// defaults; Now defaults to time.Now.
type Engine struct {
	FocusSolver     string
	WindowDays      int
	RateMAWindow    int
	PremiumMAWindow int
	Now             func() time.Time
}

func (e *Engine) windows() (int, int, int) {
	wd, rw, pw := e.WindowDays, e.RateMAWindow, e.PremiumMAWindow
	if wd <= 0 {
		wd = DefaultWindowDays
	}
	if rw <= 0 {
		rw = DefaultRateMAWindow
	}
	if pw <= 0 {
		pw = DefaultPremiumMAWindow
	}
	return wd, rw, pw
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Aggregate runs the full pass. Invalid records are tallied per missing
// field and excluded; every aggregate below operates on the valid subset.
func (e *Engine) Aggregate(records []domain.TradeRecord) *Snapshot {
	now := e.now()
	windowDays, rateWindow, premiumWindow := e.windows()

	snap := &Snapshot{
		GeneratedAt:   now,
		TotalRecords:  len(records),
		MissingFields: make(map[string]int),
	}

	// Validate and derive on copies; the caller's slice stays untouched.
	valid := make([]*domain.TradeRecord, 0, len(records))
	for i := range records {
		r := records[i]
		if missing := r.MissingFields(); len(missing) > 0 {
			for _, f := range missing {
				snap.MissingFields[f]++
			}
			continue
		}
		deriveUSDValues(&r)
		valid = append(valid, &r)
	}
	snap.ValidRecords = len(valid)

	// Size buckets with per-band premium averages.
	buckets := domain.BucketTradesBySize(valid)
	snap.Buckets = make([]BucketView, domain.NumSizeBuckets)
	for i, label := range domain.SizeBucketLabels {
		view := BucketView{Label: label, Count: len(buckets.Trades[i])}
		view.AvgExecPct, view.HasExecPct = pricing.AverageExecutionVsMarket(buckets.Trades[i])
		view.AvgWinnerPct, view.HasWinnerPct = pricing.AverageWinnerVsMarket(buckets.Trades[i])
		snap.Buckets[i] = view
	}

	var notionals []float64
	for _, t := range valid {
		if n, ok := t.NotionalUSD(); ok {
			notionals = append(notionals, n)
		}
	}
	snap.NotionalSummary = stats.Summarize(notionals)

	snap.AvgExecutionVsMarketPct, snap.HasExecutionVsMarket = pricing.AverageExecutionVsMarket(valid)
	snap.AvgQuoteVsMarketPct, snap.HasQuoteVsMarket = pricing.AverageQuoteVsMarket(valid)

	snap.SolverStats = competition.Aggregate(valid)
	snap.Rivalry = competition.BuildRivalryMatrix(valid, competition.DefaultRivalrySize)

	if e.FocusSolver != "" {
		snap.RunnerUp = competition.StudyRunnerUp(valid, e.FocusSolver)
		snap.DailyRate = timeseries.WinRateSeries(valid, e.FocusSolver, windowDays, now)
		snap.DailyRateMA = timeseries.RateMovingAverage(snap.DailyRate, rateWindow)
		snap.DailyVolume = timeseries.VolumeSeries(valid, e.FocusSolver, windowDays, now)
		snap.DailyVolumeMA = timeseries.VolumeMovingAverage(snap.DailyVolume, rateWindow)
		snap.HourlyPremium = timeseries.HourlyPremiumSeries(valid, e.FocusSolver)
		snap.HourlyPremiumMA = dropNonFinite(timeseries.PremiumMovingAverage(snap.HourlyPremium, premiumWindow))
	}

	snap.Index = index.Flatten(valid)
	return snap
}

// deriveUSDValues attaches the USD notional fields when the corresponding
// reference price is present and finite.
func deriveUSDValues(t *domain.TradeRecord) {
	if t.MarketPrices == nil {
		return
	}
	if sellAmt, ok := token.NormalizeAmount(t.SellAmount, t.SellToken); ok {
		if p := t.MarketPrices.SellTokenUSD; isFinite(p) {
			v := sellAmt * p
			t.SellValueUSD = &v
		}
	}
	if buyAmt, ok := token.NormalizeAmount(t.BuyAmount, t.BuyToken); ok {
		if p := t.MarketPrices.BuyTokenUSD; isFinite(p) {
			v := buyAmt * p
			t.BuyValueUSD = &v
		}
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// dropNonFinite maps non-finite points to nil so the series stays
// JSON-encodable while keeping "no data" distinct from zero.
func dropNonFinite(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if isFinite(v) {
			vv := v
			out[i] = &vv
		}
	}
	return out
}
