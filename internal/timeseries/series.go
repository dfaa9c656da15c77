// Package timeseries groups trades into UTC calendar-day and hour buckets
// and derives per-solver win-rate, volume and premium series.
package timeseries

import (
	"math"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/pricing"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/stats"
)

const (
	daySeconds  = 86400
	hourSeconds = 3600
)

// DayKey renders the UTC calendar date of an epoch-seconds timestamp.
// Lexicographic order of the result equals chronological order.
func DayKey(ts int64) string {
	floored := ts / daySeconds * daySeconds
	return time.Unix(floored, 0).UTC().Format("2006-01-02")
}

// HourKey renders the UTC hour bucket of an epoch-seconds timestamp.
func HourKey(ts int64) string {
	floored := ts / hourSeconds * hourSeconds
	return time.Unix(floored, 0).UTC().Format("2006-01-02T15")
}

// WinRateSeries builds a trailing windowDays-day win-rate series for one
// solver, ending at the UTC day of now. Every day of the window is present;
// days without trades carry rate 0, not null, so charts stay continuous.
// Only trades where the solver bid are counted; wins require the solver's
// bid to be the winner. Records without a usable timestamp are excluded.
func WinRateSeries(trades []*domain.TradeRecord, solver string, windowDays int, now time.Time) []domain.DayRatePoint {
	points := emptyDayWindow(windowDays, now)
	byDay := make(map[string]int, len(points))
	for i, p := range points {
		byDay[p.Day] = i
	}

	out := make([]domain.DayRatePoint, len(points))
	copy(out, points)

	for _, t := range trades {
		if !t.TimeFilterable() || !t.HasBidder(solver) {
			continue
		}
		i, ok := byDay[DayKey(t.BlockTimestamp)]
		if !ok {
			continue
		}
		out[i].Total++
		if w := t.WinningBid(); w != nil && w.SolverAddress == solver {
			out[i].Wins++
		}
	}

	for i := range out {
		if out[i].Total > 0 {
			out[i].Rate = float64(out[i].Wins) / float64(out[i].Total)
		}
	}
	return out
}

// VolumeSeries builds a trailing windowDays-day series of USD notional the
// solver won (not merely bid on), per UTC day.
func VolumeSeries(trades []*domain.TradeRecord, solver string, windowDays int, now time.Time) []domain.DayVolumePoint {
	days := emptyDayWindow(windowDays, now)
	byDay := make(map[string]int, len(days))
	out := make([]domain.DayVolumePoint, len(days))
	for i, p := range days {
		byDay[p.Day] = i
		out[i].Day = p.Day
	}

	for _, t := range trades {
		if !t.TimeFilterable() {
			continue
		}
		w := t.WinningBid()
		if w == nil || w.SolverAddress != solver {
			continue
		}
		i, ok := byDay[DayKey(t.BlockTimestamp)]
		if !ok {
			continue
		}
		if notional, ok := t.NotionalUSD(); ok {
			out[i].Volume += notional
		}
	}
	return out
}

// emptyDayWindow returns windowDays zero points ending at now's UTC day,
// sorted ascending.
func emptyDayWindow(windowDays int, now time.Time) []domain.DayRatePoint {
	end := now.UTC().Unix() / daySeconds * daySeconds
	points := make([]domain.DayRatePoint, 0, windowDays)
	for d := windowDays - 1; d >= 0; d-- {
		points = append(points, domain.DayRatePoint{Day: DayKey(end - int64(d)*daySeconds)})
	}
	return points
}

// RateMovingAverage computes the trailing aggregate-then-divide moving
// average over a win-rate series: pooled wins over pooled totals per
// window, never a mean of per-day rates.
func RateMovingAverage(points []domain.DayRatePoint, window int) []float64 {
	wins := make([]float64, len(points))
	totals := make([]float64, len(points))
	for i, p := range points {
		wins[i] = float64(p.Wins)
		totals[i] = float64(p.Total)
	}
	return stats.RatioMovingAverage(wins, totals, window)
}

// VolumeMovingAverage computes the plain trailing moving average over a
// volume series.
func VolumeMovingAverage(points []domain.DayVolumePoint, window int) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Volume
	}
	return stats.MovingAverage(values, window)
}

// HourlyPremiumSeries averages one solver's direction-adjusted bid premium
// per UTC hour across the span covered by the trades. Hours with no
// eligible bid are marked invalid; they carry no weight in the companion
// moving average.
func HourlyPremiumSeries(trades []*domain.TradeRecord, solver string) []domain.HourPoint {
	type acc struct {
		sum float64
		n   int
	}
	byHour := make(map[string]*acc)
	var minTs, maxTs int64

	for _, t := range trades {
		if !t.TimeFilterable() || !t.HasBidder(solver) {
			continue
		}
		if minTs == 0 || t.BlockTimestamp < minTs {
			minTs = t.BlockTimestamp
		}
		if t.BlockTimestamp > maxTs {
			maxTs = t.BlockTimestamp
		}
		d := pricing.SolverBidVsMarket(t, solver)
		if !d.OK() {
			continue
		}
		key := HourKey(t.BlockTimestamp)
		a, ok := byHour[key]
		if !ok {
			a = &acc{}
			byHour[key] = a
		}
		a.sum += d.Pct
		a.n++
	}

	if minTs == 0 {
		return nil
	}

	start := minTs / hourSeconds * hourSeconds
	end := maxTs / hourSeconds * hourSeconds
	var out []domain.HourPoint
	for ts := start; ts <= end; ts += hourSeconds {
		p := domain.HourPoint{Hour: HourKey(ts)}
		if a, ok := byHour[p.Hour]; ok && a.n > 0 {
			p.Avg = a.sum / float64(a.n)
			p.Valid = true
		}
		out = append(out, p)
	}
	return out
}

// PremiumMovingAverage applies a trailing moving average over an hourly
// premium series. Invalid hours are skipped (zero weight, not zero value).
func PremiumMovingAverage(points []domain.HourPoint, window int) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		if p.Valid {
			values[i] = p.Avg
		} else {
			values[i] = math.NaN()
		}
	}
	return stats.MovingAverage(values, window)
}
