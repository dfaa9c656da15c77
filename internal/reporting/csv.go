package reporting

import (
	"fmt"
	"strings"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/solvers"
)

// RenderSolverCSV renders the solver leaderboard as a CSV string.
// Rows keep the snapshot order (wins descending, address ascending).
func RenderSolverCSV(stats []*domain.SolverStats) string {
	var sb strings.Builder

	sb.WriteString("address,label,wins,trades_participated,win_rate,volume_usd\n")
	for _, st := range stats {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%.6f,%.6f\n",
			st.SolverAddress,
			solvers.Label(st.SolverAddress),
			st.Wins,
			st.TradesParticipated,
			st.WinRate(),
			st.VolumeUSD,
		))
	}

	return sb.String()
}

// RenderBucketCSV renders the size-bucket table as a CSV string. Missing
// averages render as empty cells.
func RenderBucketCSV(buckets []aggregation.BucketView) string {
	var sb strings.Builder

	sb.WriteString("bucket,count,avg_exec_vs_market_pct,avg_winner_vs_market_pct\n")
	for _, b := range buckets {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s\n",
			b.Label, b.Count,
			csvOptFloat(b.AvgExecPct, b.HasExecPct),
			csvOptFloat(b.AvgWinnerPct, b.HasWinnerPct),
		))
	}

	return sb.String()
}

// RenderDailyCSV renders the daily win-rate and volume series as a CSV
// string. Both series cover the same day window.
func RenderDailyCSV(rate []domain.DayRatePoint, volume []domain.DayVolumePoint) string {
	volumeByDay := make(map[string]float64, len(volume))
	for _, p := range volume {
		volumeByDay[p.Day] = p.Volume
	}

	var sb strings.Builder
	sb.WriteString("day,wins,total,rate,volume_usd\n")
	for _, p := range rate {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.6f,%.6f\n",
			p.Day, p.Wins, p.Total, p.Rate, volumeByDay[p.Day]))
	}

	return sb.String()
}

func csvOptFloat(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
