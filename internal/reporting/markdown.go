package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/solvers"
)

// RenderMarkdown renders the snapshot as a Markdown report string.
func RenderMarkdown(snap *aggregation.Snapshot) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Auction Analytics Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", snap.GeneratedAt.UTC().Format(time.RFC3339)))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Records | %d |\n", snap.TotalRecords))
	sb.WriteString(fmt.Sprintf("| Valid Records | %d |\n", snap.ValidRecords))
	sb.WriteString(fmt.Sprintf("| Excluded Records | %d |\n", snap.TotalRecords-snap.ValidRecords))
	sb.WriteString("\n")

	if len(snap.MissingFields) > 0 {
		sb.WriteString("### Missing Fields\n\n")
		sb.WriteString("| Field | Records |\n")
		sb.WriteString("|-------|--------|\n")
		for _, field := range sortedKeys(snap.MissingFields) {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", field, snap.MissingFields[field]))
		}
		sb.WriteString("\n")
	}

	// Notional distribution
	sb.WriteString("## Notional Distribution (USD)\n\n")
	s := snap.NotionalSummary
	if s.Count > 0 {
		sb.WriteString("| Count | Min | P25 | P50 | P75 | Max | Avg |\n")
		sb.WriteString("|-------|-----|-----|-----|-----|-----|-----|\n")
		sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			s.Count, s.Min, s.P25, s.P50, s.P75, s.Max, s.Avg))
	} else {
		sb.WriteString("No trades with a USD notional.\n")
	}
	sb.WriteString("\n")

	// Size buckets
	sb.WriteString("## Size Buckets\n\n")
	sb.WriteString("| Bucket | Trades | Avg Exec vs Market % | Avg Winner vs Market % |\n")
	sb.WriteString("|--------|--------|----------------------|------------------------|\n")
	for _, b := range snap.Buckets {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n",
			b.Label, b.Count,
			fmtOptPct(b.AvgExecPct, b.HasExecPct),
			fmtOptPct(b.AvgWinnerPct, b.HasWinnerPct)))
	}
	sb.WriteString("\n")

	// Overall premiums
	sb.WriteString("## Premiums vs Market\n\n")
	sb.WriteString("| Comparison | Avg % |\n")
	sb.WriteString("|------------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Execution vs market | %s |\n",
		fmtOptPct(snap.AvgExecutionVsMarketPct, snap.HasExecutionVsMarket)))
	sb.WriteString(fmt.Sprintf("| API quote vs market | %s |\n",
		fmtOptPct(snap.AvgQuoteVsMarketPct, snap.HasQuoteVsMarket)))
	sb.WriteString("\n")

	// Solver leaderboard
	sb.WriteString("## Solver Leaderboard\n\n")
	if len(snap.SolverStats) > 0 {
		sb.WriteString("| Solver | Address | Wins | Participated | Win Rate | Volume USD |\n")
		sb.WriteString("|--------|---------|------|--------------|----------|------------|\n")
		for _, st := range snap.SolverStats {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %.4f | %.2f |\n",
				solvers.Label(st.SolverAddress), st.SolverAddress,
				st.Wins, st.TradesParticipated, st.WinRate(), st.VolumeUSD))
		}
	} else {
		sb.WriteString("No solver participation recorded.\n")
	}
	sb.WriteString("\n")

	// Rivalry matrix for the top solvers
	if snap.Rivalry != nil && len(snap.Rivalry.Solvers) > 0 {
		sb.WriteString("## Rivalry (win share per meeting, top solvers)\n\n")
		sb.WriteString("| |")
		for _, addr := range snap.Rivalry.Solvers {
			sb.WriteString(" " + solvers.Short(addr) + " |")
		}
		sb.WriteString("\n|-|")
		sb.WriteString(strings.Repeat("-|", len(snap.Rivalry.Solvers)))
		sb.WriteString("\n")
		for i, addr := range snap.Rivalry.Solvers {
			sb.WriteString("| " + solvers.Label(addr) + " |")
			for j := range snap.Rivalry.Solvers {
				sb.WriteString(fmt.Sprintf(" %.2f |", snap.Rivalry.Matrix[i][j]))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	// Runner-up study
	if snap.RunnerUp.Trades > 0 {
		sb.WriteString("## Runner-Up Study\n\n")
		sb.WriteString(fmt.Sprintf("Lost auctions with a bid from the focus solver: %d\n\n", snap.RunnerUp.Trades))
		if snap.RunnerUp.RatioOK {
			sb.WriteString(fmt.Sprintf("Average buy-amount ratio vs winner: %.4f\n\n", snap.RunnerUp.AvgBuyRatio))
		}
	}

	// Daily win rate
	sb.WriteString("## Daily Win Rate\n\n")
	if len(snap.DailyRate) > 0 {
		sb.WriteString("| Day | Wins | Total | Rate |\n")
		sb.WriteString("|-----|------|-------|------|\n")
		for _, p := range snap.DailyRate {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.4f |\n", p.Day, p.Wins, p.Total, p.Rate))
		}
	} else {
		sb.WriteString("No focus solver configured.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func fmtOptPct(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
