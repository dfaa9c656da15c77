// Package competition folds solver bid data into per-solver win,
// participation and volume aggregates, plus the pairwise rivalry matrix.
package competition

import (
	"sort"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
)

// Aggregate folds the trade set into per-solver stats. Participation is
// deduplicated by address within a trade; wins and won volume accrue only
// to the bid marked winner. Trades without a marked winner still count
// toward every bidder's participation.
func Aggregate(trades []*domain.TradeRecord) []*domain.SolverStats {
	bySolver := make(map[string]*domain.SolverStats)

	get := func(addr string) *domain.SolverStats {
		s, ok := bySolver[addr]
		if !ok {
			s = &domain.SolverStats{SolverAddress: addr}
			bySolver[addr] = s
		}
		return s
	}

	for _, t := range trades {
		seen := make(map[string]bool, len(t.Bids))
		for i := range t.Bids {
			addr := t.Bids[i].SolverAddress
			if addr == "" || seen[addr] {
				continue
			}
			seen[addr] = true
			get(addr).TradesParticipated++
		}

		w := t.WinningBid()
		if w == nil {
			continue
		}
		s := get(w.SolverAddress)
		s.Wins++
		if notional, ok := t.NotionalUSD(); ok {
			s.VolumeUSD += notional
		}
	}

	out := make([]*domain.SolverStats, 0, len(bySolver))
	for _, s := range bySolver {
		out = append(out, s)
	}
	sortByWins(out)
	return out
}

// sortByWins orders stats by win count descending, address ascending on
// ties. The address tie-break keeps top-N selection deterministic.
func sortByWins(stats []*domain.SolverStats) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Wins != stats[j].Wins {
			return stats[i].Wins > stats[j].Wins
		}
		return stats[i].SolverAddress < stats[j].SolverAddress
	})
}

// TopSolversByWins returns up to n solver addresses ordered by win count
// descending, address ascending on ties.
func TopSolversByWins(stats []*domain.SolverStats, n int) []string {
	sorted := make([]*domain.SolverStats, len(stats))
	copy(sorted, stats)
	sortByWins(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].SolverAddress
	}
	return out
}

// TotalWonVolume sums won volume across all solvers.
func TotalWonVolume(stats []*domain.SolverStats) float64 {
	total := 0.0
	for _, s := range stats {
		total += s.VolumeUSD
	}
	return total
}

// VolumeWinRate returns one solver's share of the total won volume,
// 0 when no volume was won at all.
func VolumeWinRate(s *domain.SolverStats, stats []*domain.SolverStats) float64 {
	total := TotalWonVolume(stats)
	if total == 0 {
		return 0
	}
	return s.VolumeUSD / total
}
