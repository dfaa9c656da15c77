package competition

import (
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

// DefaultRivalrySize is the solver count the rivalry matrix is built over.
const DefaultRivalrySize = 10

// BuildRivalryMatrix builds the pairwise conditional win-rate table among
// the top-n solvers by win count. Matrix[i][j] is
// (trades i won where j also bid) / (trades where both bid), 0 on the
// diagonal and for pairs that never met.
func BuildRivalryMatrix(trades []*domain.TradeRecord, topN int) *domain.RivalryMatrix {
	stats := Aggregate(trades)
	solvers := TopSolversByWins(stats, topN)
	return rivalryFor(trades, solvers)
}

func rivalryFor(trades []*domain.TradeRecord, solvers []string) *domain.RivalryMatrix {
	n := len(solvers)
	idx := make(map[string]int, n)
	for i, s := range solvers {
		idx[s] = i
	}

	// met[i][j]: trades where both bid; wonVs[i][j]: of those, i won.
	met := make([][]int, n)
	wonVs := make([][]int, n)
	for i := range met {
		met[i] = make([]int, n)
		wonVs[i] = make([]int, n)
	}

	for _, t := range trades {
		var present []int
		seen := make(map[int]bool, len(t.Bids))
		for bi := range t.Bids {
			i, ok := idx[t.Bids[bi].SolverAddress]
			if !ok || seen[i] {
				continue
			}
			seen[i] = true
			present = append(present, i)
		}

		winner := -1
		if w := t.WinningBid(); w != nil {
			if i, ok := idx[w.SolverAddress]; ok {
				winner = i
			}
		}

		for _, i := range present {
			for _, j := range present {
				if i == j {
					continue
				}
				met[i][j]++
				if i == winner {
					wonVs[i][j]++
				}
			}
		}
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			if i == j || met[i][j] == 0 {
				continue
			}
			matrix[i][j] = float64(wonVs[i][j]) / float64(met[i][j])
		}
	}

	return &domain.RivalryMatrix{Solvers: solvers, Matrix: matrix}
}

// RunnerUpStudy summarizes a focus solver's near-misses: trades where it
// bid, a winner exists and the winner is someone else. AvgBuyRatio is the
// mean ratio of the focus solver's quoted buy amount to the winner's,
// normalized by token decimals; entries with a zero winner amount are
// skipped.
type RunnerUpStudy struct {
	Trades      int     `json:"trades"`      // near-miss trade count
	AvgBuyRatio float64 `json:"avgBuyRatio"` // valid only when RatioOK
	RatioOK     bool    `json:"ratioOk"`
}

// StudyRunnerUp builds the near-miss dataset for one solver address.
func StudyRunnerUp(trades []*domain.TradeRecord, focus string) RunnerUpStudy {
	study := RunnerUpStudy{}
	sum := 0.0
	eligible := 0

	for _, t := range trades {
		w := t.WinningBid()
		if w == nil || w.SolverAddress == focus || !t.HasBidder(focus) {
			continue
		}
		study.Trades++

		var focusBid *domain.Bid
		for i := range t.Bids {
			if t.Bids[i].SolverAddress == focus {
				focusBid = &t.Bids[i]
				break
			}
		}

		focusAmt, ok := token.NormalizeAmount(focusBid.BuyAmount, t.BuyToken)
		if !ok {
			continue
		}
		winnerAmt, ok := token.NormalizeAmount(w.BuyAmount, t.BuyToken)
		if !ok || winnerAmt == 0 {
			continue
		}
		sum += focusAmt / winnerAmt
		eligible++
	}

	if eligible > 0 {
		study.AvgBuyRatio = sum / float64(eligible)
		study.RatioOK = true
	}
	return study
}
