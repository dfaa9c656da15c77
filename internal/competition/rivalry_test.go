package competition

import (
	"math"
	"testing"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

func TestBuildRivalryMatrix_HeadToHead(t *testing.T) {
	// X wins 2 of 3; Y bid on both of X's wins and won neither.
	trades := []*domain.TradeRecord{
		trade("o1", 100, "0xxxx", "0xxxx", "0xyyy"),
		trade("o2", 100, "0xxxx", "0xxxx", "0xyyy"),
		trade("o3", 100, "0xyyy", "0xxxx", "0xyyy"),
	}

	m := BuildRivalryMatrix(trades, 10)
	idx := map[string]int{}
	for i, s := range m.Solvers {
		idx[s] = i
	}
	x, y := idx["0xxxx"], idx["0xyyy"]

	// X faced Y 3 times, won 2.
	if got := m.Matrix[x][y]; math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("matrix[x][y] = %v, want 2/3", got)
	}
	if got := m.Matrix[y][x]; math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("matrix[y][x] = %v, want 1/3", got)
	}
}

func TestBuildRivalryMatrix_ExactWinRateScenario(t *testing.T) {
	// Y co-bids only on the two trades X wins: matrix[X][Y] = 2/2 = 1.
	trades := []*domain.TradeRecord{
		trade("o1", 100, "0xxxx", "0xxxx", "0xyyy"),
		trade("o2", 100, "0xxxx", "0xxxx", "0xyyy"),
		trade("o3", 100, "0xzzz", "0xxxx", "0xzzz"),
	}
	m := BuildRivalryMatrix(trades, 10)
	idx := map[string]int{}
	for i, s := range m.Solvers {
		idx[s] = i
	}
	x, y := idx["0xxxx"], idx["0xyyy"]
	if m.Matrix[x][y] != 1.0 {
		t.Errorf("matrix[x][y] = %v, want 1.0", m.Matrix[x][y])
	}
	if m.Matrix[y][x] != 0.0 {
		t.Errorf("matrix[y][x] = %v, want 0.0", m.Matrix[y][x])
	}
}

func TestBuildRivalryMatrix_Invariants(t *testing.T) {
	trades := []*domain.TradeRecord{
		trade("o1", 100, "0xaaa", "0xaaa", "0xbbb", "0xccc"),
		trade("o2", 100, "0xbbb", "0xaaa", "0xbbb"),
		trade("o3", 100, "", "0xbbb", "0xccc"),
		trade("o4", 100, "0xccc", "0xccc"),
	}
	m := BuildRivalryMatrix(trades, 10)
	for i := range m.Matrix {
		if m.Matrix[i][i] != 0 {
			t.Errorf("diagonal[%d] = %v, want exactly 0", i, m.Matrix[i][i])
		}
		for j, v := range m.Matrix[i] {
			if v < 0 || v > 1 {
				t.Errorf("matrix[%d][%d] = %v, outside [0,1]", i, j, v)
			}
		}
	}
}

func TestBuildRivalryMatrix_NoCoParticipation(t *testing.T) {
	trades := []*domain.TradeRecord{
		trade("o1", 100, "0xaaa", "0xaaa"),
		trade("o2", 100, "0xbbb", "0xbbb"),
	}
	m := BuildRivalryMatrix(trades, 10)
	for i := range m.Matrix {
		for j := range m.Matrix[i] {
			if m.Matrix[i][j] != 0 {
				t.Errorf("solvers never met: matrix[%d][%d] = %v, want 0", i, j, m.Matrix[i][j])
			}
		}
	}
}

func TestStudyRunnerUp(t *testing.T) {
	focus := "0xfocus"
	mk := func(uid, winner, focusBuy, winnerBuy string) *domain.TradeRecord {
		return &domain.TradeRecord{
			OrderUID: uid,
			BuyToken: token.WETH,
			Bids: []domain.Bid{
				{SolverAddress: focus, BuyAmount: focusBuy},
				{SolverAddress: winner, BuyAmount: winnerBuy, Winner: true},
			},
		}
	}

	trades := []*domain.TradeRecord{
		mk("o1", "0xwin", "970000000000000000", "1000000000000000000"), // ratio 0.97
		mk("o2", "0xwin", "990000000000000000", "1000000000000000000"), // ratio 0.99
		mk("o3", "0xwin", "990000000000000000", "0"),                   // zero winner amount, skipped
	}
	// A trade the focus solver won must not enter the study.
	won := &domain.TradeRecord{OrderUID: "o4", BuyToken: token.WETH, Bids: []domain.Bid{
		{SolverAddress: focus, BuyAmount: "1000000000000000000", Winner: true},
	}}
	// A trade without any winner must not enter either.
	open := &domain.TradeRecord{OrderUID: "o5", BuyToken: token.WETH, Bids: []domain.Bid{
		{SolverAddress: focus, BuyAmount: "1000000000000000000"},
	}}

	study := StudyRunnerUp(append(trades, won, open), focus)
	if study.Trades != 3 {
		t.Errorf("near-miss trades = %d, want 3", study.Trades)
	}
	if !study.RatioOK {
		t.Fatal("expected ratio signal")
	}
	if math.Abs(study.AvgBuyRatio-0.98) > 1e-12 {
		t.Errorf("avg buy ratio = %v, want 0.98", study.AvgBuyRatio)
	}
}

func TestStudyRunnerUp_NoEligibleRatios(t *testing.T) {
	study := StudyRunnerUp(nil, "0xfocus")
	if study.RatioOK {
		t.Error("no data: RatioOK must be false, not a zero ratio")
	}
}
