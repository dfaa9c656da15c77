package domain

// SolverStats is a per-solver aggregate folded over the full filtered trade
// set. Counters only accumulate, they are never decremented.
type SolverStats struct {
	SolverAddress     string  `json:"solverAddress"`
	Wins              int     `json:"wins"`
	TradesParticipated int    `json:"tradesParticipated"`
	VolumeUSD         float64 `json:"volumeUsd"` // notional of trades this solver won
}

// WinRate returns wins / participations, 0 when the solver never bid.
func (s *SolverStats) WinRate() float64 {
	if s.TradesParticipated == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TradesParticipated)
}

// RivalryMatrix is a pairwise conditional win-rate table among the top
// solvers by win count. Matrix[i][j] is solver i's win rate on trades where
// solver j also bid. Directional: Matrix[i][j] != Matrix[j][i] in general.
// Diagonal entries are always 0.
type RivalryMatrix struct {
	Solvers []string    `json:"solvers"`
	Matrix  [][]float64 `json:"matrix"`
}
