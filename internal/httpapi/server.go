// Package httpapi serves the latest aggregation snapshot and filter
// recomputations over plain HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/index"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/observability"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/solvers"
)

// SnapshotProvider hands out the most recent snapshot, nil before the
// first aggregation completes.
type SnapshotProvider interface {
	Latest() *aggregation.Snapshot
}

// FilterFunc recomputes aggregates for a filter over the hydrated index.
type FilterFunc func(f *index.Filter) (*index.Result, error)

type server struct {
	snapshots SnapshotProvider
	filter    FilterFunc
	wsHandler http.Handler
	mux       *http.ServeMux
}

// NewServer builds the HTTP handler. wsHandler may be nil to disable /ws.
func NewServer(snapshots SnapshotProvider, filter FilterFunc, wsHandler http.Handler) http.Handler {
	s := &server{
		snapshots: snapshots,
		filter:    filter,
		wsHandler: wsHandler,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s.mux
}

func (s *server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/solvers", s.handleSolvers)
	s.mux.HandleFunc("/buckets", s.handleBuckets)
	s.mux.HandleFunc("/series/daily", s.handleDailySeries)
	s.mux.HandleFunc("/series/premium", s.handlePremiumSeries)
	s.mux.HandleFunc("/filter", s.handleFilter)
	if s.wsHandler != nil {
		s.mux.Handle("/ws", s.wsHandler)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"ok": true, "time": time.Now().UTC()})
}

func (s *server) snapshot(w http.ResponseWriter) *aggregation.Snapshot {
	snap := s.snapshots.Latest()
	if snap == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return nil
	}
	return snap
}

func (s *server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		writeJSON(w, snap)
	}
}

// solverRow augments raw stats with the display label.
type solverRow struct {
	Address            string  `json:"address"`
	Label              string  `json:"label"`
	Wins               int     `json:"wins"`
	TradesParticipated int     `json:"tradesParticipated"`
	WinRate            float64 `json:"winRate"`
	VolumeUSD          float64 `json:"volumeUsd"`
}

func (s *server) handleSolvers(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	rows := make([]solverRow, 0, len(snap.SolverStats))
	for _, st := range snap.SolverStats {
		rows = append(rows, solverRow{
			Address:            st.SolverAddress,
			Label:              solvers.Label(st.SolverAddress),
			Wins:               st.Wins,
			TradesParticipated: st.TradesParticipated,
			WinRate:            st.WinRate(),
			VolumeUSD:          st.VolumeUSD,
		})
	}
	writeJSON(w, rows)
}

func (s *server) handleBuckets(w http.ResponseWriter, _ *http.Request) {
	if snap := s.snapshot(w); snap != nil {
		writeJSON(w, snap.Buckets)
	}
}

func (s *server) handleDailySeries(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, map[string]any{
		"rate":     snap.DailyRate,
		"rateMa":   snap.DailyRateMA,
		"volume":   snap.DailyVolume,
		"volumeMa": snap.DailyVolumeMA,
	})
}

func (s *server) handlePremiumSeries(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, map[string]any{
		"hourly": snap.HourlyPremium,
		"ma":     snap.HourlyPremiumMA,
	})
}

func (s *server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var f index.Filter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, "bad filter: "+err.Error(), http.StatusBadRequest)
		return
	}
	observability.DefaultMetrics.FilterRequests.Inc()

	result, err := s.filter(&f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
