// Package reporting renders aggregation snapshots as Markdown and CSV
// files for offline review.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
)

// Output file names inside the output directory.
const (
	ReportFile  = "REPORT.md"
	SolversFile = "SOLVERS.csv"
	BucketsFile = "BUCKETS.csv"
	DailyFile   = "DAILY_SERIES.csv"
)

// Generator writes report files for a snapshot.
type Generator struct {
	outputDir string
}

// NewGenerator creates a generator writing into outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Write renders the snapshot and writes all report files, returning the
// paths written.
func (g *Generator) Write(snap *aggregation.Snapshot) ([]string, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{ReportFile, RenderMarkdown(snap)},
		{SolversFile, RenderSolverCSV(snap.SolverStats)},
		{BucketsFile, RenderBucketCSV(snap.Buckets)},
		{DailyFile, RenderDailyCSV(snap.DailyRate, snap.DailyVolume)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(g.outputDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}
