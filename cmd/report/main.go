// Package main generates a one-shot Markdown/CSV report from a trades
// payload, fetched from the API or read from a local JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/aggregation"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/auctionapi"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/reporting"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

func main() {
	apiBase := flag.String("api-base", os.Getenv("AUCTION_API_BASE"), "Trades API base URL")
	inputFile := flag.String("input-file", "", "Read the trades payload from a JSON file instead of the API")
	sellToken := flag.String("sell-token", token.WETH, "Sell token address for the trades query")
	buyToken := flag.String("buy-token", token.USDC, "Buy token address for the trades query")
	focusSolver := flag.String("focus-solver", os.Getenv("FOCUS_SOLVER"), "Solver address for win-rate and runner-up series")
	windowDays := flag.Int("window-days", aggregation.DefaultWindowDays, "Day window for the daily series")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	timeout := flag.Duration("timeout", 60*time.Second, "Fetch timeout")
	flag.Parse()

	ctx := context.Background()

	if *inputFile == "" && *apiBase == "" {
		fmt.Fprintln(os.Stderr, "Error: --api-base or --input-file is required")
		os.Exit(1)
	}

	raw, err := loadPayload(ctx, *inputFile, *apiBase, *sellToken, *buyToken, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading payload: %v\n", err)
		os.Exit(1)
	}

	records, err := auctionapi.ParseResponse(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing payload: %v\n", err)
		os.Exit(1)
	}

	engine := &aggregation.Engine{
		FocusSolver: strings.ToLower(*focusSolver),
		WindowDays:  *windowDays,
		Now:         func() time.Time { return time.Now().UTC() },
	}
	snap := engine.Aggregate(records)

	paths, err := reporting.NewGenerator(*outputDir).Write(snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report generated from %d records (%d valid):\n", snap.TotalRecords, snap.ValidRecords)
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
}

// loadPayload reads the raw payload from the input file when set,
// otherwise fetches it from the API.
func loadPayload(ctx context.Context, inputFile, apiBase, sellToken, buyToken string, timeout time.Duration) ([]byte, error) {
	if inputFile != "" {
		return os.ReadFile(inputFile)
	}

	client := auctionapi.NewClient(apiBase, auctionapi.WithTimeout(timeout))
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.FetchRaw(fetchCtx, client.TradesURL(sellToken, buyToken))
}
