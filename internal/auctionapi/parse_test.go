package auctionapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemJSON = `{
	"orderUid": "0xOrder1",
	"txHash": "0xTx1",
	"blockNumber": 19000000,
	"blockTimestamp": "1709290000",
	"sellToken": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	"buyToken": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	"sellAmount": "3000000000",
	"buyAmount": "1000000000000000000",
	"cowswapFeeAmount": "123456789012345678901234567890",
	"binancePrices": {"sellTokenInUSD": 1.0, "buyTokenInUSD": 3000.5},
	"competition": [
		{"solverAddress": "0xAAA", "sellAmount": "3000000000", "buyAmount": "1000000000000000000", "winner": true},
		{"solverAddress": "0xBBB", "sellAmount": "3000000000", "buyAmount": "990000000000000000", "winner": false}
	]
}`

func TestParseResponse_ItemsShape(t *testing.T) {
	records, err := ParseResponse([]byte(`{"items": [` + itemJSON + `]}`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "0xOrder1", r.OrderUID)
	assert.Equal(t, int64(19000000), r.BlockNumber)
	// String-encoded timestamp normalized to a number.
	assert.Equal(t, int64(1709290000), r.BlockTimestamp)
	// Addresses lowered for case-insensitive matching.
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", r.SellToken)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", r.BuyToken)

	// Fee beyond float64 safe-integer range survives intact.
	require.NotNil(t, r.FeeAmount)
	assert.Equal(t, "123456789012345678901234567890", r.FeeAmount.String())

	require.NotNil(t, r.MarketPrices)
	assert.Equal(t, 3000.5, r.MarketPrices.BuyTokenUSD)

	require.Len(t, r.Bids, 2)
	assert.Equal(t, "0xaaa", r.Bids[0].SolverAddress)
	assert.True(t, r.Bids[0].Winner)
	assert.False(t, r.Bids[1].Winner)
}

func TestParseResponse_DocumentsShapeEquivalent(t *testing.T) {
	fromItems, err := ParseResponse([]byte(`{"items": [` + itemJSON + `]}`))
	require.NoError(t, err)
	fromDocuments, err := ParseResponse([]byte(`{"documents": [` + itemJSON + `]}`))
	require.NoError(t, err)

	assert.Equal(t, fromItems, fromDocuments)
}

func TestParseResponse_NumericTimestamp(t *testing.T) {
	records, err := ParseResponse([]byte(`{"items": [{"orderUid": "o1", "blockTimestamp": 1709290000}]}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1709290000), records[0].BlockTimestamp)
}

func TestParseResponse_UnparseableTimestamp(t *testing.T) {
	records, err := ParseResponse([]byte(`{"items": [{"orderUid": "o1", "blockTimestamp": "soon"}]}`))
	require.NoError(t, err)
	// Unusable timestamp excludes the record from time bucketing only.
	assert.False(t, records[0].TimeFilterable())
}

func TestParseResponse_EmptyItems(t *testing.T) {
	records, err := ParseResponse([]byte(`{"items": []}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseResponse_UnknownShape(t *testing.T) {
	_, err := ParseResponse([]byte(`{"rows": []}`))
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestParseResponse_NotJSON(t *testing.T) {
	_, err := ParseResponse([]byte(`<html>maintenance</html>`))
	assert.ErrorIs(t, err, ErrNotJSON)
}
