// Package auctionapi fetches and decodes trade/competition payloads from
// the remote trades API. Response-shape sniffing happens exactly once here:
// the two known top-level shapes are resolved into domain records at the
// boundary and consumers never see the wire format.
package auctionapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
)

// Parse errors.
var (
	ErrUnknownShape = errors.New("payload has neither items nor documents")
	ErrNotJSON      = errors.New("payload is not valid JSON")
)

// envelope covers both known top-level response shapes.
type envelope struct {
	Items     []wireTrade `json:"items"`
	Documents []wireTrade `json:"documents"`
}

// wireTrade mirrors one trade record as the API serializes it.
type wireTrade struct {
	OrderUID       string        `json:"orderUid"`
	TxHash         string        `json:"txHash"`
	BlockNumber    flexInt64     `json:"blockNumber"`
	BlockTimestamp flexInt64     `json:"blockTimestamp"`
	SellToken      string        `json:"sellToken"`
	BuyToken       string        `json:"buyToken"`
	SellAmount     string        `json:"sellAmount"`
	BuyAmount      string        `json:"buyAmount"`
	FeeAmount      bigIntField   `json:"cowswapFeeAmount"`
	Competition    []wireBid     `json:"competition"`
	BinancePrices  *wirePrices   `json:"binancePrices"`
	APIQuotePrice  *float64      `json:"pryctoApiPrice"`
}

type wireBid struct {
	SolverAddress string `json:"solverAddress"`
	SellAmount    string `json:"sellAmount"`
	BuyAmount     string `json:"buyAmount"`
	Winner        bool   `json:"winner"`
}

type wirePrices struct {
	SellTokenInUSD float64 `json:"sellTokenInUSD"`
	BuyTokenInUSD  float64 `json:"buyTokenInUSD"`
}

// flexInt64 accepts both string-encoded and numeric JSON values. Anything
// unparseable decodes to zero, which downstream treats as "no timestamp".
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
	}
	// Some payloads carry fractional seconds; truncate.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt64(v)
	return nil
}

// bigIntField accepts a string or numeric JSON integer of any magnitude.
type bigIntField struct {
	Int *big.Int
}

func (b *bigIntField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	}
	if i, ok := new(big.Int).SetString(s, 10); ok {
		b.Int = i
	}
	return nil
}

// ParseResponse resolves a raw payload into trade records. It accepts both
// the {items: [...]} and {documents: [...]} top-level shapes; any other
// shape is an error, never a silent empty set.
func ParseResponse(payload []byte) ([]domain.TradeRecord, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	wire := env.Items
	if wire == nil {
		wire = env.Documents
	}
	if wire == nil {
		return nil, ErrUnknownShape
	}

	records := make([]domain.TradeRecord, 0, len(wire))
	for i := range wire {
		records = append(records, wire[i].toDomain())
	}
	return records, nil
}

func (w *wireTrade) toDomain() domain.TradeRecord {
	r := domain.TradeRecord{
		OrderUID:       w.OrderUID,
		TxHash:         w.TxHash,
		BlockNumber:    int64(w.BlockNumber),
		BlockTimestamp: int64(w.BlockTimestamp),
		SellToken:      strings.ToLower(w.SellToken),
		BuyToken:       strings.ToLower(w.BuyToken),
		SellAmount:     w.SellAmount,
		BuyAmount:      w.BuyAmount,
		FeeAmount:      w.FeeAmount.Int,
		APIQuotePrice:  w.APIQuotePrice,
	}
	if w.BinancePrices != nil {
		r.MarketPrices = &domain.PricePair{
			SellTokenUSD: w.BinancePrices.SellTokenInUSD,
			BuyTokenUSD:  w.BinancePrices.BuyTokenInUSD,
		}
	}
	for _, b := range w.Competition {
		r.Bids = append(r.Bids, domain.Bid{
			SolverAddress: strings.ToLower(b.SolverAddress),
			SellAmount:    b.SellAmount,
			BuyAmount:     b.BuyAmount,
			Winner:        b.Winner,
		})
	}
	return r
}
