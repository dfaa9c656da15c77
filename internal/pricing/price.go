// Package pricing derives USD execution prices from raw amount pairs and
// computes direction-adjusted premium deltas against market references.
package pricing

import (
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/domain"
	"github.com/LaTribuWeb3/mainnet-analytics-sub000/internal/token"
)

// PriceUSDPerToken computes the implied USD price per unit of the non-stable
// token in a trade. Exactly one side must be a stable token; both or neither
// stable means the quote is ambiguous and (0, false) is returned. A zero
// non-stable amount also returns (0, false).
func PriceUSDPerToken(sellToken, buyToken, sellAmountRaw, buyAmountRaw string) (float64, bool) {
	sellStable := token.IsStable(sellToken)
	buyStable := token.IsStable(buyToken)
	if sellStable == buyStable {
		return 0, false
	}

	sellAmt, ok := token.NormalizeAmount(sellAmountRaw, sellToken)
	if !ok {
		return 0, false
	}
	buyAmt, ok := token.NormalizeAmount(buyAmountRaw, buyToken)
	if !ok {
		return 0, false
	}

	if sellStable {
		if buyAmt == 0 {
			return 0, false
		}
		return sellAmt / buyAmt, true
	}
	if sellAmt == 0 {
		return 0, false
	}
	return buyAmt / sellAmt, true
}

// TradeDirection classifies the trade relative to its non-stable token.
// Selling the non-stable token means a higher USD-per-token execution is
// better for the trader; buying it means lower is better.
func TradeDirection(sellToken, buyToken string) domain.Direction {
	sellStable := token.IsStable(sellToken)
	buyStable := token.IsStable(buyToken)
	if sellStable == buyStable {
		return domain.DirectionUnknown
	}
	if sellStable {
		return domain.DirectionBuy
	}
	return domain.DirectionSell
}

// HigherPriceIsBetter reports whether a higher USD-per-token execution
// favors the trader. The second return is false when the direction is
// undetermined.
func HigherPriceIsBetter(sellToken, buyToken string) (bool, bool) {
	switch TradeDirection(sellToken, buyToken) {
	case domain.DirectionSell:
		return true, true
	case domain.DirectionBuy:
		return false, true
	default:
		return false, false
	}
}

// MarketReference returns the external market USD price of the trade's
// non-stable token, (0, false) when the feed quote is missing, non-finite
// or the direction is undetermined.
func MarketReference(t *domain.TradeRecord) (float64, bool) {
	if t.MarketPrices == nil {
		return 0, false
	}
	switch TradeDirection(t.SellToken, t.BuyToken) {
	case domain.DirectionSell:
		if !isFinite(t.MarketPrices.SellTokenUSD) {
			return 0, false
		}
		return t.MarketPrices.SellTokenUSD, true
	case domain.DirectionBuy:
		if !isFinite(t.MarketPrices.BuyTokenUSD) {
			return 0, false
		}
		return t.MarketPrices.BuyTokenUSD, true
	default:
		return 0, false
	}
}

// ExecutionPrice returns the implied USD price of the settled order itself.
func ExecutionPrice(t *domain.TradeRecord) (float64, bool) {
	return PriceUSDPerToken(t.SellToken, t.BuyToken, t.SellAmount, t.BuyAmount)
}

// BidPrice returns the implied USD price of one competing bid, using the
// trade's token pair with the bid's proposed amounts.
func BidPrice(t *domain.TradeRecord, b *domain.Bid) (float64, bool) {
	return PriceUSDPerToken(t.SellToken, t.BuyToken, b.SellAmount, b.BuyAmount)
}
