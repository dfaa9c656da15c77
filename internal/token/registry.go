// Package token normalizes raw on-chain integer amounts into human-scale
// decimal quantities using a fixed per-token decimals table.
package token

import (
	"math/big"
	"strings"
)

// Mainnet token addresses (lowercase).
const (
	USDC = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	USDT = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	DAI  = "0x6b175474e89094c44da98b954eedeac495271d0f"
	WETH = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	WBTC = "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599"
)

// DefaultDecimals applies to tokens absent from the table.
const DefaultDecimals = 18

// decimalsByAddress maps lowercase token address to on-chain decimals.
var decimalsByAddress = map[string]int{
	USDC: 6,
	USDT: 6,
	DAI:  18,
	WETH: 18,
	WBTC: 8,
}

// stableTokens is the fixed set of USD-pegged tokens.
var stableTokens = map[string]bool{
	USDC: true,
	USDT: true,
	DAI:  true,
}

// Decimals returns the decimal places for a token, DefaultDecimals when the
// address is not in the table. Address matching is case-insensitive.
func Decimals(addr string) int {
	if d, ok := decimalsByAddress[strings.ToLower(addr)]; ok {
		return d
	}
	return DefaultDecimals
}

// IsStable reports whether the address is a known USD-pegged token.
func IsStable(addr string) bool {
	return stableTokens[strings.ToLower(addr)]
}

// pow10 cache for the decimal counts in use.
var pow10 = map[int]float64{}

func init() {
	for d := 0; d <= 24; d++ {
		f := 1.0
		for i := 0; i < d; i++ {
			f *= 10
		}
		pow10[d] = f
	}
}

// NormalizeAmount converts a raw unsigned integer string into token units by
// dividing by 10^decimals. Returns (0, false) for a malformed or negative
// raw string.
//
// The raw value is parsed as an arbitrary-precision integer and then cast to
// float64 before dividing, so values above 2^53 lose low-order digits.
// Exactness is a non-goal: these quantities feed descriptive analytics only.
func NormalizeAmount(raw string, addr string) (float64, bool) {
	i, ok := new(big.Int).SetString(raw, 10)
	if !ok || i.Sign() < 0 {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(i).Float64()
	return f / pow10[Decimals(addr)], true
}
