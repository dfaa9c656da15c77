package domain

// USD-notional size bands. Trades are partitioned into exactly these eight
// disjoint half-open bands; the last one is open-ended.
var (
	SizeBucketEdges = []float64{0, 1_000, 5_000, 20_000, 50_000, 100_000, 500_000, 5_000_000}

	SizeBucketLabels = []string{
		"b0_1k",
		"b1k_5k",
		"b5k_20k",
		"b20k_50k",
		"b50k_100k",
		"b100k_500k",
		"b500k_5m",
		"b5m_plus",
	}
)

// NumSizeBuckets is the fixed band count.
const NumSizeBuckets = 8

// TradeBuckets partitions a trade collection by USD notional. Records with
// no finite notional belong to no band (counted in pre-bucket totals only).
// Constructed fresh on every aggregation pass, never mutated afterwards.
type TradeBuckets struct {
	Trades [NumSizeBuckets][]*TradeRecord
}

// SizeBucketIndex returns the band index for a notional value, or -1 when
// the value falls outside every band (negative notional).
func SizeBucketIndex(notional float64) int {
	if notional < 0 {
		return -1
	}
	for i := 1; i < len(SizeBucketEdges); i++ {
		if notional < SizeBucketEdges[i] {
			return i - 1
		}
	}
	return NumSizeBuckets - 1
}

// BucketTradesBySize builds the fixed partition. Trades without a derived
// notional are silently excluded from every band.
func BucketTradesBySize(trades []*TradeRecord) *TradeBuckets {
	b := &TradeBuckets{}
	for _, t := range trades {
		notional, ok := t.NotionalUSD()
		if !ok {
			continue
		}
		idx := SizeBucketIndex(notional)
		if idx < 0 {
			continue
		}
		b.Trades[idx] = append(b.Trades[idx], t)
	}
	return b
}

// Counts returns per-band trade counts aligned with SizeBucketLabels.
func (b *TradeBuckets) Counts() [NumSizeBuckets]int {
	var counts [NumSizeBuckets]int
	for i := range b.Trades {
		counts[i] = len(b.Trades[i])
	}
	return counts
}
