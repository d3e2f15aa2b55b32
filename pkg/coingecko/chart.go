package coingecko

import (
	"math"
	"time"
)

// ParsePricePoints converts [millis, price] pairs into PricePoints.
// Rows with a non-finite value are skipped.
func ParsePricePoints(raw [][2]float64) []PricePoint {
	out := make([]PricePoint, 0, len(raw))
	for _, row := range raw {
		if math.IsNaN(row[1]) || math.IsInf(row[1], 0) {
			continue
		}
		out = append(out, PricePoint{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Price:     row[1],
		})
	}
	return out
}
