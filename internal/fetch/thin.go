package fetch

import (
	"time"

	"github.com/mausarm/crypto-god/pkg/coingecko"
)

// Stride returns the sampling step that keeps a series of length n within maxPoints.
func Stride(n, maxPoints int) int {
	if maxPoints <= 0 {
		return 1
	}
	stride := n / maxPoints
	if stride < 1 {
		stride = 1
	}
	return stride
}

// ThinOut down-samples a price series by taking every stride-th point,
// starting with the first one.
func ThinOut(points []coingecko.PricePoint, maxPoints int) ([]float64, []time.Time) {
	stride := Stride(len(points), maxPoints)
	n := (len(points) + stride - 1) / stride
	prices := make([]float64, 0, n+1)
	stamps := make([]time.Time, 0, n+1)
	for i := 0; i < len(points); i += stride {
		prices = append(prices, points[i].Price)
		stamps = append(stamps, points[i].Timestamp)
	}
	return prices, stamps
}
