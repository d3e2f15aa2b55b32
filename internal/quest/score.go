package quest

import (
	"math"

	"github.com/mausarm/crypto-god/internal/asset"

	"github.com/shopspring/decimal"
)

// Score is the player's result so far: the USD gain for gainTotal quests,
// the percentage change of the portfolio for the comparative ones.
func Score(q Quest, assets []asset.Asset) float64 {
	start := asset.PortfolioValue(q.StartAssets)
	current := asset.PortfolioValue(assets)
	if q.Type == TypeGainTotal {
		return round2(current - start)
	}
	return round2(percentChange(start, current))
}

// Target is the result the score has to exceed.
func Target(q Quest, assets []asset.Asset) float64 {
	switch q.Type {
	case TypeBeatBitcoin:
		return round2(bitcoinChange(q.StartAssets, assets))
	case TypeBeatAverage:
		return round2(averageChange(q.StartAssets, assets))
	case TypeBeatHodler:
		return round2(hodlerChange(q.StartAssets, assets))
	}
	return GainTarget
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// currentPrice looks up the current price of a started asset, falling back to its start price.
func currentPrice(a asset.Asset, assets []asset.Asset) float64 {
	if i := asset.Find(assets, a.ID); i >= 0 && assets[i].Price > 0 {
		return assets[i].Price
	}
	return a.Price
}

func bitcoinChange(start, current []asset.Asset) float64 {
	i := asset.Find(start, asset.IDBitcoin)
	if i < 0 {
		return 0
	}
	return percentChange(start[i].Price, currentPrice(start[i], current))
}

// averageChange is the mean price change of the crypto assets tracked at the start.
func averageChange(start, current []asset.Asset) float64 {
	var sum float64
	var n int
	for _, a := range start {
		if a.IsSynthetic() || a.Price <= 0 {
			continue
		}
		sum += percentChange(a.Price, currentPrice(a, current))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// hodlerChange is the change of the start portfolio had nothing been traded.
func hodlerChange(start, current []asset.Asset) float64 {
	startValue := asset.PortfolioValue(start)
	var hodl float64
	for _, a := range start {
		switch a.Status {
		case asset.StatusTotal:
			continue
		case asset.StatusUSD:
			hodl += a.Amount()
			continue
		}
		hodl += a.Amount() * currentPrice(a, current)
	}
	return percentChange(startValue, hodl)
}

// round2 rounds to cents. Non-finite results count as 0.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
