package store

import (
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
)

// tradeIndexes locates USD and a tradable asset. ok is false when either is
// missing, the asset is synthetic, only offered or has no usable price.
// Offered assets have to be added before they can be traded.
func tradeIndexes(assets []asset.Asset, id string) (usd, target int, ok bool) {
	usd = asset.FindStatus(assets, asset.StatusUSD)
	target = asset.Find(assets, id)
	if usd < 0 || target < 0 {
		return usd, target, false
	}
	if assets[target].IsSynthetic() || assets[target].Status == asset.StatusOffered || assets[target].Price <= 0 {
		return usd, target, false
	}
	return usd, target, true
}

// Buy converts BuySellValue USD, or all remaining USD if less, into the asset.
func Buy(assets []asset.Asset, id string, now time.Time) []asset.Asset {
	ui, ti, ok := tradeIndexes(assets, id)
	if !ok {
		return asset.CloneAll(assets)
	}

	out := asset.CloneAll(assets)
	usd, target := &out[ui], &out[ti]
	cash, held := usd.Amount(), target.Amount()

	if cash >= asset.BuySellValue {
		target.AmountHistory = append(target.AmountHistory, held+asset.BuySellValue/target.Price)
		usd.AmountHistory = append(usd.AmountHistory, cash-asset.BuySellValue)
	} else {
		target.AmountHistory = append(target.AmountHistory, held+cash/target.Price)
		usd.AmountHistory = append(usd.AmountHistory, 0)
	}
	stampLedger(usd, target, now)

	if target.Status == asset.StatusSold {
		target.Status = asset.StatusOwned
	}
	return out
}

// Sell converts BuySellValue USD worth of the asset, or all of it if worth less, into USD.
func Sell(assets []asset.Asset, id string, now time.Time) []asset.Asset {
	ui, ti, ok := tradeIndexes(assets, id)
	if !ok || assets[ti].Amount() <= 0 {
		return asset.CloneAll(assets)
	}

	out := asset.CloneAll(assets)
	usd, target := &out[ui], &out[ti]
	cash, held := usd.Amount(), target.Amount()

	if held*target.Price > asset.BuySellValue {
		target.AmountHistory = append(target.AmountHistory, held-asset.BuySellValue/target.Price)
		usd.AmountHistory = append(usd.AmountHistory, cash+asset.BuySellValue)
	} else {
		usd.AmountHistory = append(usd.AmountHistory, cash+held*target.Price)
		target.AmountHistory = append(target.AmountHistory, 0)
	}
	stampLedger(usd, target, now)

	if target.Amount() == 0 && target.Status == asset.StatusOwned {
		target.Status = asset.StatusSold
	}
	return out
}

// stampLedger finishes a trade whose amounts were just appended. A trade more
// than CollapseWindow after the last stamped one gets its own timestamp; a
// quicker one replaces the previous amounts so the ledger keeps one entry per window.
func stampLedger(usd, traded *asset.Asset, now time.Time) {
	n := len(traded.AmountTimestamps)
	if n == 0 || !traded.AmountTimestamps[n-1].After(now.Add(-asset.CollapseWindow)) {
		traded.AmountTimestamps = append(traded.AmountTimestamps, now)
		usd.AmountTimestamps = append(usd.AmountTimestamps, now)
		return
	}
	traded.AmountHistory = dropSecondToLast(traded.AmountHistory)
	usd.AmountHistory = dropSecondToLast(usd.AmountHistory)
}

func dropSecondToLast(s []float64) []float64 {
	if len(s) < 2 {
		return s
	}
	return append(s[:len(s)-2], s[len(s)-1])
}

// Reorder moves the asset moveID to the position of inPlaceOfID, shifting the
// assets in between by one. All other assets keep their relative order.
func Reorder(assets []asset.Asset, moveID, inPlaceOfID string) []asset.Asset {
	before := asset.Find(assets, moveID)
	after := asset.Find(assets, inPlaceOfID)
	if before < 0 || after < 0 || before == after {
		return asset.CloneAll(assets)
	}

	out := make([]asset.Asset, 0, len(assets))
	if before < after {
		out = append(out, assets[:before]...)
		out = append(out, assets[before+1:after+1]...)
		out = append(out, assets[before])
		out = append(out, assets[after+1:]...)
	} else {
		out = append(out, assets[:after]...)
		out = append(out, assets[before])
		out = append(out, assets[after:before]...)
		out = append(out, assets[before+1:]...)
	}
	return asset.CloneAll(out)
}

// Reward credits QuestReward to USD and TOTAL. The TOTAL history gets its last
// sample replaced instead of a new one appended.
func Reward(assets []asset.Asset, now time.Time) []asset.Asset {
	out := asset.CloneAll(assets)

	if ui := asset.FindStatus(out, asset.StatusUSD); ui >= 0 {
		usd := &out[ui]
		usd.AmountHistory = append(usd.AmountHistory, usd.Amount()+asset.QuestReward)
		usd.AmountTimestamps = append(usd.AmountTimestamps, now)
	}

	if ti := asset.FindStatus(out, asset.StatusTotal); ti >= 0 {
		total := &out[ti]
		var base float64
		if len(total.AmountHistory) > 0 {
			base = total.AmountHistory[0]
		}
		newTotal := base + asset.QuestReward

		total.Price = newTotal
		total.AmountHistory = []float64{newTotal}
		total.AmountTimestamps = []time.Time{now}
		for r := range total.History {
			s := &total.History[r]
			if len(s.Prices) > 0 {
				s.Prices = s.Prices[:len(s.Prices)-1]
			}
			if len(s.Timestamps) > 0 {
				s.Timestamps = s.Timestamps[:len(s.Timestamps)-1]
			}
			s.Prices = append(s.Prices, newTotal)
			s.Timestamps = append(s.Timestamps, now)
		}
	}
	return out
}

// CanAdd reports whether id is untracked or only offered.
func CanAdd(assets []asset.Asset, id string) bool {
	i := asset.Find(assets, id)
	return i < 0 || assets[i].Status == asset.StatusOffered
}

// Add appends a new asset, replacing an offered entry with the same id, and
// recomputes TOTAL. An asset already tracked under another status is left as is.
func Add(assets []asset.Asset, a asset.Asset, now time.Time) []asset.Asset {
	if !CanAdd(assets, a.ID) {
		return asset.CloneAll(assets)
	}

	added := a.Clone()
	if added.Status == "" || added.Status == asset.StatusOffered {
		added.Status = asset.StatusOwned
	}
	if len(added.History) < asset.NumRanges {
		history := asset.EmptyHistory()
		copy(history, added.History)
		added.History = history
	}
	if len(added.AmountHistory) == 0 || !added.LedgerConsistent() {
		added.AmountHistory = []float64{added.Amount()}
		added.AmountTimestamps = []time.Time{now}
	}

	out := make([]asset.Asset, 0, len(assets)+1)
	for _, existing := range assets {
		if existing.ID == added.ID && existing.Status == asset.StatusOffered {
			continue
		}
		out = append(out, existing.Clone())
	}
	out = append(out, added)

	if ti := asset.FindStatus(out, asset.StatusTotal); ti >= 0 {
		out[ti] = asset.CalculateTotal(out, now)
	}
	return out
}

// AppendOffered adds offered assets whose id is not tracked yet.
func AppendOffered(assets, offered []asset.Asset) []asset.Asset {
	out := asset.CloneAll(assets)
	for _, a := range offered {
		if asset.Find(out, a.ID) >= 0 {
			continue
		}
		o := a.Clone()
		o.Status = asset.StatusOffered
		out = append(out, o)
	}
	return out
}

// RemoveOffered drops every offered asset.
func RemoveOffered(assets []asset.Asset) []asset.Asset {
	out := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Status != asset.StatusOffered {
			out = append(out, a.Clone())
		}
	}
	return out
}
