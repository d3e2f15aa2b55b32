package asset

import (
	"slices"
	"time"
)

// Find returns the index of the asset with the given id, or -1.
func Find(assets []Asset, id string) int {
	for i, a := range assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// FindStatus returns the index of the first asset with the given status, or -1.
func FindStatus(assets []Asset, status Status) int {
	for i, a := range assets {
		if a.Status == status {
			return i
		}
	}
	return -1
}

// CloneAll deep copies a slice of assets.
func CloneAll(assets []Asset) []Asset {
	if assets == nil {
		return nil
	}
	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = a.Clone()
	}
	return out
}

// PortfolioValue sums the USD value of all holdings, TOTAL excluded.
func PortfolioValue(assets []Asset) float64 {
	var sum float64
	for _, a := range assets {
		if a.Status == StatusTotal {
			continue
		}
		sum += a.Value()
	}
	return sum
}

// MergeInto applies freshly fetched snapshots onto the current asset list.
// Prices, logos and histories come from updated; status and ledger stay as they are in
// current, since trades may have happened while the fetch was in flight.
// Assets only present in current are kept unchanged.
func MergeInto(updated, current []Asset) []Asset {
	out := make([]Asset, 0, len(current))
	for _, c := range current {
		i := Find(updated, c.ID)
		if i < 0 || c.IsSynthetic() {
			out = append(out, c.Clone())
			continue
		}
		u := updated[i].Clone()
		u.Status = c.Status
		u.AmountHistory = slices.Clone(c.AmountHistory)
		u.AmountTimestamps = slices.Clone(c.AmountTimestamps)
		out = append(out, u)
	}
	return out
}

// referenceTimestamps picks the densest fetched timeline of a range.
func referenceTimestamps(assets []Asset, r Range) []time.Time {
	var ref []time.Time
	for _, a := range assets {
		if a.IsSynthetic() || int(r) >= len(a.History) {
			continue
		}
		if ts := a.History[r].Timestamps; len(ts) > len(ref) {
			ref = ts
		}
	}
	return ref
}

// valueAt reconstructs the portfolio value at t from ledgers and price histories.
func valueAt(assets []Asset, r Range, t time.Time) float64 {
	var sum float64
	for _, a := range assets {
		switch a.Status {
		case StatusTotal:
			continue
		case StatusUSD:
			sum += a.AmountAt(t)
			continue
		}
		amount := a.AmountAt(t)
		if amount == 0 {
			continue
		}
		price := a.Price
		if int(r) < len(a.History) {
			if p, ok := a.History[r].PriceAt(t); ok {
				price = p
			}
		}
		sum += amount * price
	}
	return sum
}

// CalculateTotal builds the TOTAL asset for the given list. Its ledger is a single
// entry holding the current portfolio value; its history is the reconstructed
// portfolio value along the densest fetched timeline, ending at now.
func CalculateTotal(assets []Asset, now time.Time) Asset {
	value := PortfolioValue(assets)
	total := NewTotal(value, now)
	for _, r := range Ranges() {
		ref := referenceTimestamps(assets, r)
		s := Sparkline{
			Prices:     make([]float64, 0, len(ref)+1),
			Timestamps: make([]time.Time, 0, len(ref)+1),
		}
		// the last reference sample is the live price of the fetch, replaced by now
		for i := 0; i+1 < len(ref); i++ {
			s.Prices = append(s.Prices, valueAt(assets, r, ref[i]))
			s.Timestamps = append(s.Timestamps, ref[i])
		}
		s.Prices = append(s.Prices, value)
		s.Timestamps = append(s.Timestamps, now)
		total.History[r] = s
	}
	return total
}

// usdHistory is a flat line at 1 USD along the densest fetched timeline.
func usdHistory(assets []Asset, now time.Time) []Sparkline {
	h := EmptyHistory()
	for _, r := range Ranges() {
		ref := referenceTimestamps(assets, r)
		for i := 0; i+1 < len(ref); i++ {
			h[r].Prices = append(h[r].Prices, 1)
			h[r].Timestamps = append(h[r].Timestamps, ref[i])
		}
		h[r].Prices = append(h[r].Prices, 1)
		h[r].Timestamps = append(h[r].Timestamps, now)
	}
	return h
}

// DeriveSynthetic recomputes the locally derived USD and TOTAL assets.
func DeriveSynthetic(assets []Asset, now time.Time) []Asset {
	out := CloneAll(assets)
	for i := range out {
		switch out[i].Status {
		case StatusUSD:
			out[i].History = usdHistory(assets, now)
		case StatusTotal:
			out[i] = CalculateTotal(assets, now)
		}
	}
	return out
}
