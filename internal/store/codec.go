package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"
)

var (
	// ErrNoState means nothing was persisted yet.
	ErrNoState = errors.New("no persisted state")
	// ErrMalformedState means the persisted payload could not be parsed.
	ErrMalformedState = errors.New("malformed persisted state")
)

// Encode serializes the state for persistence.
func Encode(state AppState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a persisted state. Missing or malformed data yields the initial
// state together with ErrNoState or ErrMalformedState, so callers can always
// continue with the returned state.
func Decode(data []byte, now time.Time) (AppState, error) {
	if len(data) == 0 || string(data) == "null" {
		return InitialState(now), ErrNoState
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return InitialState(now), fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if err := validate.Struct(state); err != nil {
		return InitialState(now), fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return Normalize(state, now), nil
}

// Normalize repairs a decoded state so the reducers can rely on its shape:
// every asset has one sparkline per range and a ledger of equal lengths,
// USD and TOTAL exist, and the quest and UI hold valid values.
func Normalize(state AppState, now time.Time) AppState {
	out := state.Clone()
	if len(out.Assets) == 0 {
		out.Assets = InitialAssets(now)
	}

	for i := range out.Assets {
		out.Assets[i] = normalizeAsset(out.Assets[i], now)
	}

	if asset.FindStatus(out.Assets, asset.StatusUSD) < 0 {
		out.Assets = append([]asset.Asset{asset.NewUSD(0, now)}, out.Assets...)
	}
	if asset.FindStatus(out.Assets, asset.StatusTotal) < 0 {
		out.Assets = append(out.Assets, asset.CalculateTotal(out.Assets, now))
	}

	if !out.UI.Range.IsValid() {
		out.UI.Range = asset.RangeDay
	}
	if out.UI.RadioChecked == "" {
		out.UI.RadioChecked = RadioNone
	}

	if out.Quest.Type == "" {
		out.Quest = quest.Initial()
	}
	if out.Quest.Duration == "" {
		out.Quest.Duration = quest.DefaultDuration(out.Quest.Type)
	}
	if out.Quest.StartAssets == nil {
		out.Quest.StartAssets = []asset.Asset{}
	}
	return out
}

func normalizeAsset(a asset.Asset, now time.Time) asset.Asset {
	if len(a.History) < asset.NumRanges {
		history := asset.EmptyHistory()
		copy(history, a.History)
		a.History = history
	}
	for r := range a.History {
		s := &a.History[r]
		if n := min(len(s.Prices), len(s.Timestamps)); len(s.Prices) != n || len(s.Timestamps) != n {
			s.Prices = s.Prices[len(s.Prices)-n:]
			s.Timestamps = s.Timestamps[len(s.Timestamps)-n:]
		}
	}

	// keep the most recent entries, the last amount is the current quantity
	n := min(len(a.AmountHistory), len(a.AmountTimestamps))
	if n == 0 {
		a.AmountHistory = []float64{a.Amount()}
		a.AmountTimestamps = []time.Time{now}
		return a
	}
	a.AmountHistory = a.AmountHistory[len(a.AmountHistory)-n:]
	a.AmountTimestamps = a.AmountTimestamps[len(a.AmountTimestamps)-n:]
	return a
}
