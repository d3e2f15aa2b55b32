package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestCodecRoundTrip
func TestCodecRoundTrip(t *testing.T) {
	r, _ := newTestReducer()
	s := r.Reduce(testState(), BuyAsset{AssetID: "ethereum"})
	s = r.Reduce(s, StartQuest{})

	data, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode(data, t0)
	require.NoError(t, err)
	require.Len(t, got.Assets, len(s.Assets))
	for i := range s.Assets {
		assert.Equal(t, s.Assets[i].ID, got.Assets[i].ID)
		assert.Equal(t, s.Assets[i].Status, got.Assets[i].Status)
		assert.Equal(t, s.Assets[i].AmountHistory, got.Assets[i].AmountHistory)
		assert.True(t, got.Assets[i].LedgerConsistent())
	}
	assert.Equal(t, s.UI, got.UI)
	assert.Equal(t, quest.StatusActive, got.Quest.Status)
	assert.True(t, s.Quest.EndTime.Equal(got.Quest.EndTime))
}

func TestDecodeFallsBackToInitialState(t *testing.T) {
	got, err := Decode(nil, t0)
	assert.ErrorIs(t, err, ErrNoState)
	assert.Len(t, got.Assets, 3)

	got, err = Decode([]byte(`{"assets": [`), t0)
	assert.ErrorIs(t, err, ErrMalformedState)
	assert.Equal(t, asset.StartingUSD, got.Assets[asset.Find(got.Assets, asset.IDUSD)].Amount())
	assert.Equal(t, quest.StatusPrestart, got.Quest.Status)

	got, err = Decode([]byte(`{"assets":[{"id":"bitcoin","status":"owned","price":1e308,"amount_history":[1e308]}]}`), t0)
	assert.ErrorIs(t, err, ErrMalformedState)
	assert.Equal(t, 0.0, got.Assets[asset.Find(got.Assets, asset.IDBitcoin)].Price)
}

func TestNormalize(t *testing.T) {
	btc := asset.Asset{
		ID:     asset.IDBitcoin,
		Status: asset.StatusOwned,
		Price:  40000,
		History: []asset.Sparkline{
			{Prices: []float64{1, 2, 3}, Timestamps: []time.Time{t0}},
		},
		AmountHistory:    []float64{0, 0.5, 0.25},
		AmountTimestamps: []time.Time{t0.Add(-time.Minute), t0},
	}
	raw, err := json.Marshal(map[string]any{
		"assets":   []asset.Asset{btc},
		"ui_state": map[string]any{"range": 17},
	})
	require.NoError(t, err)

	got, err := Decode(raw, t0)
	require.NoError(t, err)

	require.Len(t, got.Assets, 3)
	assert.Equal(t, asset.IDUSD, got.Assets[0].ID)
	assert.Equal(t, 0.0, got.Assets[0].Amount())
	assert.Equal(t, asset.IDTotal, got.Assets[2].ID)

	b := got.Assets[1]
	assert.Len(t, b.History, asset.NumRanges)
	assert.Equal(t, []float64{3}, b.History[asset.RangeDay].Prices)
	assert.Equal(t, []float64{0.5, 0.25}, b.AmountHistory)
	assert.True(t, b.LedgerConsistent())

	assert.Equal(t, 10000.0, got.Assets[2].Amount())
	assert.Equal(t, asset.RangeDay, got.UI.Range)
	assert.Equal(t, RadioNone, got.UI.RadioChecked)
	assert.Equal(t, quest.TypeGainTotal, got.Quest.Type)
	assert.NotNil(t, got.Quest.StartAssets)
}
