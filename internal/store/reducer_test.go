package store

import (
	"math/rand"
	"testing"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestReducer() (*Reducer, *clock) {
	c := &clock{t: t0}
	return NewReducer(c.Now, rand.New(rand.NewSource(7))), c
}

func cryptoAsset(id string, price, amount float64) asset.Asset {
	a := asset.NewOffered(id, id, id, "", price, time.Time{}, t0.Add(-time.Hour))
	a.Status = asset.StatusOwned
	a.AmountHistory = []float64{amount}
	return a
}

func testState() AppState {
	s := InitialState(t0.Add(-time.Hour))
	s.Assets = []asset.Asset{
		asset.NewUSD(asset.StartingUSD, t0.Add(-time.Hour)),
		asset.NewTotal(asset.StartingUSD, t0.Add(-time.Hour)),
		cryptoAsset(asset.IDBitcoin, 40000, 0),
		cryptoAsset("ethereum", 2000, 0),
		cryptoAsset("solana", 100, 0),
		cryptoAsset("cardano", 0.5, 0),
		cryptoAsset("dogecoin", 0.1, 0),
	}
	return s
}

func get(t *testing.T, s AppState, id string) asset.Asset {
	t.Helper()
	i := asset.Find(s.Assets, id)
	require.GreaterOrEqual(t, i, 0, "asset %s not found", id)
	return s.Assets[i]
}

func usdOf(t *testing.T, s AppState) asset.Asset {
	return get(t, s, asset.IDUSD)
}

func assertLedgers(t *testing.T, s AppState) {
	t.Helper()
	for _, a := range s.Assets {
		assert.True(t, a.LedgerConsistent(), "ledger of %s: %d amounts, %d timestamps",
			a.ID, len(a.AmountHistory), len(a.AmountTimestamps))
	}
}

// go test -v --run TestBuyFullNotional
func TestBuyFullNotional(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()

	next := r.Reduce(s, BuyAsset{AssetID: "ethereum"})

	assert.Equal(t, asset.BuySellValue/2000, get(t, next, "ethereum").Amount())
	assert.Equal(t, asset.StartingUSD-asset.BuySellValue, usdOf(t, next).Amount())
	assert.Len(t, get(t, next, "ethereum").AmountHistory, 2)
	assertLedgers(t, next)

	// the previous state is untouched
	assert.Equal(t, 0.0, get(t, s, "ethereum").Amount())
	assert.Equal(t, asset.StartingUSD, usdOf(t, s).Amount())

	assert.Equal(t, "ethereum", next.UI.ChosenAssetID)
	assert.Equal(t, "0", next.UI.RadioChecked)
}

func TestBuyWithRemainingCash(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()
	s.Assets[0] = asset.NewUSD(250, t0.Add(-time.Hour))

	next := r.Reduce(s, BuyAsset{AssetID: "solana"})

	assert.Equal(t, 2.5, get(t, next, "solana").Amount())
	assert.Equal(t, 0.0, usdOf(t, next).Amount())
	assertLedgers(t, next)
}

func TestSell(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()
	s.Assets[3] = cryptoAsset("ethereum", 2000, 2) // 4000 USD worth

	next := r.Reduce(s, SellAsset{AssetID: "ethereum"})
	assert.Equal(t, 1.5, get(t, next, "ethereum").Amount())
	assert.Equal(t, asset.StartingUSD+asset.BuySellValue, usdOf(t, next).Amount())
	assertLedgers(t, next)

	// less than the notional left: everything goes
	s.Assets[3] = cryptoAsset("ethereum", 2000, 0.25)
	next = r.Reduce(s, SellAsset{AssetID: "ethereum"})
	assert.Equal(t, 0.0, get(t, next, "ethereum").Amount())
	assert.Equal(t, asset.StartingUSD+500, usdOf(t, next).Amount())
	assert.Equal(t, asset.StatusSold, get(t, next, "ethereum").Status)
	assertLedgers(t, next)
}

func TestSellNothingRaisesAlert(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()

	next := r.Reduce(s, SellAsset{AssetID: "solana"})
	assert.Equal(t, s.Assets, next.Assets)
	assert.Equal(t, "solana", next.UI.AlertAssetID)

	next = r.Reduce(next, AlertNotEnoughOfAssetDone{})
	assert.Empty(t, next.UI.AlertAssetID)
}

func TestTradesOnUnknownOrSyntheticAreNoops(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()
	for _, a := range []Action{
		BuyAsset{AssetID: "nope"},
		BuyAsset{AssetID: asset.IDUSD},
		BuyAsset{AssetID: asset.IDTotal},
		SellAsset{AssetID: asset.IDTotal},
	} {
		next := r.Reduce(s, a)
		assert.Equal(t, s.Assets, next.Assets, "%#v", a)
	}

	s.Assets[4].Price = 0
	assert.Equal(t, s.Assets, r.Reduce(s, BuyAsset{AssetID: "solana"}).Assets)
}

// go test -v --run TestLedgerCollapse
func TestLedgerCollapse(t *testing.T) {
	r, c := newTestReducer()
	s := r.Reduce(testState(), BuyAsset{AssetID: "bitcoin"})
	btcLen := len(get(t, s, "bitcoin").AmountHistory)
	usdLen := len(usdOf(t, s).AmountHistory)

	// within the window: amounts merge, no new entry
	c.Advance(30 * time.Second)
	s = r.Reduce(s, BuyAsset{AssetID: "bitcoin"})
	assert.Len(t, get(t, s, "bitcoin").AmountHistory, btcLen)
	assert.Len(t, usdOf(t, s).AmountHistory, usdLen)
	assert.Equal(t, 2*asset.BuySellValue/40000, get(t, s, "bitcoin").Amount())
	assert.Equal(t, asset.StartingUSD-2*asset.BuySellValue, usdOf(t, s).Amount())
	assertLedgers(t, s)

	c.Advance(29 * time.Second)
	s = r.Reduce(s, SellAsset{AssetID: "bitcoin"})
	assert.Len(t, get(t, s, "bitcoin").AmountHistory, btcLen)
	assertLedgers(t, s)

	// a full minute after the stamped trade: a new entry
	c.Advance(time.Second)
	s = r.Reduce(s, BuyAsset{AssetID: "bitcoin"})
	assert.Len(t, get(t, s, "bitcoin").AmountHistory, btcLen+1)
	assert.Len(t, usdOf(t, s).AmountHistory, usdLen+1)
	assertLedgers(t, s)
}

// go test -v --run TestLedgerInvariantUnderRandomTrading
func TestLedgerInvariantUnderRandomTrading(t *testing.T) {
	r, c := newTestReducer()
	rnd := rand.New(rand.NewSource(3))
	s := testState()
	ids := []string{"bitcoin", "ethereum", "solana", "cardano", "dogecoin"}

	for i := 0; i < 500; i++ {
		c.Advance(time.Duration(rnd.Intn(120)) * time.Second)
		id := ids[rnd.Intn(len(ids))]
		if rnd.Intn(2) == 0 {
			s = r.Reduce(s, BuyAsset{AssetID: id})
		} else {
			s = r.Reduce(s, SellAsset{AssetID: id})
		}
		assertLedgers(t, s)
		require.GreaterOrEqual(t, usdOf(t, s).Amount(), 0.0)
	}
}

// go test -v --run TestReorder
func TestReorder(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()
	ids := func(st AppState) []string {
		var out []string
		for _, a := range st.Assets {
			out = append(out, a.ID)
		}
		return out
	}

	forward := r.Reduce(s, ChangeAssetOrder{MoveAssetID: "bitcoin", InPlaceOfAssetID: "dogecoin"})
	assert.Equal(t, []string{"usd", "total", "ethereum", "solana", "cardano", "dogecoin", "bitcoin"}, ids(forward))
	assert.Equal(t, "bitcoin", forward.UI.ChosenAssetID)

	backward := r.Reduce(s, ChangeAssetOrder{MoveAssetID: "cardano", InPlaceOfAssetID: "total"})
	assert.Equal(t, []string{"usd", "cardano", "total", "bitcoin", "ethereum", "solana", "dogecoin"}, ids(backward))

	// index 2 to the position of index 5 keeps every other asset in order
	moved := r.Reduce(s, ChangeAssetOrder{MoveAssetID: s.Assets[2].ID, InPlaceOfAssetID: s.Assets[5].ID})
	var rest []string
	for _, id := range ids(moved) {
		if id != s.Assets[2].ID {
			rest = append(rest, id)
		}
	}
	assert.Equal(t, []string{"usd", "total", "ethereum", "solana", "cardano", "dogecoin"}, rest)
	assert.Equal(t, s.Assets[2].ID, moved.Assets[5].ID)

	same := r.Reduce(s, ChangeAssetOrder{MoveAssetID: "solana", InPlaceOfAssetID: "missing"})
	assert.Equal(t, ids(s), ids(same))
}

func wonState(t *testing.T) AppState {
	s := testState()
	s.Assets = asset.DeriveSynthetic(s.Assets, t0.Add(-time.Hour))
	s.Quest = quest.Initial()
	s.Quest.Status = quest.StatusWon
	return s
}

// go test -v --run TestReward
func TestReward(t *testing.T) {
	r, _ := newTestReducer()
	s := wonState(t)
	total := get(t, s, asset.IDTotal)
	historyLen := len(total.History[asset.RangeDay].Prices)

	next := r.Reduce(s, GetReward{})

	usd := usdOf(t, next)
	assert.Equal(t, asset.StartingUSD+asset.QuestReward, usd.Amount())
	assert.Len(t, usd.AmountHistory, len(usdOf(t, s).AmountHistory)+1)

	newTotal := get(t, next, asset.IDTotal)
	assert.Equal(t, []float64{total.AmountHistory[0] + asset.QuestReward}, newTotal.AmountHistory)
	assert.Equal(t, []time.Time{t0}, newTotal.AmountTimestamps)
	for _, rg := range asset.Ranges() {
		prices := newTotal.History[rg].Prices
		assert.Len(t, prices, len(total.History[rg].Prices))
		assert.Equal(t, total.AmountHistory[0]+asset.QuestReward, prices[len(prices)-1])
	}
	assert.Len(t, newTotal.History[asset.RangeDay].Prices, historyLen)
	assertLedgers(t, next)

	// claiming rolls a new quest, so the reward cannot be taken twice
	assert.Equal(t, quest.StatusPrestart, next.Quest.Status)
	assert.NotEqual(t, s.Quest.Type, next.Quest.Type)
	again := r.Reduce(next, GetReward{})
	assert.Equal(t, usd.Amount(), usdOf(t, again).Amount())
}

func TestRewardRequiresWonQuest(t *testing.T) {
	r, _ := newTestReducer()
	s := wonState(t)
	s.Quest.Status = quest.StatusLost
	next := r.Reduce(s, GetReward{})
	assert.Equal(t, s.Assets, next.Assets)
	assert.Equal(t, quest.StatusLost, next.Quest.Status)
}

// go test -v --run TestOfferLifecycle
func TestOfferLifecycle(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()
	offered := []asset.Asset{
		asset.NewOffered("polkadot", "DOT", "Polkadot", "", 7, time.Time{}, t0),
		asset.NewOffered("tron", "TRX", "Tron", "", 0.1, time.Time{}, t0),
		asset.NewOffered("bitcoin", "BTC", "Bitcoin", "", 1, time.Time{}, t0),
	}

	s = r.Reduce(s, FindNewOfferSuccess{Assets: offered})
	assert.Len(t, s.Assets, 9)
	assert.Equal(t, asset.StatusOffered, get(t, s, "tron").Status)
	assert.Equal(t, asset.StatusOwned, get(t, s, "bitcoin").Status)
	assert.Equal(t, time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), s.Offer.NextNewAssetDate)

	s = r.Reduce(s, AddAsset{Asset: get(t, s, "polkadot")})
	dot := get(t, s, "polkadot")
	assert.Equal(t, asset.StatusOwned, dot.Status)
	assert.Equal(t, "polkadot", s.Assets[len(s.Assets)-1].ID)
	assert.Len(t, s.Assets, 9)
	require.NotNil(t, s.Offer.LastNewAsset)
	assert.Equal(t, "polkadot", s.Offer.LastNewAsset.ID)
	assert.Equal(t, "polkadot", s.UI.ChosenAssetID)

	s = r.Reduce(s, DeleteOffered{})
	assert.Len(t, s.Assets, 8)
	assert.Equal(t, -1, asset.Find(s.Assets, "tron"))
	assertLedgers(t, s)
}

func TestOfferedAssetsCannotBeTraded(t *testing.T) {
	r, _ := newTestReducer()
	s := r.Reduce(testState(), FindNewOfferSuccess{Assets: []asset.Asset{
		asset.NewOffered("polkadot", "DOT", "Polkadot", "", 7, time.Time{}, t0),
	}})
	before := asset.PortfolioValue(s.Assets)

	next := r.Reduce(s, BuyAsset{AssetID: "polkadot"})
	assert.Equal(t, s.Assets, next.Assets)
	dot := get(t, next, "polkadot")
	assert.Equal(t, asset.StatusOffered, dot.Status)
	assert.Equal(t, 0.0, dot.Amount())
	assert.Equal(t, asset.StartingUSD, usdOf(t, next).Amount())

	next = r.Reduce(next, SellAsset{AssetID: "polkadot"})
	assert.Equal(t, s.Assets, next.Assets)

	// the rotation drops the offer without losing any value
	next = r.Reduce(next, DeleteOffered{})
	assert.Equal(t, -1, asset.Find(next.Assets, "polkadot"))
	assert.Equal(t, before, asset.PortfolioValue(next.Assets))
	assert.Equal(t, asset.StartingUSD, usdOf(t, next).Amount())
	assertLedgers(t, next)
}

func TestAddKeepsTrackedAsset(t *testing.T) {
	r, _ := newTestReducer()
	s := r.Reduce(testState(), BuyAsset{AssetID: "ethereum"})
	s = r.Reduce(s, ChooseAsset{AssetID: asset.IDBitcoin})
	eth := get(t, s, "ethereum")
	require.Greater(t, eth.Amount(), 0.0)

	next := r.Reduce(s, AddAsset{Asset: asset.NewOffered("ethereum", "ETH", "Ethereum", "", 2500, time.Time{}, t0)})
	assert.Equal(t, s.Assets, next.Assets)
	assert.Equal(t, eth, get(t, next, "ethereum"))
	assert.Equal(t, asset.IDBitcoin, next.UI.ChosenAssetID)
	assert.Nil(t, next.Offer.LastNewAsset)

	// a sold asset is kept as well
	s = r.Reduce(s, SellAsset{AssetID: "ethereum"})
	require.Equal(t, asset.StatusSold, get(t, s, "ethereum").Status)
	next = r.Reduce(s, AddAsset{Asset: asset.NewOffered("ethereum", "ETH", "Ethereum", "", 2500, time.Time{}, t0)})
	assert.Equal(t, s.Assets, next.Assets)
}

func TestUIActions(t *testing.T) {
	r, _ := newTestReducer()
	s := testState()

	s = r.Reduce(s, ChangeRange{Range: asset.RangeYear})
	assert.Equal(t, asset.RangeYear, s.UI.Range)
	s = r.Reduce(s, ChangeRange{Range: asset.Range(42)})
	assert.Equal(t, asset.RangeYear, s.UI.Range)

	s = r.Reduce(s, ChooseAsset{AssetID: "solana"})
	assert.Equal(t, "solana", s.UI.ChosenAssetID)
	assert.Equal(t, "3", s.UI.RadioChecked)

	s = r.Reduce(s, ChangeRadioButton{Value: "custom"})
	assert.Equal(t, "custom", s.UI.RadioChecked)

	s = r.Reduce(s, ToggleShowSoldCryptos{})
	assert.True(t, s.UI.ShowSoldCryptos)

	s = r.Reduce(s, UpdateAssets{})
	assert.True(t, s.UI.IsLoading)
	s = r.Reduce(s, ErrorNotification{Message: "crypto data server not available"})
	assert.False(t, s.UI.IsLoading)
	assert.Equal(t, "crypto data server not available", s.UI.ErrorMessage)

	s = r.Reduce(s, UpdateAssetsSuccess{Assets: s.Assets})
	assert.Empty(t, s.UI.ErrorMessage)

	s = r.Reduce(s, AlertNotEnoughOfAsset{AssetID: "cardano"})
	assert.Equal(t, "cardano", s.UI.AlertAssetID)
}

func TestUpdateAssetsSuccessMerges(t *testing.T) {
	r, _ := newTestReducer()
	s := r.Reduce(testState(), BuyAsset{AssetID: "ethereum"})

	fetched := asset.CloneAll(s.Assets)
	i := asset.Find(fetched, "ethereum")
	fetched[i].Price = 4000
	fetched[i].AmountHistory = []float64{0}
	fetched[i].AmountTimestamps = []time.Time{t0}

	next := r.Reduce(s, UpdateAssetsSuccess{Assets: fetched})
	eth := get(t, next, "ethereum")
	assert.Equal(t, 4000.0, eth.Price)
	assert.Equal(t, 0.5, eth.Amount())
	assert.Equal(t, asset.StartingUSD-asset.BuySellValue+0.5*4000, get(t, next, asset.IDTotal).Amount())
}

// go test -v --run TestQuestThroughReducer
func TestQuestThroughReducer(t *testing.T) {
	r, c := newTestReducer()
	s := testState()
	s.Assets = asset.DeriveSynthetic(s.Assets, t0)

	// only a prestart quest can be started
	s = r.Reduce(s, StartQuest{})
	require.Equal(t, quest.StatusActive, s.Quest.Status)
	assert.Equal(t, t0.Add(10*time.Minute), s.Quest.EndTime)
	assert.Len(t, s.Quest.StartAssets, len(s.Assets))
	restarted := r.Reduce(s, StartQuest{})
	assert.Equal(t, s.Quest.EndTime, restarted.Quest.EndTime)

	// buy bitcoin, then bitcoin rallies
	s = r.Reduce(s, BuyAsset{AssetID: "bitcoin"})
	i := asset.Find(s.Assets, "bitcoin")
	s.Assets[i].Price = 48000

	s = r.Reduce(s, UpdateQuest{})
	assert.Equal(t, quest.StatusActive, s.Quest.Status)
	assert.Equal(t, 200.0, s.Quest.Score)

	c.Advance(11 * time.Minute)
	s = r.Reduce(s, UpdateQuest{})
	assert.Equal(t, quest.StatusWon, s.Quest.Status)

	s = r.Reduce(s, NewQuest{})
	assert.Equal(t, quest.StatusPrestart, s.Quest.Status)
	assert.NotEqual(t, quest.TypeGainTotal, s.Quest.Type)
}

func TestLoadStateSuccess(t *testing.T) {
	r, _ := newTestReducer()
	loaded := testState()
	loaded.UI.RadioChecked = "2"
	loaded.UI.ChosenAssetID = "solana"
	loaded.Offer.NextNewAssetDate = t0.Add(time.Hour)
	loaded.Quest.Type = quest.TypeBeatHodler

	s := r.Reduce(InitialState(t0), LoadStateSuccess{State: loaded})
	assert.Equal(t, loaded.Assets, s.Assets)
	assert.Equal(t, RadioNone, s.UI.RadioChecked)
	assert.Equal(t, "solana", s.UI.ChosenAssetID)
	assert.Equal(t, t0.Add(time.Hour), s.Offer.NextNewAssetDate)
	assert.Equal(t, quest.TypeBeatHodler, s.Quest.Type)
}
