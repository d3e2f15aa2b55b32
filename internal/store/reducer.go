package store

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"
)

// Reducer computes the next AppState from the previous one and an action.
// Clock and random source are injected; a Reducer is not safe for concurrent use
// because of the random source.
type Reducer struct {
	now func() time.Time
	rnd *rand.Rand
}

// NewReducer creates a reducer. A nil clock means time.Now, a nil rnd a time-seeded source.
func NewReducer(now func() time.Time, rnd *rand.Rand) *Reducer {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Reducer{now: now, rnd: rnd}
}

// Reduce returns the state after applying action. The input state is not modified.
func (r *Reducer) Reduce(state AppState, action Action) AppState {
	now := r.now()
	return AppState{
		Assets: reduceAssets(state, action, now),
		UI:     reduceUI(state, action),
		Offer:  reduceOffer(state, action, now),
		Quest:  r.reduceQuest(state, action, now),
	}
}

func reduceAssets(state AppState, action Action, now time.Time) []asset.Asset {
	assets := state.Assets
	switch a := action.(type) {
	case LoadStateSuccess:
		return asset.CloneAll(a.State.Assets)
	case UpdateAssetsSuccess:
		return asset.DeriveSynthetic(asset.MergeInto(a.Assets, assets), now)
	case AddAsset:
		return Add(assets, a.Asset, now)
	case BuyAsset:
		return Buy(assets, a.AssetID, now)
	case SellAsset:
		return Sell(assets, a.AssetID, now)
	case ChangeAssetOrder:
		return Reorder(assets, a.MoveAssetID, a.InPlaceOfAssetID)
	case FindNewOfferSuccess:
		return AppendOffered(assets, a.Assets)
	case DeleteOffered:
		return RemoveOffered(assets)
	case GetReward:
		if state.Quest.Status == quest.StatusWon {
			return Reward(assets, now)
		}
	}
	return asset.CloneAll(assets)
}

func radioFor(r asset.Range) string {
	return strconv.Itoa(int(r))
}

func reduceUI(state AppState, action Action) UIState {
	ui := state.UI
	switch a := action.(type) {
	case LoadStateSuccess:
		ui = a.State.UI
		ui.RadioChecked = RadioNone
	case UpdateAssets:
		ui.IsLoading = true
	case UpdateAssetsSuccess:
		ui.IsLoading = false
		ui.ErrorMessage = ""
	case ChooseAsset:
		ui.ChosenAssetID = a.AssetID
		ui.RadioChecked = radioFor(ui.Range)
	case ChangeAssetOrder:
		ui.ChosenAssetID = a.MoveAssetID
		ui.RadioChecked = radioFor(ui.Range)
	case BuyAsset:
		ui.ChosenAssetID = a.AssetID
		ui.RadioChecked = radioFor(ui.Range)
	case AddAsset:
		if CanAdd(state.Assets, a.Asset.ID) {
			ui.ChosenAssetID = a.Asset.ID
		}
	case SellAsset:
		ui.ChosenAssetID = a.AssetID
		ui.RadioChecked = radioFor(ui.Range)
		if i := asset.Find(state.Assets, a.AssetID); i >= 0 && state.Assets[i].Amount() <= 0 {
			ui.AlertAssetID = a.AssetID
		}
	case ChangeRange:
		if a.Range.IsValid() {
			ui.Range = a.Range
		}
	case ChangeRadioButton:
		ui.RadioChecked = a.Value
	case ToggleShowSoldCryptos:
		ui.ShowSoldCryptos = !ui.ShowSoldCryptos
	case AlertNotEnoughOfAsset:
		ui.AlertAssetID = a.AssetID
	case AlertNotEnoughOfAssetDone:
		ui.AlertAssetID = ""
	case ErrorNotification:
		ui.ErrorMessage = a.Message
		ui.IsLoading = false
	}
	return ui
}

// nextMidnight is the start of the following local day.
func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

func reduceOffer(state AppState, action Action, now time.Time) OfferState {
	offer := state.Offer
	next := offer
	if offer.LastNewAsset != nil {
		last := offer.LastNewAsset.Clone()
		next.LastNewAsset = &last
	}

	switch a := action.(type) {
	case LoadStateSuccess:
		next = a.State.Clone().Offer
	case FindNewOfferSuccess:
		next.NextNewAssetDate = nextMidnight(now)
	case AddAsset:
		if !CanAdd(state.Assets, a.Asset.ID) {
			break
		}
		added := a.Asset.Clone()
		next.LastNewAsset = &added
	}
	return next
}

func (r *Reducer) reduceQuest(state AppState, action Action, now time.Time) quest.Quest {
	q := state.Quest
	switch a := action.(type) {
	case LoadStateSuccess:
		return a.State.Quest.Clone()
	case StartQuest:
		if q.Status != quest.StatusPrestart {
			break
		}
		start := a.StartAssets
		if len(start) == 0 {
			start = state.Assets
		}
		return quest.Start(q, start, now)
	case UpdateQuest:
		assets := a.Assets
		if len(assets) == 0 {
			assets = state.Assets
		}
		return quest.Update(q, assets, now)
	case NewQuest:
		last := q
		if a.LastQuest != nil {
			last = *a.LastQuest
		}
		return quest.New(last, r.rnd)
	case GetReward:
		if q.Status == quest.StatusWon {
			return quest.New(q, r.rnd)
		}
	}
	return q.Clone()
}
