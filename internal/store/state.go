package store

import (
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"
)

// RadioNone means no range radio button is checked.
const RadioNone = "none"

// UIState is the selection and notification state shown by clients.
type UIState struct {
	ChosenAssetID   string      `json:"chosen_asset_id"`
	Range           asset.Range `json:"range"`
	RadioChecked    string      `json:"radio_checked"`
	ShowSoldCryptos bool        `json:"show_sold_cryptos"`
	AlertAssetID    string      `json:"alert_asset_id"`
	IsLoading       bool        `json:"is_loading"`
	ErrorMessage    string      `json:"error_message"`
}

// OfferState tracks the rotating offer of assets that can be added.
type OfferState struct {
	NextNewAssetDate time.Time    `json:"next_new_asset_date"`
	LastNewAsset     *asset.Asset `json:"last_new_asset,omitempty"`
}

// AppState is the whole game state.
type AppState struct {
	Assets []asset.Asset `json:"assets" validate:"dive"`
	UI     UIState       `json:"ui_state"`
	Offer  OfferState    `json:"offer_state"`
	Quest  quest.Quest   `json:"quest"`
}

// Clone returns a deep copy.
func (s AppState) Clone() AppState {
	c := s
	c.Assets = asset.CloneAll(s.Assets)
	if s.Offer.LastNewAsset != nil {
		last := s.Offer.LastNewAsset.Clone()
		c.Offer.LastNewAsset = &last
	}
	c.Quest = s.Quest.Clone()
	return c
}

// InitialAssets is the asset list of a new game: cash, the running total and bitcoin to watch.
func InitialAssets(now time.Time) []asset.Asset {
	btc := asset.NewOffered(asset.IDBitcoin, "BTC", "Bitcoin", "", 0, time.Time{}, now)
	btc.Status = asset.StatusOwned

	assets := []asset.Asset{
		asset.NewUSD(asset.StartingUSD, now),
		asset.NewTotal(asset.StartingUSD, now),
		btc,
	}
	return asset.DeriveSynthetic(assets, now)
}

// InitialState is the state of a new game.
func InitialState(now time.Time) AppState {
	return AppState{
		Assets: InitialAssets(now),
		UI: UIState{
			ChosenAssetID: asset.IDTotal,
			Range:         asset.RangeDay,
			RadioChecked:  RadioNone,
		},
		Offer: OfferState{},
		Quest: quest.Initial(),
	}
}
