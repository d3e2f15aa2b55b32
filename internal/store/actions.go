package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/quest"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownAction is returned when decoding an envelope with an unregistered type.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidAction is returned when a payload parses but holds values out
	// of range, such as negative or absurdly large prices and amounts.
	ErrInvalidAction = errors.New("invalid action")
)

var validate = validator.New()

// ActionType is the tag of an Action variant.
type ActionType string

const (
	TypeLoadStateSuccess          ActionType = "loadStateSuccess"
	TypeUpdateAssets              ActionType = "updateAssets"
	TypeUpdateAssetsSuccess       ActionType = "updateAssetsSuccess"
	TypeAddAsset                  ActionType = "addAsset"
	TypeBuyAsset                  ActionType = "buyAsset"
	TypeSellAsset                 ActionType = "sellAsset"
	TypeChangeAssetOrder          ActionType = "changeAssetOrder"
	TypeChooseAsset               ActionType = "chooseAsset"
	TypeChangeRange               ActionType = "changeRange"
	TypeChangeRadioButton         ActionType = "changeRadioButton"
	TypeToggleShowSoldCryptos     ActionType = "toggleShowSoldCryptos"
	TypeAlertNotEnoughOfAsset     ActionType = "alertNotEnoughOfAsset"
	TypeAlertNotEnoughOfAssetDone ActionType = "alertNotEnoughOfAssetDone"
	TypeErrorNotification         ActionType = "errorNotification"
	TypeFindNewOffer              ActionType = "findNewOffer"
	TypeFindNewOfferSuccess       ActionType = "findNewOfferSuccess"
	TypeDeleteOffered             ActionType = "deleteOffered"
	TypeStartQuest                ActionType = "startQuest"
	TypeUpdateQuest               ActionType = "updateQuest"
	TypeNewQuest                  ActionType = "newQuest"
	TypeGetReward                 ActionType = "getReward"
)

// Action is one state transition request. The concrete type is the variant.
type Action interface {
	Type() ActionType
}

type LoadStateSuccess struct {
	State AppState `json:"loaded_state"`
}

// UpdateAssets asks for a market refresh of all tracked assets.
type UpdateAssets struct{}

type UpdateAssetsSuccess struct {
	Assets []asset.Asset `json:"updated_assets" validate:"dive"`
}

type AddAsset struct {
	Asset asset.Asset `json:"new_asset"`
}

type BuyAsset struct {
	AssetID string `json:"asset_id"`
}

type SellAsset struct {
	AssetID string `json:"asset_id"`
}

// ChangeAssetOrder moves one asset to the position of another.
type ChangeAssetOrder struct {
	MoveAssetID      string `json:"move_asset_id"`
	InPlaceOfAssetID string `json:"in_place_of_asset_id"`
}

type ChooseAsset struct {
	AssetID string `json:"asset_id"`
}

type ChangeRange struct {
	Range asset.Range `json:"range"`
}

type ChangeRadioButton struct {
	Value string `json:"value"`
}

type ToggleShowSoldCryptos struct{}

type AlertNotEnoughOfAsset struct {
	AssetID string `json:"asset_id"`
}

type AlertNotEnoughOfAssetDone struct{}

type ErrorNotification struct {
	Message string `json:"error_message"`
}

// FindNewOffer asks for a fresh set of offered assets.
type FindNewOffer struct{}

type FindNewOfferSuccess struct {
	Assets []asset.Asset `json:"offered_assets" validate:"dive"`
}

type DeleteOffered struct{}

// StartQuest starts the prestart quest. Empty StartAssets means the current assets.
type StartQuest struct {
	StartAssets []asset.Asset `json:"start_assets,omitempty" validate:"dive"`
}

// UpdateQuest rescores the active quest. Empty Assets means the current assets.
type UpdateQuest struct {
	Assets []asset.Asset `json:"assets,omitempty" validate:"dive"`
}

// NewQuest rolls a quest different from LastQuest, or from the current one when omitted.
type NewQuest struct {
	LastQuest *quest.Quest `json:"last_quest,omitempty"`
}

type GetReward struct{}

func (LoadStateSuccess) Type() ActionType          { return TypeLoadStateSuccess }
func (UpdateAssets) Type() ActionType              { return TypeUpdateAssets }
func (UpdateAssetsSuccess) Type() ActionType       { return TypeUpdateAssetsSuccess }
func (AddAsset) Type() ActionType                  { return TypeAddAsset }
func (BuyAsset) Type() ActionType                  { return TypeBuyAsset }
func (SellAsset) Type() ActionType                 { return TypeSellAsset }
func (ChangeAssetOrder) Type() ActionType          { return TypeChangeAssetOrder }
func (ChooseAsset) Type() ActionType               { return TypeChooseAsset }
func (ChangeRange) Type() ActionType               { return TypeChangeRange }
func (ChangeRadioButton) Type() ActionType         { return TypeChangeRadioButton }
func (ToggleShowSoldCryptos) Type() ActionType     { return TypeToggleShowSoldCryptos }
func (AlertNotEnoughOfAsset) Type() ActionType     { return TypeAlertNotEnoughOfAsset }
func (AlertNotEnoughOfAssetDone) Type() ActionType { return TypeAlertNotEnoughOfAssetDone }
func (ErrorNotification) Type() ActionType         { return TypeErrorNotification }
func (FindNewOffer) Type() ActionType              { return TypeFindNewOffer }
func (FindNewOfferSuccess) Type() ActionType       { return TypeFindNewOfferSuccess }
func (DeleteOffered) Type() ActionType             { return TypeDeleteOffered }
func (StartQuest) Type() ActionType                { return TypeStartQuest }
func (UpdateQuest) Type() ActionType               { return TypeUpdateQuest }
func (NewQuest) Type() ActionType                  { return TypeNewQuest }
func (GetReward) Type() ActionType                 { return TypeGetReward }

// Envelope is the wire form of an action.
type Envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[ActionType]func(json.RawMessage) (Action, error){
	TypeLoadStateSuccess:          decode[LoadStateSuccess],
	TypeUpdateAssets:              decode[UpdateAssets],
	TypeUpdateAssetsSuccess:       decode[UpdateAssetsSuccess],
	TypeAddAsset:                  decode[AddAsset],
	TypeBuyAsset:                  decode[BuyAsset],
	TypeSellAsset:                 decode[SellAsset],
	TypeChangeAssetOrder:          decode[ChangeAssetOrder],
	TypeChooseAsset:               decode[ChooseAsset],
	TypeChangeRange:               decode[ChangeRange],
	TypeChangeRadioButton:         decode[ChangeRadioButton],
	TypeToggleShowSoldCryptos:     decode[ToggleShowSoldCryptos],
	TypeAlertNotEnoughOfAsset:     decode[AlertNotEnoughOfAsset],
	TypeAlertNotEnoughOfAssetDone: decode[AlertNotEnoughOfAssetDone],
	TypeErrorNotification:         decode[ErrorNotification],
	TypeFindNewOffer:              decode[FindNewOffer],
	TypeFindNewOfferSuccess:       decode[FindNewOfferSuccess],
	TypeDeleteOffered:             decode[DeleteOffered],
	TypeStartQuest:                decode[StartQuest],
	TypeUpdateQuest:               decode[UpdateQuest],
	TypeNewQuest:                  decode[NewQuest],
	TypeGetReward:                 decode[GetReward],
}

func decode[T Action](raw json.RawMessage) (Action, error) {
	var a T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
	}
	if err := validate.Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return a, nil
}

// DecodeAction parses an envelope into its Action variant.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Action()
}

// Action resolves the envelope into its variant.
func (e Envelope) Action() (Action, error) {
	dec, ok := decoders[e.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Type)
	}
	a, err := dec(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return a, nil
}

// EncodeAction wraps an action into its envelope.
func EncodeAction(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", a.Type(), err)
	}
	return json.Marshal(Envelope{Type: a.Type(), Payload: payload})
}
