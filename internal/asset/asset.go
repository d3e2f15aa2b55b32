package asset

import (
	"slices"
	"time"
)

// Status describes how an asset takes part in the portfolio.
type Status string

const (
	StatusOwned   Status = "owned"
	StatusOffered Status = "offered"
	StatusUSD     Status = "usd"
	StatusTotal   Status = "total"
	StatusSold    Status = "sold"
)

const (
	IDUSD     = "usd"
	IDTotal   = "total"
	IDBitcoin = "bitcoin"
)

const (
	// BuySellValue is the USD notional of a single buy or sell click.
	BuySellValue = 1000.0
	// QuestReward is credited to USD when a quest is won.
	QuestReward = 1000.0
	// StartingUSD is the cash balance of a new game.
	StartingUSD = 10000.0
	// CollapseWindow merges ledger entries of trades closer than this.
	CollapseWindow = 60 * time.Second
)

// Sparkline is one price series of an asset, prices and timestamps are parallel.
type Sparkline struct {
	Prices     []float64   `json:"prices" validate:"dive,gte=0,lte=1e15"`
	Timestamps []time.Time `json:"timestamps"`
}

// Last returns the most recent sample of the series.
func (s Sparkline) Last() (float64, time.Time, bool) {
	if len(s.Prices) == 0 || len(s.Timestamps) == 0 {
		return 0, time.Time{}, false
	}
	return s.Prices[len(s.Prices)-1], s.Timestamps[len(s.Timestamps)-1], true
}

// PriceAt returns the price of the latest sample not after t.
// Samples are assumed to be in chronological order.
func (s Sparkline) PriceAt(t time.Time) (float64, bool) {
	n := min(len(s.Prices), len(s.Timestamps))
	if n == 0 {
		return 0, false
	}
	price := s.Prices[0]
	for i := 0; i < n; i++ {
		if s.Timestamps[i].After(t) {
			break
		}
		price = s.Prices[i]
	}
	return price, true
}

func (s Sparkline) clone() Sparkline {
	return Sparkline{
		Prices:     slices.Clone(s.Prices),
		Timestamps: slices.Clone(s.Timestamps),
	}
}

// Asset is one tracked crypto asset or one of the synthetic USD/TOTAL assets.
type Asset struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	LogoURL    string    `json:"logo_url"`
	Price      float64   `json:"price" validate:"gte=0,lte=1e15"`
	FirstTrade time.Time `json:"first_trade"`

	// History holds one sparkline per Range.
	History []Sparkline `json:"history" validate:"dive"`

	// AmountHistory and AmountTimestamps are the ledger of held quantity.
	// The last amount is the current quantity.
	AmountHistory    []float64   `json:"amount_history" validate:"dive,gte=0,lte=1e15"`
	AmountTimestamps []time.Time `json:"amount_timestamps"`
}

// Clone returns a deep copy.
func (a Asset) Clone() Asset {
	c := a
	if a.History != nil {
		c.History = make([]Sparkline, len(a.History))
		for i, s := range a.History {
			c.History[i] = s.clone()
		}
	}
	c.AmountHistory = slices.Clone(a.AmountHistory)
	c.AmountTimestamps = slices.Clone(a.AmountTimestamps)
	return c
}

// Amount returns the currently held quantity.
func (a Asset) Amount() float64 {
	if len(a.AmountHistory) == 0 {
		return 0
	}
	return a.AmountHistory[len(a.AmountHistory)-1]
}

// AmountAt returns the quantity held at t according to the ledger.
// Before the first ledger entry a crypto asset holds nothing, USD holds its first amount.
func (a Asset) AmountAt(t time.Time) float64 {
	n := min(len(a.AmountHistory), len(a.AmountTimestamps))
	if n == 0 {
		return a.Amount()
	}
	if t.Before(a.AmountTimestamps[0]) {
		if a.Status == StatusUSD {
			return a.AmountHistory[0]
		}
		return 0
	}
	amount := a.AmountHistory[0]
	for i := 1; i < n; i++ {
		if a.AmountTimestamps[i].After(t) {
			break
		}
		amount = a.AmountHistory[i]
	}
	return amount
}

// Value returns the USD value of the current holding.
func (a Asset) Value() float64 {
	switch a.Status {
	case StatusUSD, StatusTotal:
		return a.Amount()
	}
	return a.Amount() * a.Price
}

// IsSynthetic reports whether the asset is USD or TOTAL, which are never fetched.
func (a Asset) IsSynthetic() bool {
	return a.ID == IDUSD || a.ID == IDTotal || a.Status == StatusUSD || a.Status == StatusTotal
}

// LedgerConsistent reports whether the ledger sequences have equal length.
func (a Asset) LedgerConsistent() bool {
	return len(a.AmountHistory) == len(a.AmountTimestamps)
}

// EmptyHistory returns one empty sparkline per range.
func EmptyHistory() []Sparkline {
	h := make([]Sparkline, NumRanges)
	for i := range h {
		h[i] = Sparkline{Prices: []float64{}, Timestamps: []time.Time{}}
	}
	return h
}

// NewOffered builds an asset offered for adding, holding nothing since now.
func NewOffered(id, symbol, name, logoURL string, price float64, firstTrade, now time.Time) Asset {
	return Asset{
		ID:               id,
		Symbol:           symbol,
		Name:             name,
		Status:           StatusOffered,
		LogoURL:          logoURL,
		Price:            price,
		FirstTrade:       firstTrade,
		History:          EmptyHistory(),
		AmountHistory:    []float64{0},
		AmountTimestamps: []time.Time{now},
	}
}

// NewUSD builds the cash pseudo-asset.
func NewUSD(amount float64, now time.Time) Asset {
	return Asset{
		ID:               IDUSD,
		Symbol:           "USD",
		Name:             "US Dollar",
		Status:           StatusUSD,
		Price:            1,
		History:          EmptyHistory(),
		AmountHistory:    []float64{amount},
		AmountTimestamps: []time.Time{now},
	}
}

// NewTotal builds the portfolio total pseudo-asset.
func NewTotal(amount float64, now time.Time) Asset {
	return Asset{
		ID:               IDTotal,
		Symbol:           "TOTAL",
		Name:             "Total",
		Status:           StatusTotal,
		Price:            amount,
		History:          EmptyHistory(),
		AmountHistory:    []float64{amount},
		AmountTimestamps: []time.Time{now},
	}
}
