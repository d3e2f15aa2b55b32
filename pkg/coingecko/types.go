package coingecko

import "time"

// MarketCoin is one entry of the /coins/markets listing.
type MarketCoin struct {
	ID           string     `json:"id" validate:"required"`                    // e.g., "bitcoin"
	Symbol       string     `json:"symbol" validate:"required"`                // e.g., "btc"
	Name         string     `json:"name" validate:"required"`                  // e.g., "Bitcoin"
	Image        string     `json:"image"`                                     // logo URL
	CurrentPrice float64    `json:"current_price" validate:"gte=0"`            // price in vs_currency
	MarketCap    float64    `json:"market_cap" validate:"gte=0"`               // market capitalization
	ATLDate      *time.Time `json:"atl_date"`                                  // date of the all time low, used as first trade
	LastUpdated  *time.Time `json:"last_updated"`                              // time of the quoted price
	Rank         *int       `json:"market_cap_rank" validate:"omitempty,gt=0"` // position by market cap
}

// MarketChart is the /coins/{id}/market_chart response.
// Every series is a list of [unix millis, value] pairs.
type MarketChart struct {
	Prices       [][2]float64 `json:"prices" validate:"required"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// ErrorResponse is the body CoinGecko sends on failures such as rate limiting.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

// PricePoint is a single sample of a price series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}
