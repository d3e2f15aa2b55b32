package coingecko

import "fmt"

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	VsCurrency     = "usd"
	// MaxPerPage is the largest page the markets endpoint serves.
	MaxPerPage = 250
)

// ChartDays is the days parameter of the market chart endpoint.
type ChartDays string

const (
	Days1   ChartDays = "1"
	Days7   ChartDays = "7"
	Days28  ChartDays = "28"
	Days365 ChartDays = "365"
	DaysMax ChartDays = "max"
)

var validChartDays = map[ChartDays]struct{}{
	Days1:   {},
	Days7:   {},
	Days28:  {},
	Days365: {},
	DaysMax: {},
}

// IsValid checks if the ChartDays is one of the supported values.
func (d ChartDays) IsValid() bool {
	_, ok := validChartDays[d]
	return ok
}

// ParseChartDays parses a string into a supported ChartDays.
func ParseChartDays(s string) (ChartDays, error) {
	d := ChartDays(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid chart days: %s", s)
	}
	return d, nil
}
