package asset

import "fmt"

// Range selects one of the price histories of an asset.
type Range int

const (
	RangeDay Range = iota
	RangeWeek
	RangeMonth
	RangeYear
	RangeAll

	NumRanges = 5
)

// RangeMeta holds the API day count and sampling budget of a Range.
type RangeMeta struct {
	Name string
	Days string // days parameter of the market chart endpoint
	// MaxPoints bounds the down-sampled series; intraday stays dense for quests.
	MaxPoints int
}

var validRanges = map[Range]RangeMeta{
	RangeDay:   {Name: "day", Days: "1", MaxPoints: 1000},
	RangeWeek:  {Name: "week", Days: "7", MaxPoints: 100},
	RangeMonth: {Name: "month", Days: "28", MaxPoints: 100},
	RangeYear:  {Name: "year", Days: "365", MaxPoints: 100},
	RangeAll:   {Name: "all", Days: "max", MaxPoints: 100},
}

// Ranges lists all ranges in index order.
func Ranges() []Range {
	return []Range{RangeDay, RangeWeek, RangeMonth, RangeYear, RangeAll}
}

// IsValid checks if the Range is one of the predefined ranges.
func (r Range) IsValid() bool {
	_, ok := validRanges[r]
	return ok
}

// Meta returns the range metadata. Invalid ranges map to the day range.
func (r Range) Meta() RangeMeta {
	if m, ok := validRanges[r]; ok {
		return m
	}
	return validRanges[RangeDay]
}

func (r Range) String() string {
	return r.Meta().Name
}

// ParseRange parses a range name such as "week".
func ParseRange(s string) (Range, error) {
	for r, m := range validRanges {
		if m.Name == s {
			return r, nil
		}
	}
	return RangeDay, fmt.Errorf("invalid range: %s", s)
}
