package quest

import (
	"math/rand"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
)

// Type selects the scoring strategy of a quest.
type Type string

const (
	TypeGainTotal   Type = "gainTotal"
	TypeBeatBitcoin Type = "beatBitcoin"
	TypeBeatAverage Type = "beatAverage"
	TypeBeatHodler  Type = "beatHodler"
)

// Types lists every quest type in a stable order.
func Types() []Type {
	return []Type{TypeGainTotal, TypeBeatBitcoin, TypeBeatAverage, TypeBeatHodler}
}

// Duration is how long a started quest runs.
type Duration string

const (
	DurationTenMin Duration = "tenMin"
	DurationHour   Duration = "hour"
	DurationDay    Duration = "day"
)

// Offset returns the wall-clock length of the duration.
func (d Duration) Offset() time.Duration {
	switch d {
	case DurationHour:
		return time.Hour
	case DurationDay:
		return 24 * time.Hour
	}
	return 10 * time.Minute
}

// DefaultDuration returns the duration a new quest of type t runs for.
func DefaultDuration(t Type) Duration {
	switch t {
	case TypeBeatAverage:
		return DurationHour
	case TypeBeatHodler:
		return DurationDay
	}
	return DurationTenMin
}

// Status is the lifecycle state of a quest.
type Status string

const (
	StatusPrestart Status = "prestart"
	StatusActive   Status = "active"
	StatusWon      Status = "won"
	StatusLost     Status = "lost"
)

// GainTarget is the USD gain a gainTotal quest has to exceed.
const GainTarget = 100.0

// Quest is a timed challenge scored against a snapshot of the assets at its start.
type Quest struct {
	Type        Type          `json:"type"`
	Duration    Duration      `json:"duration"`
	Status      Status        `json:"status"`
	EndTime     time.Time     `json:"end_time"`
	StartAssets []asset.Asset `json:"start_assets" validate:"dive"`
	Score       float64       `json:"score"`
	Target      float64       `json:"target"`
}

// Initial is the quest of a fresh game.
func Initial() Quest {
	return prestart(TypeGainTotal)
}

func prestart(t Type) Quest {
	return Quest{
		Type:        t,
		Duration:    DefaultDuration(t),
		Status:      StatusPrestart,
		EndTime:     time.Unix(0, 0).UTC(),
		StartAssets: []asset.Asset{},
	}
}

// Clone returns a deep copy.
func (q Quest) Clone() Quest {
	c := q
	c.StartAssets = asset.CloneAll(q.StartAssets)
	return c
}

// New picks a random quest type other than the last one and returns it ready to start.
func New(last Quest, rnd *rand.Rand) Quest {
	var candidates []Type
	for _, t := range Types() {
		if t != last.Type {
			candidates = append(candidates, t)
		}
	}
	return prestart(candidates[rnd.Intn(len(candidates))])
}

// Start snapshots the assets and starts the clock.
func Start(q Quest, assets []asset.Asset, now time.Time) Quest {
	result := q.Clone()
	result.Status = StatusActive
	result.StartAssets = asset.CloneAll(assets)
	result.EndTime = now.Add(q.Duration.Offset())
	result.Score = Score(result, assets)
	result.Target = Target(result, assets)
	return result
}

// Update rescores an active quest and decides it once its end time has passed.
// Quests in any other state are returned unchanged.
func Update(q Quest, assets []asset.Asset, now time.Time) Quest {
	result := q.Clone()
	if q.Status != StatusActive {
		return result
	}

	result.Score = Score(q, assets)
	result.Target = Target(q, assets)
	if q.EndTime.Before(now) {
		if result.Score > result.Target {
			result.Status = StatusWon
		} else {
			result.Status = StatusLost
		}
	}
	return result
}
