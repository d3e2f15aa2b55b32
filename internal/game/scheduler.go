package game

import (
	"context"
	"time"

	"github.com/mausarm/crypto-god/internal/quest"
	"github.com/mausarm/crypto-god/internal/store"

	"go.uber.org/zap"
)

// Scheduler plays the periodic triggers of a client: market refreshes,
// quest ticks and the daily offer rotation.
type Scheduler struct {
	Engine          *Engine
	RefreshInterval time.Duration
	QuestTick       time.Duration
	Logger          *zap.Logger

	lastOfferAttempt time.Time
}

// Run refreshes once immediately and then ticks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	refresh := time.NewTicker(nonZero(s.RefreshInterval, 5*time.Minute))
	defer refresh.Stop()
	tick := time.NewTicker(nonZero(s.QuestTick, 10*time.Second))
	defer tick.Stop()

	s.Engine.Dispatch(ctx, store.UpdateAssets{})
	s.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler stopped")
			return
		case <-refresh.C:
			s.Engine.Dispatch(ctx, store.UpdateAssets{})
		case <-tick.C:
			s.Tick(ctx)
		}
	}
}

// Tick rescores an active quest and rotates the offer once its date has passed.
// A failed rotation is retried after one refresh interval.
func (s *Scheduler) Tick(ctx context.Context) {
	state := s.Engine.State()
	now := s.Engine.now()

	if state.Quest.Status == quest.StatusActive {
		s.Engine.Dispatch(ctx, store.UpdateQuest{})
	}

	if now.Before(state.Offer.NextNewAssetDate) {
		return
	}
	if !s.lastOfferAttempt.IsZero() && now.Sub(s.lastOfferAttempt) < nonZero(s.RefreshInterval, 5*time.Minute) {
		return
	}
	s.lastOfferAttempt = now
	s.Logger.Info("rotating offer", zap.Time("due", state.Offer.NextNewAssetDate))
	s.Engine.Dispatch(ctx, store.DeleteOffered{})
	s.Engine.Dispatch(ctx, store.FindNewOffer{})
}

func nonZero(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
