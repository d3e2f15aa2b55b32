package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/internal/fetch"
	"github.com/mausarm/crypto-god/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StateStore persists the serialized AppState under a key.
// LoadState returns nil data without error when nothing was saved yet.
type StateStore interface {
	SaveState(ctx context.Context, key string, payload []byte) error
	LoadState(ctx context.Context, key string) ([]byte, error)
}

// Fetcher produces fresh market snapshots. *fetch.Pipeline implements it.
type Fetcher interface {
	UpdateAssets(ctx context.Context, assets []asset.Asset) ([]asset.Asset, error)
	FindNewOffer(ctx context.Context, excluded []asset.Asset) ([]asset.Asset, error)
}

// Engine owns the AppState. Dispatches are serialized; each one reduces,
// persists, notifies subscribers and starts the fetch the action asks for.
type Engine struct {
	mu      sync.Mutex
	state   store.AppState
	reducer *store.Reducer

	fetcher Fetcher
	store   StateStore
	key     string
	logger  *zap.Logger
	now     func() time.Time

	subMu sync.RWMutex
	subs  map[uuid.UUID]chan store.AppState

	ctx     context.Context
	cancel  context.CancelFunc
	effects sync.WaitGroup
}

// Options wires an Engine. Now defaults to time.Now.
type Options struct {
	Reducer *store.Reducer
	Fetcher Fetcher
	Store   StateStore
	Key     string
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reducer == nil {
		opts.Reducer = store.NewReducer(opts.Now, nil)
	}
	if opts.Key == "" {
		opts.Key = "AppState"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		state:   store.InitialState(opts.Now()),
		reducer: opts.Reducer,
		fetcher: opts.Fetcher,
		store:   opts.Store,
		key:     opts.Key,
		logger:  opts.Logger,
		now:     opts.Now,
		subs:    make(map[uuid.UUID]chan store.AppState),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Load reads the persisted state and dispatches it. Missing or malformed data
// starts a new game; only a failing store is returned as error.
func (e *Engine) Load(ctx context.Context) error {
	var data []byte
	if e.store != nil {
		var err error
		data, err = e.store.LoadState(ctx, e.key)
		if err != nil {
			return err
		}
	}

	state, err := store.Decode(data, e.now())
	switch {
	case errors.Is(err, store.ErrNoState):
		e.logger.Info("no saved state, starting a new game", zap.String("key", e.key))
	case err != nil:
		e.logger.Warn("saved state unreadable, starting a new game", zap.String("key", e.key), zap.Error(err))
	}

	e.Dispatch(ctx, store.LoadStateSuccess{State: state})
	return nil
}

// Dispatch applies action and returns the resulting state.
func (e *Engine) Dispatch(ctx context.Context, action store.Action) store.AppState {
	prev, next := e.apply(ctx, action)
	e.logAction(action, prev, next)
	e.startEffect(action, next)
	return next.Clone()
}

// apply reduces, persists and publishes under e.mu. The lock is released even
// when one of the steps panics.
func (e *Engine) apply(ctx context.Context, action store.Action) (prev, next store.AppState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev = e.state
	next = e.reducer.Reduce(prev, action)
	e.state = next
	e.persist(ctx, next)
	e.publish(next)
	return prev, next
}

// State returns a copy of the current state.
func (e *Engine) State() store.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// persist runs under e.mu so saves land in dispatch order.
func (e *Engine) persist(ctx context.Context, state store.AppState) {
	if e.store == nil {
		return
	}
	data, err := store.Encode(state)
	if err != nil {
		e.logger.Error("failed to encode state", zap.Error(err))
		return
	}
	if err := e.store.SaveState(context.WithoutCancel(ctx), e.key, data); err != nil {
		e.logger.Warn("failed to save state", zap.String("key", e.key), zap.Error(err))
	}
}

func (e *Engine) logAction(action store.Action, prev, next store.AppState) {
	fields := []zap.Field{zap.String("action", string(action.Type()))}
	switch a := action.(type) {
	case store.BuyAsset, store.SellAsset, store.GetReward:
		fields = append(fields,
			zap.String("usd_before", asset.FormatUSD(cash(prev))),
			zap.String("usd_after", asset.FormatUSD(cash(next))),
			zap.String("portfolio", asset.FormatUSD(asset.PortfolioValue(next.Assets))),
		)
	case store.ErrorNotification:
		e.logger.Warn("error notification", zap.String("message", a.Message))
		return
	}
	e.logger.Debug("dispatched", fields...)
}

func cash(state store.AppState) float64 {
	if i := asset.FindStatus(state.Assets, asset.StatusUSD); i >= 0 {
		return state.Assets[i].Amount()
	}
	return 0
}

// startEffect launches the fetch requested by action, if any.
func (e *Engine) startEffect(action store.Action, state store.AppState) {
	if e.fetcher == nil {
		return
	}
	switch action.(type) {
	case store.UpdateAssets:
		e.goEffect(func(ctx context.Context) {
			updated, err := e.fetcher.UpdateAssets(ctx, state.Assets)
			if err != nil {
				e.fail(ctx, "update assets", err)
				return
			}
			e.Dispatch(ctx, store.UpdateAssetsSuccess{Assets: updated})
		})
	case store.FindNewOffer:
		e.goEffect(func(ctx context.Context) {
			offered, err := e.fetcher.FindNewOffer(ctx, state.Assets)
			if err != nil {
				e.fail(ctx, "find new offer", err)
				return
			}
			e.Dispatch(ctx, store.FindNewOfferSuccess{Assets: offered})
		})
	}
}

func (e *Engine) goEffect(fn func(ctx context.Context)) {
	e.effects.Add(1)
	go func() {
		defer e.effects.Done()
		fn(e.ctx)
	}()
}

func (e *Engine) fail(ctx context.Context, what string, err error) {
	if e.ctx.Err() != nil {
		e.logger.Info("fetch canceled", zap.String("effect", what))
		return
	}
	e.logger.Warn("fetch failed", zap.String("effect", what), zap.Error(err))
	msg := fetch.ErrServerUnavailable.Error()
	if !errors.Is(err, fetch.ErrServerUnavailable) {
		msg = err.Error()
	}
	e.Dispatch(ctx, store.ErrorNotification{Message: msg})
}

// Context is canceled when the engine is closed. Dispatches that outlive a
// request, such as websocket actions, run under it.
func (e *Engine) Context() context.Context {
	return e.ctx
}

// Wait blocks until all started fetches have finished.
func (e *Engine) Wait() {
	e.effects.Wait()
}

// Close cancels running fetches, waits for them and closes all subscriptions.
func (e *Engine) Close() {
	e.cancel()
	e.effects.Wait()

	e.subMu.Lock()
	defer e.subMu.Unlock()
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}
