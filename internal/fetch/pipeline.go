package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mausarm/crypto-god/internal/asset"
	"github.com/mausarm/crypto-god/pkg/coingecko"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrServerUnavailable is returned once the retry budget of a request is spent.
var ErrServerUnavailable = errors.New("crypto data server not available")

// MarketClient is the subset of the CoinGecko client the pipeline needs.
type MarketClient interface {
	GetMarkets(ctx context.Context, perPage int) ([]coingecko.MarketCoin, error)
	GetMarketChart(ctx context.Context, id string, days coingecko.ChartDays) (*coingecko.MarketChart, error)
}

// Config tunes request sizes and retry budgets.
type Config struct {
	MarketRetries    uint64 // retries of the bulk listing
	ChartRetries     uint64 // retries of a single market chart
	ExtraMarketCoins int    // listing size beyond the tracked assets
	ExtraOfferCoins  int    // candidate pool beyond the excluded assets
	OfferSize        int    // number of assets offered at once
}

// DefaultConfig returns the stock retry budgets and pool sizes.
func DefaultConfig() Config {
	return Config{
		MarketRetries:    3,
		ChartRetries:     1,
		ExtraMarketCoins: 100,
		ExtraOfferCoins:  50,
		OfferSize:        4,
	}
}

// Pipeline fetches market data and produces new asset snapshots.
// It never mutates the assets it is given.
type Pipeline struct {
	client  MarketClient
	limiter *Limiter
	logger  *zap.Logger
	cfg     Config
	now     func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewPipeline wires a pipeline. A nil clock means time.Now, a nil rnd a time-seeded source.
func NewPipeline(client MarketClient, limiter *Limiter, logger *zap.Logger, cfg Config,
	now func() time.Time, rnd *rand.Rand) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		client:  client,
		limiter: limiter,
		logger:  logger,
		cfg:     cfg,
		now:     now,
		rnd:     rnd,
	}
}

// UpdateAssets refreshes prices and sparklines of the given assets.
// The result has the same length and order as the input.
func (p *Pipeline) UpdateAssets(ctx context.Context, assets []asset.Asset) ([]asset.Asset, error) {
	start := time.Now()

	priced, err := p.updatePrices(ctx, assets)
	if err != nil {
		return nil, err
	}

	updated, err := p.updateSparklines(ctx, priced)
	if err != nil {
		return nil, err
	}

	p.logger.Info("assets updated",
		zap.Int("count", len(updated)),
		zap.Duration("took", time.Since(start)))
	return updated, nil
}

// updatePrices merges the bulk market listing into the assets.
func (p *Pipeline) updatePrices(ctx context.Context, assets []asset.Asset) ([]asset.Asset, error) {
	var coins []coingecko.MarketCoin
	err := p.call(ctx, p.cfg.MarketRetries, "markets", func() error {
		var err error
		coins, err = p.client.GetMarkets(ctx, len(assets)+p.cfg.ExtraMarketCoins)
		return err
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]coingecko.MarketCoin, len(coins))
	for _, c := range coins {
		byID[c.ID] = c
	}

	out := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		u := a.Clone()
		if c, ok := byID[a.ID]; ok && !a.IsSynthetic() {
			u.LogoURL = c.Image
			u.Price = c.CurrentPrice
			if c.ATLDate != nil {
				u.FirstTrade = *c.ATLDate
			}
		}
		out = append(out, u)
	}
	return out, nil
}

// updateSparklines fetches every range of every asset. Assets are processed one
// after the other, the ranges of one asset concurrently.
func (p *Pipeline) updateSparklines(ctx context.Context, assets []asset.Asset) ([]asset.Asset, error) {
	out := make([]asset.Asset, 0, len(assets))
	for _, a := range assets {
		u := a.Clone()
		if len(u.History) < asset.NumRanges {
			history := asset.EmptyHistory()
			copy(history, u.History)
			u.History = history
		}

		// USD and TOTAL are derived locally
		if u.IsSynthetic() {
			out = append(out, u)
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, r := range asset.Ranges() {
			r := r
			g.Go(func() error {
				s, err := p.sparkline(gctx, u, r)
				if err != nil {
					return err
				}
				u.History[r] = s
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// sparkline fetches and down-samples one range, then appends the live price.
func (p *Pipeline) sparkline(ctx context.Context, a asset.Asset, r asset.Range) (asset.Sparkline, error) {
	meta := r.Meta()

	var chart *coingecko.MarketChart
	err := p.call(ctx, p.cfg.ChartRetries, "market chart "+a.ID+" "+meta.Name, func() error {
		var err error
		chart, err = p.client.GetMarketChart(ctx, a.ID, coingecko.ChartDays(meta.Days))
		return err
	})
	if err != nil {
		return asset.Sparkline{}, err
	}

	var points []coingecko.PricePoint
	if chart != nil {
		points = coingecko.ParsePricePoints(chart.Prices)
	}
	prices, stamps := ThinOut(points, meta.MaxPoints)
	prices = append(prices, a.Price)
	stamps = append(stamps, p.now())

	return asset.Sparkline{Prices: prices, Timestamps: stamps}, nil
}

// FindNewOffer picks up to OfferSize random assets from the top of the market
// that are neither excluded nor stablecoins.
func (p *Pipeline) FindNewOffer(ctx context.Context, excluded []asset.Asset) ([]asset.Asset, error) {
	var coins []coingecko.MarketCoin
	err := p.call(ctx, p.cfg.MarketRetries, "offer markets", func() error {
		var err error
		coins, err = p.client.GetMarkets(ctx, len(excluded)+p.cfg.ExtraOfferCoins)
		return err
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]coingecko.MarketCoin, 0, len(coins))
	for _, c := range coins {
		if asset.Find(excluded, c.ID) >= 0 || IsStablecoin(c.CurrentPrice) {
			continue
		}
		candidates = append(candidates, c)
	}

	now := p.now()
	offer := make([]asset.Asset, 0, p.cfg.OfferSize)

	p.rndMu.Lock()
	for len(offer) < p.cfg.OfferSize && len(candidates) > 0 {
		i := p.rnd.Intn(len(candidates))
		c := candidates[i]
		candidates = append(candidates[:i], candidates[i+1:]...)

		var firstTrade time.Time
		if c.ATLDate != nil {
			firstTrade = *c.ATLDate
		}
		offer = append(offer, asset.NewOffered(c.ID, strings.ToUpper(c.Symbol), c.Name, c.Image,
			c.CurrentPrice, firstTrade, now))
	}
	p.rndMu.Unlock()

	if len(offer) < p.cfg.OfferSize {
		p.logger.Warn("offer pool smaller than requested",
			zap.Int("requested", p.cfg.OfferSize), zap.Int("offered", len(offer)))
	}
	return offer, nil
}

var oneDollar = decimal.NewFromInt(1)

// IsStablecoin reports whether a price rounds to 1.0 USD at one decimal.
func IsStablecoin(price float64) bool {
	return decimal.NewFromFloat(price).Round(1).Equal(oneDollar)
}

// call waits for a request slot and runs op, retrying on the limiter's schedule.
// Schema mismatches are not retried.
func (p *Pipeline) call(ctx context.Context, retries uint64, what string, op func() error) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&limiterBackOff{limiter: p.limiter}, retries), ctx)
	err := backoff.RetryNotify(func() error {
		err := op()
		if errors.Is(err, coingecko.ErrSchema) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, d time.Duration) {
		p.logger.Warn("market request failed, retrying",
			zap.String("request", what),
			zap.Duration("backoff", d),
			zap.Error(err))
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, coingecko.ErrSchema) || ctx.Err() != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	p.logger.Error("market request failed", zap.String("request", what), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrServerUnavailable, what, err)
}
