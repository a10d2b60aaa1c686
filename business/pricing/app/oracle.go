package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aptos-dex/business/pricing/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const (
	tracerName = "github.com/fd1az/aptos-dex/business/pricing"
	meterName  = "github.com/fd1az/aptos-dex/business/pricing"
)

var errNoPrice = errors.New("feed returned no usable price")

// OracleConfig controls caching and retries.
type OracleConfig struct {
	TTL         time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// DefaultOracleConfig returns 60s TTL, 3 attempts, 1s apart.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		TTL:         60 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  time.Second,
	}
}

type oracleMetrics struct {
	fetches     metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
}

// Oracle resolves USD prices by symbol with a TTL cache in front of the feed.
type Oracle struct {
	feed    PriceFeed
	store   PriceStore
	cfg     OracleConfig
	feedIDs map[string]string
	now     func() time.Time
	log     logger.LoggerInterface
	tracer  trace.Tracer
	metrics *oracleMetrics
}

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithClock replaces the time source.
func WithClock(now func() time.Time) OracleOption {
	return func(o *Oracle) { o.now = now }
}

// WithFeedIDs replaces the symbol to feed id table.
func WithFeedIDs(ids map[string]string) OracleOption {
	return func(o *Oracle) { o.feedIDs = ids }
}

// NewOracle creates an oracle backed by feed and store.
func NewOracle(feed PriceFeed, store PriceStore, cfg OracleConfig, log logger.LoggerInterface, opts ...OracleOption) (*Oracle, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	o := &Oracle{
		feed:    feed,
		store:   store,
		cfg:     cfg,
		feedIDs: asset.FeedIDs,
		now:     time.Now,
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return o, nil
}

func (o *Oracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	o.metrics = &oracleMetrics{}

	o.metrics.fetches, err = meter.Int64Counter(
		"price_feed_fetches_total",
		metric.WithDescription("Price feed requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	o.metrics.cacheHits, err = meter.Int64Counter(
		"price_cache_hits_total",
		metric.WithDescription("Prices served from cache"),
	)
	if err != nil {
		return err
	}

	o.metrics.cacheMisses, err = meter.Int64Counter(
		"price_cache_misses_total",
		metric.WithDescription("Prices missing or expired in cache"),
	)
	return err
}

// GetPrice returns the USD price of symbol. Unknown symbols fail without
// touching the network.
func (o *Oracle) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := o.GetPrices(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return prices[normalizeSymbol(symbol)], nil
}

// GetPrices resolves several symbols with one feed request for the cache misses.
func (o *Oracle) GetPrices(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error) {
	ctx, span := o.tracer.Start(ctx, "pricing.get_price",
		trace.WithAttributes(attribute.StringSlice("symbols", symbols)))
	defer span.End()

	out := make(map[string]decimal.Decimal, len(symbols))
	missing := make(map[string]string) // feed id -> symbol

	for _, s := range symbols {
		sym := normalizeSymbol(s)
		id, ok := o.feedIDs[sym]
		if !ok {
			err := apperror.New(apperror.CodeUnknownSymbol, apperror.WithContext(s))
			apm.NoticeError(span, err)
			return nil, err
		}

		if entry, ok := o.store.Get(ctx, sym); ok && entry.Fresh(o.now(), o.cfg.TTL) {
			o.metrics.cacheHits.Add(ctx, 1)
			out[sym] = entry.Price
			continue
		}
		o.metrics.cacheMisses.Add(ctx, 1)
		missing[id] = sym
	}

	if len(missing) == 0 {
		return out, nil
	}

	if err := o.fetch(ctx, missing, out); err != nil {
		apm.NoticeError(span, err)
		return nil, err
	}
	return out, nil
}

// fetch retries the feed with a constant delay. Ids that resolved on an
// earlier attempt are not requested again.
func (o *Oracle) fetch(ctx context.Context, missing map[string]string, out map[string]decimal.Decimal) error {
	ctx, span := o.tracer.Start(ctx, "pricing.fetch")
	defer span.End()

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		ids := make([]string, 0, len(missing))
		for id := range missing {
			ids = append(ids, id)
		}

		prices, err := o.feed.FetchUSD(ctx, ids)
		o.metrics.fetches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
		if err != nil {
			o.log.Warn(ctx, "price feed request failed", "attempt", attempt, "ids", strings.Join(ids, ","), "error", err)
			return struct{}{}, err
		}

		now := o.now()
		for id, sym := range missing {
			p, ok := prices[id]
			if !ok || !p.IsPositive() {
				continue
			}
			o.store.Set(ctx, sym, domain.NewEntry(p, now))
			out[sym] = p
			delete(missing, id)
		}

		if len(missing) > 0 {
			o.log.Warn(ctx, "price feed response incomplete", "attempt", attempt, "missing", len(missing))
			return struct{}{}, errNoPrice
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(o.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(o.cfg.MaxAttempts)),
	)

	span.SetAttributes(attribute.Int("attempts", attempt))
	if err != nil {
		symbols := make([]string, 0, len(missing))
		for _, sym := range missing {
			symbols = append(symbols, sym)
		}
		return apperror.New(apperror.CodePriceUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(strings.Join(symbols, ",")))
	}
	return nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Ensure Oracle implements PriceOracle.
var _ PriceOracle = (*Oracle)(nil)
