// Package app contains the balance refresher and history reader.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/aptos-dex/business/account/domain"
	chainapp "github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const (
	tracerName = "github.com/fd1az/aptos-dex/business/account"
	meterName  = "github.com/fd1az/aptos-dex/business/account"

	// DefaultPollInterval is the balance polling period.
	DefaultPollInterval = 10 * time.Second
)

type refresherMetrics struct {
	refreshes     metric.Int64Counter
	tokenFailures metric.Int64Counter
}

// Refresher keeps the balance snapshot of the watched address current.
// Every loop and one-off refresh carries a generation number; results from
// a superseded generation are dropped.
type Refresher struct {
	node     chainapp.Node
	registry *asset.Registry
	interval time.Duration
	log      logger.LoggerInterface
	tracer   trace.Tracer
	metrics  *refresherMetrics
	now      func() time.Time

	mu       sync.Mutex
	gen      uint64
	address  string
	network  string
	loopCtx  context.Context
	cancel   context.CancelFunc
	snapshot domain.Snapshot
	timers   map[*time.Timer]struct{}

	subsMu sync.RWMutex
	subs   map[int]func(domain.Snapshot)
	nextID int
}

// NewRefresher creates a refresher for every token in registry.
func NewRefresher(node chainapp.Node, registry *asset.Registry, interval time.Duration, log logger.LoggerInterface) *Refresher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	r := &Refresher{
		node:     node,
		registry: registry,
		interval: interval,
		log:      log,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		subs:     make(map[int]func(domain.Snapshot)),
	}
	r.snapshot = r.zeroSnapshot("", "")
	r.initMetrics()
	return r
}

func (r *Refresher) initMetrics() {
	meter := otel.Meter(meterName)
	r.metrics = &refresherMetrics{}
	r.metrics.refreshes, _ = meter.Int64Counter("balance_refreshes_total",
		metric.WithDescription("Balance snapshot fetches"))
	r.metrics.tokenFailures, _ = meter.Int64Counter("balance_token_failures_total",
		metric.WithDescription("Per-token balance reads that failed and were zeroed"))
}

// FetchAll reads every token balance of address concurrently. Missing
// stores and unverified tokens read as zero; other per-token failures are
// logged and zeroed.
func (r *Refresher) FetchAll(ctx context.Context, address string) (domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "account.fetch_all",
		trace.WithAttributes(attribute.String("address", address)))
	defer span.End()

	tokens := r.registry.All()
	balances := make([]domain.Balance, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tokens {
		g.Go(func() error {
			balances[i] = r.fetchOne(gctx, address, t)
			return nil
		})
	}
	g.Wait()

	r.metrics.refreshes.Add(ctx, 1)
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Address: address, Balances: balances, FetchedAt: r.now()}, nil
}

func (r *Refresher) fetchOne(ctx context.Context, address string, t *asset.Token) domain.Balance {
	if !t.IsVerified() {
		return domain.ZeroBalanceOf(t)
	}

	raw, err := r.node.CoinBalance(ctx, address, t.CoinType())
	switch {
	case err == nil:
		amt := asset.NewAmount(t, raw)
		return domain.Balance{Token: t, Amount: amt, Display: amt.FormatBalance()}
	case chainapp.IsNotFound(err):
		return domain.ZeroBalanceOf(t)
	default:
		if ctx.Err() == nil {
			r.metrics.tokenFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", t.Symbol())))
			r.log.Warn(ctx, "balance read failed", "symbol", t.Symbol(), "address", address, "error", err)
		}
		return domain.ZeroBalanceOf(t)
	}
}

// Watch starts polling address on network: once now, then every interval.
// Watching a different address or network cancels the previous loop.
func (r *Refresher) Watch(ctx context.Context, address, network string) {
	r.mu.Lock()
	if r.cancel != nil && strings.EqualFold(r.address, address) && r.network == network {
		r.mu.Unlock()
		return
	}
	r.stopLocked()
	r.gen++
	gen := r.gen
	r.address = address
	r.network = network
	r.loopCtx, r.cancel = context.WithCancel(ctx)
	loopCtx := r.loopCtx
	r.mu.Unlock()

	r.log.Info(ctx, "watching balances", "address", address, "network", network, "interval", r.interval)
	go r.loop(loopCtx, gen, address)
}

func (r *Refresher) loop(ctx context.Context, gen uint64, address string) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if snap, err := r.FetchAll(ctx, address); err == nil {
			r.apply(gen, snap)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Refresh re-reads the watched address now. It returns the current
// snapshot unchanged when nothing is watched.
func (r *Refresher) Refresh(ctx context.Context) (domain.Snapshot, error) {
	r.mu.Lock()
	gen, address := r.gen, r.address
	r.mu.Unlock()

	if address == "" {
		return r.Current(), nil
	}

	snap, err := r.FetchAll(ctx, address)
	if err != nil {
		return domain.Snapshot{}, err
	}
	r.apply(gen, snap)
	return r.Current(), nil
}

// RefreshAfter schedules a Refresh after delay on the watch loop's context.
func (r *Refresher) RefreshAfter(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loopCtx == nil {
		return
	}
	ctx := r.loopCtx
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, timer)
		r.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.log.Warn(ctx, "scheduled balance refresh failed", "error", err)
		}
	})
	if r.timers == nil {
		r.timers = make(map[*time.Timer]struct{})
	}
	r.timers[timer] = struct{}{}
}

// Reset stops polling and zeroes every balance. Used on wallet disconnect.
func (r *Refresher) Reset() {
	r.mu.Lock()
	r.stopLocked()
	r.gen++
	r.address = ""
	r.network = ""
	r.snapshot = r.zeroSnapshot("", "")
	snap := r.snapshot
	r.mu.Unlock()

	r.broadcast(snap)
}

// Current returns the last applied snapshot.
func (r *Refresher) Current() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// Subscribe registers fn for every applied snapshot.
func (r *Refresher) Subscribe(fn func(domain.Snapshot)) func() {
	r.subsMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.subsMu.Unlock()

	return func() {
		r.subsMu.Lock()
		delete(r.subs, id)
		r.subsMu.Unlock()
	}
}

// Close stops polling.
func (r *Refresher) Close() error {
	r.mu.Lock()
	r.stopLocked()
	r.mu.Unlock()
	return nil
}

func (r *Refresher) apply(gen uint64, snap domain.Snapshot) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	snap.Network = r.network
	r.snapshot = snap
	r.mu.Unlock()

	r.broadcast(snap)
}

func (r *Refresher) broadcast(snap domain.Snapshot) {
	r.subsMu.RLock()
	fns := make([]func(domain.Snapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subsMu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (r *Refresher) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.loopCtx = nil
	for t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}

func (r *Refresher) zeroSnapshot(address, network string) domain.Snapshot {
	tokens := r.registry.All()
	balances := make([]domain.Balance, len(tokens))
	for i, t := range tokens {
		balances[i] = domain.ZeroBalanceOf(t)
	}
	return domain.Snapshot{Address: address, Network: network, Balances: balances, FetchedAt: r.now()}
}
