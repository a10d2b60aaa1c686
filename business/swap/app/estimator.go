package app

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const (
	tracerName = "github.com/fd1az/aptos-dex/business/swap"
	meterName  = "github.com/fd1az/aptos-dex/business/swap"

	bpsDenominator = 10000
)

var (
	hundred      = decimal.NewFromInt(100)
	impactFactor = decimal.RequireFromString("0.01")
	impactCap    = decimal.NewFromInt(2)
)

// EstimatorConfig controls the quote model.
type EstimatorConfig struct {
	FeeRateBps int64
	Model      domain.Model
}

// DefaultEstimatorConfig returns 30 bps on the oracle model.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{FeeRateBps: 30, Model: domain.ModelOracle}
}

type estimatorMetrics struct {
	quotes        metric.Int64Counter
	poolFallbacks metric.Int64Counter
}

// Estimator quotes swaps from USD prices or, when configured, from pool reserves.
type Estimator struct {
	prices   PriceSource
	reserves ReserveReader
	cfg      EstimatorConfig
	now      func() time.Time
	log      logger.LoggerInterface
	tracer   trace.Tracer
	metrics  *estimatorMetrics
}

// NewEstimator creates an estimator. reserves may be nil on the oracle model.
func NewEstimator(prices PriceSource, reserves ReserveReader, cfg EstimatorConfig, log logger.LoggerInterface) *Estimator {
	if cfg.Model == "" {
		cfg.Model = domain.ModelOracle
	}
	e := &Estimator{
		prices:   prices,
		reserves: reserves,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
		tracer:   otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	e.metrics = &estimatorMetrics{}
	e.metrics.quotes, _ = meter.Int64Counter("swap_quotes_total",
		metric.WithDescription("Quotes computed"))
	e.metrics.poolFallbacks, _ = meter.Int64Counter("swap_quote_pool_fallbacks_total",
		metric.WithDescription("Pool quotes that fell back to the oracle model"))
	return e
}

// Quote estimates req. An empty or zero amount yields no quote and no error.
func (e *Estimator) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	ctx, span := e.tracer.Start(ctx, "swap.quote",
		trace.WithAttributes(
			attribute.String("amount", req.Amount),
			attribute.String("model", string(e.cfg.Model)),
		))
	defer span.End()

	amount, ok, err := validate(req)
	if err != nil || !ok {
		if err != nil {
			apm.NoticeError(span, err)
		}
		return nil, err
	}
	span.SetAttributes(
		attribute.String("in", req.In.Symbol()),
		attribute.String("out", req.Out.Symbol()),
	)

	var q *domain.Quote
	if e.cfg.Model == domain.ModelPool && e.reserves != nil {
		q, err = e.poolQuote(ctx, req, amount)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.metrics.poolFallbacks.Add(ctx, 1)
			e.log.Warn(ctx, "pool quote unavailable, using oracle prices",
				"in", req.In.Symbol(), "out", req.Out.Symbol(), "error", err)
			q = nil
		}
	}
	if q == nil {
		q, err = e.oracleQuote(ctx, req, amount)
		if err != nil {
			apm.NoticeError(span, err)
			return nil, err
		}
	}

	e.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("model", string(q.Model))))
	return q, nil
}

// validate parses the amount. ok=false with a nil error means there is
// nothing to quote yet.
func validate(req domain.QuoteRequest) (decimal.Decimal, bool, error) {
	raw := strings.TrimSpace(req.Amount)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext(raw))
	}
	if amount.IsZero() {
		return decimal.Zero, false, nil
	}
	if req.In == nil || req.Out == nil {
		return decimal.Zero, false, apperror.New(apperror.CodeTokenNotFound)
	}
	if req.In.Equals(req.Out) {
		return decimal.Zero, false, apperror.New(apperror.CodeSameToken,
			apperror.WithContext(req.In.Symbol()))
	}
	if req.SlippagePct.IsNegative() || req.SlippagePct.GreaterThan(hundred) {
		return decimal.Zero, false, apperror.New(apperror.CodeInvalidSlippage,
			apperror.WithContext(req.SlippagePct.String()))
	}
	return amount, true, nil
}

func (e *Estimator) oracleQuote(ctx context.Context, req domain.QuoteRequest, amount decimal.Decimal) (*domain.Quote, error) {
	var priceIn, priceOut decimal.Decimal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		priceIn, err = e.prices.GetPrice(gctx, req.In.Symbol())
		return err
	})
	g.Go(func() (err error) {
		priceOut, err = e.prices.GetPrice(gctx, req.Out.Symbol())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !priceOut.IsPositive() {
		return nil, apperror.New(apperror.CodePriceUnavailable, apperror.WithContext(req.Out.Symbol()))
	}

	rate := priceIn.DivRound(priceOut, 18)
	output := amount.Mul(rate).Mul(e.feeFactor())
	impact := decimal.Min(amount.Mul(impactFactor), impactCap)

	return e.build(req, domain.ModelOracle, amount, output, impact, rate), nil
}

// poolQuote applies the constant-product formula on base units.
func (e *Estimator) poolQuote(ctx context.Context, req domain.QuoteRequest, amount decimal.Decimal) (*domain.Quote, error) {
	reserves, err := e.reserves.Reserves(ctx, req.In, req.Out)
	if err != nil {
		return nil, err
	}
	if reserves.Empty() {
		return nil, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(req.In.Symbol()+"/"+req.Out.Symbol()))
	}

	in, err := asset.ParseDecimalTruncated(req.In, amount)
	if err != nil || in.IsZero() {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithCause(err),
			apperror.WithContext("below token precision"))
	}

	rawOut := PoolOutput(in.Raw(), reserves.A, reserves.B, e.cfg.FeeRateBps)
	output := asset.NewAmount(req.Out, rawOut).ToDecimal()
	impact := PoolImpact(in.Raw(), rawOut, reserves.A, reserves.B)
	rate := output.DivRound(amount, 18)

	return e.build(req, domain.ModelPool, amount, output, impact, rate), nil
}

func (e *Estimator) build(req domain.QuoteRequest, model domain.Model, amount, output, impact, rate decimal.Decimal) *domain.Quote {
	fee := amount.Mul(decimal.NewFromInt(e.cfg.FeeRateBps)).Div(decimal.NewFromInt(bpsDenominator))
	minimum := MinimumReceived(output, req.SlippagePct)

	return &domain.Quote{
		In:              req.In,
		Out:             req.Out,
		AmountIn:        amount.String(),
		InputAmount:     domain.Fixed6(amount),
		OutputAmount:    domain.Fixed6(output),
		PriceImpact:     domain.Fixed6(impact),
		MinimumReceived: domain.Fixed6(minimum),
		Fee:             domain.Fixed6(fee),
		Route:           []string{req.In.Symbol(), req.Out.Symbol()},
		ExchangeRate:    domain.Fixed6(rate),
		SlippagePct:     req.SlippagePct.String(),
		Model:           model,
		QuotedAt:        e.now(),
	}
}

func (e *Estimator) feeFactor() decimal.Decimal {
	return decimal.NewFromInt(bpsDenominator - e.cfg.FeeRateBps).Div(decimal.NewFromInt(bpsDenominator))
}

// MinimumReceived is round6(output) × (1 − slippage/100).
func MinimumReceived(output, slippagePct decimal.Decimal) decimal.Decimal {
	return domain.Round6(output).Mul(decimal.NewFromInt(1).Sub(slippagePct.Div(hundred)))
}

// PoolOutput returns reserveOut × in × (10000−fee) / (reserveIn × 10000 + in × (10000−fee)).
func PoolOutput(in, reserveIn, reserveOut *big.Int, feeBps int64) *big.Int {
	inWithFee := new(big.Int).Mul(in, big.NewInt(bpsDenominator-feeBps))
	num := new(big.Int).Mul(reserveOut, inWithFee)
	den := new(big.Int).Mul(reserveIn, big.NewInt(bpsDenominator))
	den.Add(den, inWithFee)
	if den.Sign() == 0 {
		return new(big.Int)
	}
	return num.Quo(num, den)
}

// PoolImpact returns 1 − (out/in)/(reserveOut/reserveIn) as a percent.
func PoolImpact(in, out, reserveIn, reserveOut *big.Int) decimal.Decimal {
	spot := decimal.NewFromBigInt(in, 0).Mul(decimal.NewFromBigInt(reserveOut, 0))
	if spot.IsZero() {
		return decimal.Zero
	}
	exec := decimal.NewFromBigInt(out, 0).Mul(decimal.NewFromBigInt(reserveIn, 0))
	return decimal.NewFromInt(1).Sub(exec.DivRound(spot, 18)).Mul(hundred)
}

// Ensure Estimator implements Quoter.
var _ Quoter = (*Estimator)(nil)
