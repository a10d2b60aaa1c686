// Package aptos implements the Node port over the Aptos full node REST API.
package aptos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/circuitbreaker"
	"github.com/fd1az/aptos-dex/internal/httpclient"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const (
	tracerName = "github.com/fd1az/aptos-dex/business/chain/infra/aptos"
	meterName  = "github.com/fd1az/aptos-dex/business/chain/infra/aptos"

	coinBalanceFn = "0x1::coin::balance"
)

var notFoundCodes = map[string]bool{
	"resource_not_found":    true,
	"account_not_found":     true,
	"transaction_not_found": true,
	"table_item_not_found":  true,
	"module_not_found":      true,
}

// Config configures the node client.
type Config struct {
	NodeURL      string
	FallbackURL  string
	Timeout      time.Duration
	PollInterval time.Duration
	HTTPClient   *http.Client // optional, tests
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(nodeURL string) Config {
	return Config{
		NodeURL:      nodeURL,
		Timeout:      10 * time.Second,
		PollInterval: 500 * time.Millisecond,
	}
}

// statusError is a non-2xx node response.
type statusError struct {
	status int
	api    domain.APIError
}

func (e *statusError) Error() string {
	if e.api.Message != "" {
		return fmt.Sprintf("node returned %d: %s", e.status, e.api.Message)
	}
	return fmt.Sprintf("node returned %d", e.status)
}

type clientMetrics struct {
	requests metric.Int64Counter
}

// Client talks to an Aptos full node.
type Client struct {
	cfg      Config
	primary  httpclient.Client
	fallback httpclient.Client
	cb       *circuitbreaker.CircuitBreaker[struct{}]
	log      logger.LoggerInterface
	tracer   trace.Tracer
	metrics  *clientMetrics
}

// New creates a node client.
func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	primary, err := newHTTPClient(cfg, cfg.NodeURL, "aptos-node")
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		primary: primary,
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}

	if cfg.FallbackURL != "" {
		if c.fallback, err = newHTTPClient(cfg, cfg.FallbackURL, "aptos-node-fallback"); err != nil {
			return nil, err
		}
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	c.initCircuitBreaker()

	return c, nil
}

func newHTTPClient(cfg Config, baseURL, name string) (*httpclient.InstrumentedClient, error) {
	opts := []httpclient.ClientOption{
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName(name),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	return httpclient.NewInstrumentedClient(opts...)
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}
	c.metrics.requests, err = meter.Int64Counter(
		"aptos_node_requests_total",
		metric.WithDescription("Aptos node API calls"),
		metric.WithUnit("{request}"),
	)
	return err
}

func (c *Client) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("aptos-node")
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	// Client errors (4xx) mean the node is healthy.
	cfg.IsSuccessful = func(err error) bool {
		var se *statusError
		if errors.As(err, &se) {
			return se.status < http.StatusInternalServerError
		}
		return err == nil
	}
	c.cb = circuitbreaker.New[struct{}](cfg)
}

// call runs one API request through the breaker, retrying once on the
// fallback node when the primary is unreachable.
func (c *Client) call(ctx context.Context, op string, do func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error)) error {
	ctx, span := c.tracer.Start(ctx, "aptos."+op)
	defer span.End()

	_, err := c.cb.Execute(func() (struct{}, error) {
		_, err := do(ctx, c.newRequest(c.primary))
		if err != nil && c.fallback != nil && httpclient.IsTransportError(err) {
			c.log.Warn(ctx, "primary node unreachable, using fallback", "op", op, "error", err)
			span.AddEvent("fallback_node")
			_, err = do(ctx, c.newRequest(c.fallback))
		}
		return struct{}{}, err
	})

	c.metrics.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", err == nil),
	))

	if err != nil {
		apm.NoticeError(span, err)
		return c.mapError(op, err)
	}
	return nil
}

func (c *Client) newRequest(hc httpclient.Client) httpclient.Request {
	return hc.NewRequest(httpclient.WithResponseErrorHandler(func(status int, body []byte) error {
		if status < http.StatusBadRequest {
			return nil
		}
		se := &statusError{status: status}
		_ = json.Unmarshal(body, &se.api)
		return se
	}))
}

func (c *Client) mapError(op string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}

	var se *statusError
	if errors.As(err, &se) {
		if se.status == http.StatusNotFound && (notFoundCodes[se.api.ErrorCode] || se.api.ErrorCode == "") {
			return apperror.New(apperror.CodeResourceNotFound,
				apperror.WithCause(err),
				apperror.WithContext(op))
		}

		kind := apperror.KindUnknown
		switch {
		case strings.Contains(se.api.Message, "INSUFFICIENT_BALANCE"):
			kind = apperror.KindInsufficientBalance
		case se.status >= http.StatusInternalServerError:
			kind = apperror.KindNetworkFailure
		}
		return apperror.New(apperror.CodeNodeRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(op),
			apperror.WithKind(kind))
	}

	kind := apperror.KindUnknown
	if httpclient.IsTransportError(err) {
		kind = apperror.KindNetworkFailure
	}
	return apperror.New(apperror.CodeNodeRequestFailed,
		apperror.WithCause(err),
		apperror.WithContext(op),
		apperror.WithKind(kind))
}

// LedgerInfo returns chain id and ledger version.
func (c *Client) LedgerInfo(ctx context.Context) (*domain.LedgerInfo, error) {
	var out domain.LedgerInfo
	err := c.call(ctx, "ledger_info", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&out).Get(ctx, "/")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Account returns the sequence number and auth key.
func (c *Client) Account(ctx context.Context, address string) (*domain.AccountInfo, error) {
	var out domain.AccountInfo
	err := c.call(ctx, "account", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&out).Get(ctx, "/accounts/"+address)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CoinBalance reads the APT CoinStore directly and uses the coin::balance
// view for everything else. APT migrated to fungible assets has no
// CoinStore, so a missing store falls back to the view.
func (c *Client) CoinBalance(ctx context.Context, address string, coinType asset.CoinType) (*big.Int, error) {
	if coinType.IsNative() {
		bal, err := c.coinStoreBalance(ctx, address, coinType)
		if err == nil || !app.IsNotFound(err) {
			return bal, err
		}
	}
	return c.viewBalance(ctx, address, coinType)
}

func (c *Client) coinStoreBalance(ctx context.Context, address string, coinType asset.CoinType) (*big.Int, error) {
	resourceType := fmt.Sprintf("0x1::coin::CoinStore<%s>", coinType)

	var out domain.CoinStoreResource
	err := c.call(ctx, "coin_store", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&out).Get(ctx, "/accounts/"+address+"/resource/"+url.PathEscape(resourceType))
	})
	if err != nil {
		return nil, err
	}
	return parseBigInt(out.Data.Coin.Value)
}

func (c *Client) viewBalance(ctx context.Context, address string, coinType asset.CoinType) (*big.Int, error) {
	res, err := c.View(ctx, domain.ViewRequest{
		Function:      coinBalanceFn,
		TypeArguments: []string{coinType.String()},
		Arguments:     []any{address},
	})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, apperror.New(apperror.CodeNodeRequestFailed, apperror.WithContext("empty coin::balance result"))
	}
	return parseBigIntJSON(res[0])
}

// AccountTransactions lists the latest transactions sent by address.
func (c *Client) AccountTransactions(ctx context.Context, address string, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := c.call(ctx, "account_transactions", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetQueryParam("limit", strconv.Itoa(limit)).SetResult(&out).Get(ctx, "/accounts/"+address+"/transactions")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// View calls a Move view function.
func (c *Client) View(ctx context.Context, req domain.ViewRequest) ([]json.RawMessage, error) {
	if req.TypeArguments == nil {
		req.TypeArguments = []string{}
	}
	if req.Arguments == nil {
		req.Arguments = []any{}
	}

	var out []json.RawMessage
	err := c.call(ctx, "view", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(req).SetResult(&out).Post(ctx, "/view")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeSubmission returns the BCS signing message for txn.
func (c *Client) EncodeSubmission(ctx context.Context, txn domain.RawTransaction) ([]byte, error) {
	var out string
	err := c.call(ctx, "encode_submission", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(txn).SetResult(&out).Post(ctx, "/transactions/encode_submission")
	})
	if err != nil {
		return nil, err
	}

	msg, err := hexutil.Decode(out)
	if err != nil {
		return nil, apperror.New(apperror.CodeNodeRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext("encode_submission returned invalid hex"))
	}
	return msg, nil
}

// SubmitTransaction posts a signed transaction and returns the pending entry.
func (c *Client) SubmitTransaction(ctx context.Context, txn domain.SignedTransaction) (*domain.Transaction, error) {
	var out domain.Transaction
	err := c.call(ctx, "submit_transaction", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetBody(txn).SetResult(&out).Post(ctx, "/transactions")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TransactionByHash fetches a single transaction.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	var out domain.Transaction
	err := c.call(ctx, "transaction_by_hash", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&out).Get(ctx, "/transactions/by_hash/"+hash)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForTransaction polls until hash leaves the pending state. Not-found
// answers are retried since a fresh submission may not have propagated.
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (*domain.Transaction, error) {
	ctx, span := c.tracer.Start(ctx, "aptos.wait_for_transaction",
		trace.WithAttributes(attribute.String("hash", hash)))
	defer span.End()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		tx, err := c.TransactionByHash(ctx, hash)
		switch {
		case err == nil && !tx.IsPending():
			span.SetAttributes(attribute.Bool("success", tx.Success))
			return tx, nil
		case err != nil && ctx.Err() != nil:
			return nil, c.confirmTimeout(span, ctx, hash)
		case err != nil && !app.IsNotFound(err):
			apm.NoticeError(span, err)
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, c.confirmTimeout(span, ctx, hash)
		case <-ticker.C:
		}
	}
}

func (c *Client) confirmTimeout(span trace.Span, ctx context.Context, hash string) error {
	err := apperror.New(apperror.CodeTxConfirmTimeout,
		apperror.WithCause(ctx.Err()),
		apperror.WithContext(hash))
	apm.NoticeError(span, err)
	return err
}

// EstimateGasPrice returns the suggested gas unit price.
func (c *Client) EstimateGasPrice(ctx context.Context) (uint64, error) {
	var out domain.GasEstimate
	err := c.call(ctx, "estimate_gas_price", func(ctx context.Context, r httpclient.Request) (*httpclient.Response, error) {
		return r.SetResult(&out).Get(ctx, "/estimate_gas_price")
	})
	if err != nil {
		return 0, err
	}
	return out.GasEstimate, nil
}

func parseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.Cmp(maxU64) > 0 {
		return nil, apperror.New(apperror.CodeNodeRequestFailed,
			apperror.WithContext(fmt.Sprintf("invalid u64 %q", s)))
	}
	return v, nil
}

var maxU64 = new(big.Int).SetUint64(math.MaxUint64)

func parseBigIntJSON(raw json.RawMessage) (*big.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseBigInt(s)
	}
	return parseBigInt(strings.TrimSpace(string(raw)))
}

// Ensure Client implements app.Node.
var _ app.Node = (*Client)(nil)
