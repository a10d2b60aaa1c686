// Package coingecko implements the PriceFeed port over the CoinGecko simple price API.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aptos-dex/business/pricing/app"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/httpclient"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/ratelimit"
)

const (
	// BaseAPIURL is the public API.
	BaseAPIURL = "https://api.coingecko.com/api/v3"

	tracerName    = "github.com/fd1az/aptos-dex/business/pricing/infra/coingecko"
	priceEndpoint = "/simple/price"
	apiKeyHeader  = "x-cg-demo-api-key"
)

// Config holds configuration for the CoinGecko client.
type Config struct {
	BaseURL           string
	Currency          string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client // optional, tests
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           BaseAPIURL,
		Currency:          "usd",
		Timeout:           10 * time.Second,
		RequestsPerMinute: 30,
	}
}

// Client fetches prices from CoinGecko.
type Client struct {
	client   httpclient.Client
	currency string
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// New creates a CoinGecko client.
func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("coingecko"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithLimiter(ratelimit.New(cfg.RequestsPerMinute)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeaders(map[string]string{apiKeyHeader: cfg.APIKey}))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:   client,
		currency: strings.ToLower(cfg.Currency),
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// FetchUSD implements app.PriceFeed. The response shape is {id: {usd: number}}.
func (c *Client) FetchUSD(ctx context.Context, feedIDs []string) (map[string]decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "coingecko.simple_price",
		trace.WithAttributes(attribute.StringSlice("ids", feedIDs)))
	defer span.End()

	var body map[string]map[string]decimal.Decimal
	_, err := c.client.NewRequest(httpclient.WithResponseErrorHandler(handleStatus)).
		SetQueryParam("ids", strings.Join(feedIDs, ",")).
		SetQueryParam("vs_currencies", c.currency).
		SetResult(&body).
		Get(ctx, priceEndpoint)
	if err != nil {
		apm.NoticeError(span, err)
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodePriceFeedError, apperror.WithCause(err))
	}

	prices := make(map[string]decimal.Decimal, len(body))
	for id, quotes := range body {
		if p, ok := quotes[c.currency]; ok {
			prices[id] = p
		}
	}

	c.logger.Debug(ctx, "fetched prices", "requested", len(feedIDs), "received", len(prices))
	return prices, nil
}

func handleStatus(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithContext("coingecko"))
	case status >= http.StatusBadRequest:
		return apperror.New(apperror.CodePriceFeedError,
			apperror.WithContext("status "+strconv.Itoa(status)+": "+string(body)))
	}
	return nil
}

// Ensure Client implements app.PriceFeed.
var _ app.PriceFeed = (*Client)(nil)
