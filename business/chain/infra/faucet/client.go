// Package faucet funds accounts through the Aptos faucet service.
package faucet

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/httpclient"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const tracerName = "github.com/fd1az/aptos-dex/business/chain/infra/faucet"

// DefaultAmount is one APT in octas.
const DefaultAmount uint64 = 100_000_000

// Client calls POST /mint on the faucet.
type Client struct {
	http   httpclient.Client
	log    logger.LoggerInterface
	tracer trace.Tracer
}

// New creates a faucet client. httpClient may be nil.
func New(baseURL string, httpClient *http.Client, log logger.LoggerInterface) (*Client, error) {
	opts := []httpclient.ClientOption{
		httpclient.WithBaseURL(baseURL),
		httpclient.WithProviderName("aptos-faucet"),
	}
	if httpClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(httpClient))
	}
	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, log: log, tracer: otel.Tracer(tracerName)}, nil
}

// Fund mints amount octas to address and returns the funding transaction hashes.
func (c *Client) Fund(ctx context.Context, address string, amount uint64) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "faucet.fund", trace.WithAttributes(
		attribute.String("address", address),
		attribute.Int64("amount", int64(amount)),
	))
	defer span.End()

	if amount == 0 {
		amount = DefaultAmount
	}

	var hashes []string
	_, err := c.http.NewRequest(httpclient.WithResponseErrorHandler(func(status int, body []byte) error {
		if status >= http.StatusBadRequest {
			return apperror.New(apperror.CodeFaucetError,
				apperror.WithContext("status "+strconv.Itoa(status)+": "+string(body)))
		}
		return nil
	})).
		SetQueryParam("amount", strconv.FormatUint(amount, 10)).
		SetQueryParam("address", address).
		SetResult(&hashes).
		Post(ctx, "/mint")
	if err != nil {
		apm.NoticeError(span, err)
		if apperror.IsAppError(err) {
			return nil, err
		}
		kind := apperror.KindUnknown
		if httpclient.IsTransportError(err) {
			kind = apperror.KindNetworkFailure
		}
		return nil, apperror.New(apperror.CodeFaucetError, apperror.WithCause(err), apperror.WithKind(kind))
	}

	c.log.Info(ctx, "faucet funded account", "address", address, "amount", amount, "txns", len(hashes))
	return hashes, nil
}

// Ensure Client implements app.Faucet.
var _ app.Faucet = (*Client)(nil)
