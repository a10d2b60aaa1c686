// Package api exposes tokens, prices, quotes, balances and swaps over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	accountdomain "github.com/fd1az/aptos-dex/business/account/domain"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// PriceService resolves USD prices.
type PriceService interface {
	GetPrices(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error)
}

// QuoteService quotes swaps.
type QuoteService interface {
	Quote(ctx context.Context, req swapdomain.QuoteRequest) (*swapdomain.Quote, error)
}

// BalanceService reads balances of any address.
type BalanceService interface {
	FetchAll(ctx context.Context, address string) (accountdomain.Snapshot, error)
}

// HistoryService lists DEX transactions of an address.
type HistoryService interface {
	Recent(ctx context.Context, address string) ([]accountdomain.TxRecord, error)
}

// SwapService submits swaps through the configured wallet.
type SwapService interface {
	Swap(ctx context.Context, req swapdomain.SwapRequest) (*swapdomain.Outcome, error)
}

// ReserveService reads pool reserves.
type ReserveService interface {
	Reserves(ctx context.Context, a, b *asset.Token) (swapdomain.Reserves, error)
}

// Deps are the services behind the routes. Nil services answer 503.
type Deps struct {
	Registry        *asset.Registry
	Prices          PriceService
	Quotes          QuoteService
	Balances        BalanceService
	History         HistoryService
	Swaps           SwapService
	Reserves        ReserveService
	Notifications   *notify.Channel
	DefaultSlippage decimal.Decimal
	Network         string
}

// Server holds the route handlers.
type Server struct {
	deps Deps
	log  logger.LoggerInterface
}

// NewRouter builds the gin engine with every /api/v1 route.
func NewRouter(deps Deps, log logger.LoggerInterface) *gin.Engine {
	s := &Server{deps: deps, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	v1 := r.Group("/api/v1")
	v1.GET("/tokens", s.listTokens)
	v1.GET("/prices", s.getPrices)
	v1.POST("/quote", s.postQuote)
	v1.GET("/accounts/:address/balances", s.getBalances)
	v1.GET("/accounts/:address/history", s.getHistory)
	v1.POST("/swap", s.postSwap)
	v1.GET("/liquidity/:a/:b", s.getLiquidity)
	v1.GET("/notifications", s.streamNotifications)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// writeError renders err with its AppError status and body.
func (s *Server) writeError(c *gin.Context, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, c.FullPath())
	if traceID := apm.TraceID(c.Request.Context()); traceID != "" && appErr.TraceID == "" {
		appErr.WithTraceID(traceID)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		s.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
}

func unavailable(what string) error {
	return apperror.New(apperror.CodeServiceUnavailable, apperror.WithContext(what+" is not configured"))
}
