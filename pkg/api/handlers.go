package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

type tokenResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	CoinType string `json:"coinType"`
	Decimals uint8  `json:"decimals"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Verified bool   `json:"verified"`
}

func toTokenResponse(t *asset.Token) tokenResponse {
	return tokenResponse{
		Symbol:   t.Symbol(),
		Name:     t.Name(),
		CoinType: t.CoinType().String(),
		Decimals: t.Decimals(),
		LogoURL:  t.LogoURL(),
		Verified: t.IsVerified(),
	}
}

func (s *Server) listTokens(c *gin.Context) {
	tokens := s.deps.Registry.All()
	out := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = toTokenResponse(t)
	}
	c.JSON(http.StatusOK, gin.H{"network": s.deps.Network, "tokens": out})
}

func (s *Server) getPrices(c *gin.Context) {
	if s.deps.Prices == nil {
		s.writeError(c, unavailable("price oracle"))
		return
	}

	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		symbols = s.deps.Registry.Symbols()
	}

	prices, err := s.deps.Prices.GetPrices(c.Request.Context(), symbols...)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": "usd", "prices": prices})
}

type quoteRequest struct {
	From     string           `json:"from" binding:"required"`
	To       string           `json:"to" binding:"required"`
	Amount   string           `json:"amount"`
	Slippage *decimal.Decimal `json:"slippage"`
}

func (s *Server) postQuote(c *gin.Context) {
	if s.deps.Quotes == nil {
		s.writeError(c, unavailable("quote estimator"))
		return
	}

	var body quoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, invalidBody(err))
		return
	}
	req, err := s.quoteRequest(body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	q, err := s.deps.Quotes.Quote(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if q == nil {
		c.JSON(http.StatusOK, gin.H{"quote": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q})
}

func (s *Server) quoteRequest(body quoteRequest) (swapdomain.QuoteRequest, error) {
	in, err := s.token(body.From)
	if err != nil {
		return swapdomain.QuoteRequest{}, err
	}
	out, err := s.token(body.To)
	if err != nil {
		return swapdomain.QuoteRequest{}, err
	}
	slippage := s.deps.DefaultSlippage
	if body.Slippage != nil {
		slippage = *body.Slippage
	}
	return swapdomain.QuoteRequest{In: in, Out: out, Amount: body.Amount, SlippagePct: slippage}, nil
}

type balanceResponse struct {
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
	Raw     string `json:"raw"`
}

func (s *Server) getBalances(c *gin.Context) {
	if s.deps.Balances == nil {
		s.writeError(c, unavailable("balance reader"))
		return
	}

	address, err := asset.NormalizeAddress(c.Param("address"))
	if err != nil {
		s.writeError(c, apperror.Validation(apperror.CodeInvalidInput, "address"))
		return
	}

	snap, err := s.deps.Balances.FetchAll(c.Request.Context(), address)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]balanceResponse, len(snap.Balances))
	for i, b := range snap.Balances {
		out[i] = balanceResponse{Symbol: b.Token.Symbol(), Balance: b.Display, Raw: b.Amount.Raw().String()}
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "balances": out, "fetchedAt": snap.FetchedAt})
}

func (s *Server) getHistory(c *gin.Context) {
	if s.deps.History == nil {
		s.writeError(c, unavailable("history reader"))
		return
	}

	address, err := asset.NormalizeAddress(c.Param("address"))
	if err != nil {
		s.writeError(c, apperror.Validation(apperror.CodeInvalidInput, "address"))
		return
	}

	records, err := s.deps.History.Recent(c.Request.Context(), address)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "transactions": records})
}

type swapRequest struct {
	quoteRequest
	MinimumOut string `json:"minimumOut"`
}

// postSwap quotes first when no minimum is supplied, then submits with the
// server's configured wallet.
func (s *Server) postSwap(c *gin.Context) {
	if s.deps.Swaps == nil {
		s.writeError(c, unavailable("swap submitter"))
		return
	}

	var body swapRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, invalidBody(err))
		return
	}
	qreq, err := s.quoteRequest(body.quoteRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}

	req := swapdomain.SwapRequest{In: qreq.In, Out: qreq.Out, AmountIn: body.Amount, MinimumOut: body.MinimumOut}
	if req.MinimumOut == "" {
		if s.deps.Quotes == nil {
			s.writeError(c, apperror.Validation(apperror.CodeRequiredField, "minimumOut"))
			return
		}
		q, err := s.deps.Quotes.Quote(c.Request.Context(), qreq)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if q == nil {
			s.writeError(c, apperror.Validation(apperror.CodeInvalidAmount, body.Amount))
			return
		}
		req = swapdomain.SwapRequestFromQuote(q)
	}

	outcome, err := s.deps.Swaps.Swap(c.Request.Context(), req)
	if err != nil {
		if outcome != nil {
			appErr := apperror.Wrap(err, apperror.CodeTransactionFailed, "")
			c.JSON(appErr.StatusCode, gin.H{"outcome": outcome, "error": appErr.ToResponse()["error"]})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

func (s *Server) getLiquidity(c *gin.Context) {
	if s.deps.Reserves == nil {
		s.writeError(c, unavailable("pool reader"))
		return
	}

	a, err := s.token(c.Param("a"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	b, err := s.token(c.Param("b"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if a.Equals(b) {
		s.writeError(c, apperror.New(apperror.CodeSameToken, apperror.WithContext(a.Symbol())))
		return
	}

	r, err := s.deps.Reserves.Reserves(c.Request.Context(), a, b)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{
		"pair":     a.Symbol() + "/" + b.Symbol(),
		"reserveA": asset.NewAmount(a, r.A).FormatBalance(),
		"reserveB": asset.NewAmount(b, r.B).FormatBalance(),
		"empty":    r.Empty(),
	}
	if !r.Empty() {
		price := asset.NewAmount(b, r.B).ToDecimal().DivRound(asset.NewAmount(a, r.A).ToDecimal(), swapdomain.Places)
		resp["price"] = price.StringFixed(swapdomain.Places)
	}
	c.JSON(http.StatusOK, resp)
}

// streamNotifications relays notifications as server-sent events until the
// client goes away.
func (s *Server) streamNotifications(c *gin.Context) {
	if s.deps.Notifications == nil {
		s.writeError(c, unavailable("notification stream"))
		return
	}

	ch, cancel := s.deps.Notifications.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(n.Level), n)
			return true
		}
	})
}

func (s *Server) token(symbol string) (*asset.Token, error) {
	t, ok := s.deps.Registry.BySymbol(strings.ToUpper(strings.TrimSpace(symbol)))
	if !ok {
		return nil, apperror.New(apperror.CodeTokenNotFound, apperror.WithContext(symbol))
	}
	return t, nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func invalidBody(err error) error {
	return apperror.New(apperror.CodeInvalidInput,
		apperror.WithCause(err),
		apperror.WithContext("request body"),
		apperror.WithStatusCode(http.StatusBadRequest))
}
