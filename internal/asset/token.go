package asset

// Token is the reference data of a coin listed by the DEX.
// It is immutable; balances live in account snapshots.
type Token struct {
	coinType CoinType
	symbol   string
	name     string
	decimals uint8
	logoURL  string
	feedID   string
	verified bool
}

// TokenOption configures optional Token metadata.
type TokenOption func(*Token)

// WithLogo sets the logo URL.
func WithLogo(url string) TokenOption {
	return func(t *Token) { t.logoURL = url }
}

// WithFeedID sets the price-feed id.
func WithFeedID(id string) TokenOption {
	return func(t *Token) { t.feedID = id }
}

// Verified marks the token as verified on the current network.
func Verified() TokenOption {
	return func(t *Token) { t.verified = true }
}

// NewToken creates a new Token.
func NewToken(coinType CoinType, symbol, name string, decimals uint8, opts ...TokenOption) *Token {
	if coinType.IsZero() {
		panic("asset: empty coin type")
	}
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	t := &Token{
		coinType: coinType,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.feedID == "" {
		t.feedID = FeedIDs[symbol]
	}
	return t
}

// CoinType returns the on-chain identity.
func (t *Token) CoinType() CoinType { return t.coinType }

// Symbol returns the ticker symbol (e.g., "APT", "USDC").
func (t *Token) Symbol() string { return t.symbol }

// Name returns the human-readable name.
func (t *Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

// Decimals returns the number of decimal places.
func (t *Token) Decimals() uint8 { return t.decimals }

// LogoURL returns the logo reference.
func (t *Token) LogoURL() string { return t.logoURL }

// FeedID returns the price-feed id, empty if none is known.
func (t *Token) FeedID() string { return t.feedID }

// IsVerified reports whether the coin is known to exist on the network.
func (t *Token) IsVerified() bool { return t.verified }

// IsNative returns true for APT.
func (t *Token) IsNative() bool { return t.coinType.IsNative() }

// String returns the symbol.
func (t *Token) String() string { return t.symbol }

// Equals compares two tokens by coin type.
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.coinType.Equals(other.coinType)
}

// withVerified returns a copy with the verified flag set.
func (t *Token) withVerified(v bool) *Token {
	cp := *t
	cp.verified = v
	return &cp
}
