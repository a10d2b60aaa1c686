package asset

// Publisher addresses of bridged coins on Aptos mainnet.
const (
	AddrLayerZero   = "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa"
	AddrWormholeETH = "0xcc8a89c8dce9693d354449f1f73e60e14e347417854f029db5bc8e7454008abb"
	AddrWormholeBTC = "0xae478ff7d83ed072dbc5e264250e67ef58f57c99d89b447efd8a0a2e8b2be76e"
)

// FeedIDs maps token symbols to CoinGecko ids.
var FeedIDs = map[string]string{
	"APT":   "aptos",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"WETH":  "weth",
	"WBTC":  "wrapped-bitcoin",
	"BNB":   "binancecoin",
	"CAKE":  "pancakeswap-token",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"XRP":   "ripple",
	"TRX":   "tron",
}

// Well-known tokens (pre-created instances)
var (
	APT = NewToken(AptosCoinType, "APT", "Aptos Coin", 8,
		WithLogo("https://cryptologos.cc/logos/aptos-apt-logo.png"), Verified())
	USDC = NewToken(MustParseCoinType(AddrLayerZero+"::asset::USDC"), "USDC", "USD Coin", 6,
		WithLogo("https://cryptologos.cc/logos/usd-coin-usdc-logo.png"))
	USDT = NewToken(MustParseCoinType(AddrLayerZero+"::asset::USDT"), "USDT", "Tether USD", 6,
		WithLogo("https://cryptologos.cc/logos/tether-usdt-logo.png"))
	WETH = NewToken(MustParseCoinType(AddrWormholeETH+"::coin::T"), "WETH", "Wrapped Ether", 8,
		WithLogo("https://cryptologos.cc/logos/ethereum-eth-logo.png"))
	WBTC = NewToken(MustParseCoinType(AddrWormholeBTC+"::coin::T"), "WBTC", "Wrapped Bitcoin", 8,
		WithLogo("https://cryptologos.cc/logos/wrapped-bitcoin-wbtc-logo.png"))
)

// DefaultRegistry returns a registry pre-populated with the listed tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(APT)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(WETH)
	r.Register(WBTC)
	return r
}
