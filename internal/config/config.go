// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Network   NetworkConfig   `mapstructure:"network"`
	Contract  ContractConfig  `mapstructure:"contract"`
	PriceFeed PriceFeedConfig `mapstructure:"price_feed"`
	Balances  BalancesConfig  `mapstructure:"balances"`
	Swap      SwapConfig      `mapstructure:"swap"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Events    EventsConfig    `mapstructure:"events"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// NetworkConfig holds Aptos network endpoints.
type NetworkConfig struct {
	Name            string        `mapstructure:"name"` // devnet, testnet, mainnet
	ChainID         uint8         `mapstructure:"chain_id"`
	NodeURL         string        `mapstructure:"node_url"`
	FallbackNodeURL string        `mapstructure:"fallback_node_url"`
	IndexerURL      string        `mapstructure:"indexer_url"`
	FaucetURL       string        `mapstructure:"faucet_url"`
	ExplorerURL     string        `mapstructure:"explorer_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// ContractConfig identifies the on-chain swap module.
type ContractConfig struct {
	Address         string  `mapstructure:"address"`
	Module          string  `mapstructure:"module"`
	SwapFunction    string  `mapstructure:"swap_function"`
	FeeRateBps      int64   `mapstructure:"fee_rate_bps"`
	DefaultSlippage float64 `mapstructure:"default_slippage"`
}

// FunctionID builds "<address>::<module>::<name>".
func (c ContractConfig) FunctionID(name string) string {
	return fmt.Sprintf("%s::%s::%s", c.Address, c.Module, name)
}

// DefaultSlippageDecimal returns the default slippage percent as a decimal.
func (c ContractConfig) DefaultSlippageDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultSlippage)
}

// PriceFeedConfig configures the USD price oracle.
type PriceFeedConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Currency          string        `mapstructure:"currency"`
	APIKey            string        `mapstructure:"api_key"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RedisAddr         string        `mapstructure:"redis_addr"` // empty = in-memory cache
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`
}

// BalancesConfig configures the balance refresher.
type BalancesConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	HistoryLimit int           `mapstructure:"history_limit"`
}

// SwapConfig configures quoting and submission.
type SwapConfig struct {
	QuoteModel     string        `mapstructure:"quote_model"` // oracle | pool
	QuoteDebounce  time.Duration `mapstructure:"quote_debounce"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	RefreshDelay   time.Duration `mapstructure:"refresh_delay"`
	MaxGasAmount   uint64        `mapstructure:"max_gas_amount"`
	TxExpiry       time.Duration `mapstructure:"tx_expiry"`
}

// WalletConfig selects and configures the wallet adapter.
type WalletConfig struct {
	Kind       string `mapstructure:"kind"` // none | local | bridge
	PrivateKey string `mapstructure:"private_key"`
	BridgeURL  string `mapstructure:"bridge_url"`
}

// EventsConfig configures the optional Kafka event publisher.
type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether events should be published.
func (c EventsConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin | console | otlp-grpc | otlp-http
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"` // key=value
	MetricsBackend string `mapstructure:"metrics_backend"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// An exported empty value overrides, so DEX_CONTRACT_ADDRESS="" selects
	// the no-contract fallback.
	v.AllowEmptyEnv(true)

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "DEX_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "DEX_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "DEX_LOG_LEVEL", "LOG_LEVEL")

	// Network
	v.BindEnv("network.name", "DEX_NETWORK", "APTOS_NETWORK")
	v.BindEnv("network.node_url", "DEX_NODE_URL", "APTOS_NODE_URL")
	v.BindEnv("network.fallback_node_url", "DEX_FALLBACK_NODE_URL", "APTOS_FALLBACK_NODE_URL")
	v.BindEnv("network.faucet_url", "DEX_FAUCET_URL", "APTOS_FAUCET_URL")

	// Contract
	v.BindEnv("contract.address", "DEX_CONTRACT_ADDRESS", "CONTRACT_ADDRESS")

	// Price feed
	v.BindEnv("price_feed.api_key", "DEX_PRICE_FEED_API_KEY", "COINGECKO_API_KEY")
	v.BindEnv("price_feed.redis_addr", "DEX_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("price_feed.redis_password", "DEX_REDIS_PASSWORD", "REDIS_PASSWORD")

	// Wallet
	v.BindEnv("wallet.kind", "DEX_WALLET", "WALLET_KIND")
	v.BindEnv("wallet.private_key", "DEX_PRIVATE_KEY", "APTOS_PRIVATE_KEY")
	v.BindEnv("wallet.bridge_url", "DEX_WALLET_BRIDGE_URL", "WALLET_BRIDGE_URL")

	// Events
	v.BindEnv("events.brokers", "DEX_KAFKA_BROKERS", "KAFKA_BROKERS")
	v.BindEnv("events.topic", "DEX_KAFKA_TOPIC", "KAFKA_TOPIC")

	// Telemetry
	v.BindEnv("telemetry.enabled", "DEX_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "DEX_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "DEX_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "DEX_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "aptos-dex")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Aptos devnet defaults
	v.SetDefault("network.name", "devnet")
	v.SetDefault("network.chain_id", 0) // devnet chain id changes on reset; 0 skips the check
	v.SetDefault("network.node_url", "https://fullnode.devnet.aptoslabs.com/v1")
	v.SetDefault("network.indexer_url", "https://indexer-devnet.staging.gcp.aptosdev.com/v1/graphql")
	v.SetDefault("network.faucet_url", "https://faucet.devnet.aptoslabs.com")
	v.SetDefault("network.explorer_url", "https://explorer.aptoslabs.com")
	v.SetDefault("network.request_timeout", "10s")

	// Contract defaults (0.3% fee, 0.5% slippage)
	v.SetDefault("contract.address", "0x3645e4adcc4bc90328f4f399b65c46583ab9252feb0dba983b8cafa226c47aec")
	v.SetDefault("contract.module", "swap")
	v.SetDefault("contract.swap_function", "swap_x_to_y")
	v.SetDefault("contract.fee_rate_bps", 30)
	v.SetDefault("contract.default_slippage", 0.5)

	// Price feed defaults
	v.SetDefault("price_feed.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("price_feed.currency", "usd")
	v.SetDefault("price_feed.cache_ttl", "60s")
	v.SetDefault("price_feed.max_attempts", 3)
	v.SetDefault("price_feed.retry_delay", "1s")
	v.SetDefault("price_feed.requests_per_minute", 30)

	// Balances
	v.SetDefault("balances.poll_interval", "10s")
	v.SetDefault("balances.history_limit", 20)

	// Swap
	v.SetDefault("swap.quote_model", "oracle")
	v.SetDefault("swap.quote_debounce", "500ms")
	v.SetDefault("swap.confirm_timeout", "15s")
	v.SetDefault("swap.refresh_delay", "2s")
	v.SetDefault("swap.max_gas_amount", 20000)
	v.SetDefault("swap.tx_expiry", "60s")

	// Wallet
	v.SetDefault("wallet.kind", "none")

	// Events
	v.SetDefault("events.topic", "dex-transactions")

	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "aptos-dex")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.metrics_backend", "prometheus")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Network.NodeURL == "" {
		return fmt.Errorf("network.node_url is required")
	}
	if c.Contract.Address != "" && !strings.HasPrefix(c.Contract.Address, "0x") {
		return fmt.Errorf("invalid contract.address: %s", c.Contract.Address)
	}
	if c.Contract.FeeRateBps < 0 || c.Contract.FeeRateBps >= 10000 {
		return fmt.Errorf("contract.fee_rate_bps must be in [0, 10000): %d", c.Contract.FeeRateBps)
	}
	if c.Contract.DefaultSlippage < 0 || c.Contract.DefaultSlippage > 100 {
		return fmt.Errorf("contract.default_slippage must be in [0, 100]: %v", c.Contract.DefaultSlippage)
	}
	if c.PriceFeed.MaxAttempts < 1 {
		return fmt.Errorf("price_feed.max_attempts must be at least 1")
	}
	switch c.Swap.QuoteModel {
	case "oracle", "pool":
	default:
		return fmt.Errorf("swap.quote_model must be oracle or pool: %s", c.Swap.QuoteModel)
	}
	switch c.Wallet.Kind {
	case "none", "":
	case "local":
		if c.Wallet.PrivateKey == "" {
			return fmt.Errorf("wallet.private_key is required for the local wallet")
		}
	case "bridge":
		if c.Wallet.BridgeURL == "" {
			return fmt.Errorf("wallet.bridge_url is required for the bridge wallet")
		}
	default:
		return fmt.Errorf("unknown wallet.kind: %s", c.Wallet.Kind)
	}
	return nil
}
