package metrics

import "strings"

type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otlp-grpc"
)

// NewOtelCollectorConfig configures an OTLP gRPC reader. headers is "key=value".
func NewOtelCollectorConfig(url, headers string, insecure bool) ProviderCfg {
	h := map[string]string{}
	if k, v, ok := strings.Cut(headers, "="); ok {
		h[k] = v
	}

	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  h,
		Insecure: insecure,
	}
}

type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithPrometheus() OptionFn {
	return WithProviderConfig(ProviderCfg{Provider: PrometheusProvider})
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

type PromServerConfig struct {
	port string
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
