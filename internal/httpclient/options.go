// Package httpclient provides an instrumented HTTP client with OTEL tracing and metrics.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type clientOptions struct {
	client         *http.Client
	meterProvider  metric.MeterProvider
	providerName   string
	roundTripper   http.RoundTripper
	requestTimeout time.Duration
	headers        map[string]string
	baseURL        string
	limiter        Waiter
	logResponse    bool
	tracer         trace.Tracer
}

// ClientOption configures the instrumented HTTP client.
type ClientOption func(*clientOptions)

func newClientOptions(opts ...ClientOption) *clientOptions {
	options := &clientOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// WithHTTPClient uses an existing http.Client (e.g. httptest.Server.Client()).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.client = c
	}
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *clientOptions) {
		o.meterProvider = mp
	}
}

// WithProviderName sets the provider name for metrics and traces.
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) {
		o.providerName = name
	}
}

// WithRoundTripper sets a custom HTTP transport.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.roundTripper = rt
	}
}

// WithRequestTimeout sets the request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.requestTimeout = timeout
	}
}

// WithHeaders sets default headers for all requests.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) {
		o.headers = headers
	}
}

// WithBaseURL sets the base URL for all requests.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithLimiter throttles every request through w.
func WithLimiter(w Waiter) ClientOption {
	return func(o *clientOptions) {
		o.limiter = w
	}
}

// WithTracer sets the tracer. logResponse adds response bodies to spans.
func WithTracer(tracer trace.Tracer, logResponse bool) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		o.logResponse = logResponse
	}
}

type requestOptions struct {
	responseErrorHandler ResponseErrorHandler
	labels               []Label
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

func newRequestOptions(opts ...RequestOption) *requestOptions {
	options := &requestOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// ResponseErrorHandler decides whether a response is an error.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler sets a custom error handler for responses.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *requestOptions) {
		o.responseErrorHandler = handler
	}
}

// Label is a key-value pair for metrics.
type Label struct {
	Key   string
	Value string
}

// WithLabels sets metric labels for the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *requestOptions) {
		o.labels = labels
	}
}
