package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fd1az/aptos-dex/business/account"
	"github.com/fd1az/aptos-dex/business/chain"
	"github.com/fd1az/aptos-dex/business/pricing"
	"github.com/fd1az/aptos-dex/business/swap"
	"github.com/fd1az/aptos-dex/business/wallet"
	walletDI "github.com/fd1az/aptos-dex/business/wallet/di"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apm"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/metrics"
	"github.com/fd1az/aptos-dex/internal/monolith"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// bootOptions controls how a command wires the application.
type bootOptions struct {
	// logOutput receives structured logs. Nil means stderr when verbose,
	// otherwise discard.
	logOutput io.Writer
	// console prints notifications to stdout.
	console bool
	// serveMetrics starts the Prometheus endpoint when telemetry is on.
	serveMetrics bool
}

// application is the wired monolith plus the process-level resources.
type application struct {
	cfg           *config.Config
	log           *logger.Logger
	mono          *monolith.App
	notifications *notify.Channel
	traceProvider apm.TraceProvider
}

// bootstrap loads configuration, installs telemetry and starts every module
// in dependency order.
func bootstrap(ctx context.Context, opts bootOptions) (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logLevel := logger.ParseLevel(cfg.App.LogLevel)
	out := opts.logOutput
	if out == nil {
		out = io.Discard
		if flags.verbose {
			out = os.Stderr
		}
	}
	if flags.verbose {
		logLevel = logger.LevelDebug
	}
	log := logger.New(out, logLevel, cfg.App.Name, apm.TraceID)

	a := &application{cfg: cfg, log: log}
	if err := a.initTelemetry(ctx, opts.serveMetrics); err != nil {
		return nil, err
	}

	a.notifications = notify.NewChannel(32)
	notifiers := notify.Multi{notify.NewLog(log), a.notifications}
	if opts.console && !flags.jsonOutput {
		notifiers = append(notifiers, notify.NewConsole(os.Stdout))
	}

	a.mono = monolith.New(cfg, log, notifiers)

	// Define modules in dependency order
	modules := []monolith.Module{
		&chain.Module{},   // node client, faucet, network check
		&pricing.Module{}, // price oracle
		&wallet.Module{},  // wallet adapters
		&account.Module{}, // balances follow wallet events
		&swap.Module{},    // quotes, submission, liquidity
	}
	if err := a.mono.RegisterModules(modules...); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register modules: %w", err)
	}
	if err := a.mono.StartModules(ctx, modules...); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to start modules: %w", err)
	}

	log.Debug(ctx, "application started",
		"version", version,
		"environment", cfg.App.Environment,
		"network", cfg.Network.Name,
	)
	return a, nil
}

// loadConfig reads the config file and environment, then applies flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.wallet != "" {
		cfg.Wallet.Kind = flags.wallet
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func (a *application) initTelemetry(ctx context.Context, serveMetrics bool) error {
	tc := a.cfg.Telemetry
	if !tc.Enabled {
		return nil
	}

	tp, err := apm.NewTraceProvider(ctx, apm.Config{
		ServiceName: tc.ServiceName,
		Provider:    apm.Provider(tc.TraceProvider),
		Endpoint:    tc.OTLPEndpoint,
		Headers:     tc.OTLPHeaders,
	}, a.log)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	a.traceProvider = tp
	a.log.Info(ctx, "tracing initialized", "provider", tc.TraceProvider, "endpoint", tc.OTLPEndpoint)

	opts := []metrics.OptionFn{metrics.WithServiceName(tc.ServiceName)}
	switch metrics.Provider(tc.MetricsBackend) {
	case metrics.OtelCollector:
		opts = append(opts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(tc.OTLPEndpoint, tc.OTLPHeaders, true)))
	default:
		opts = append(opts, metrics.WithPrometheus())
	}
	if _, err := metrics.NewMetricProvider(ctx, opts...); err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}

	if serveMetrics && metrics.Provider(tc.MetricsBackend) != metrics.OtelCollector {
		port := tc.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go func() {
			if err := metrics.ServePrometheusMetrics(ctx, metrics.WithPort(strconv.Itoa(port))); err != nil {
				a.log.Warn(ctx, "prometheus metrics server stopped", "error", err)
			}
		}()
		a.log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	return nil
}

// connectWallet connects the selected wallet and returns its account.
func (a *application) connectWallet(ctx context.Context) (walletdomain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return walletDI.GetManager(a.mono.Services()).Connect(ctx)
}

// Close stops the modules and flushes telemetry.
func (a *application) Close() {
	if a.mono != nil {
		if err := a.mono.Close(); err != nil {
			a.log.Warn(context.Background(), "shutdown cleanup failed", "error", err)
		}
	}
	if a.traceProvider != nil {
		if err := a.traceProvider.Stop(); err != nil {
			a.log.Warn(context.Background(), "trace provider shutdown failed", "error", err)
		}
	}
}
