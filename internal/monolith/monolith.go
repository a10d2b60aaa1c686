// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"

	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/config"
	"github.com/fd1az/aptos-dex/internal/di"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Registry() *asset.Registry
	Notifier() notify.Notifier
	Services() di.ServiceRegistry
	// OnClose registers a cleanup run by Close in reverse order.
	OnClose(fn func() error)
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// App implements the Monolith interface.
type App struct {
	config    *config.Config
	logger    logger.LoggerInterface
	registry  *asset.Registry
	notifier  notify.Notifier
	container di.Container
	closers   []func() error
}

// New creates a new Monolith. The token registry is adjusted for the
// configured network.
func New(cfg *config.Config, log logger.LoggerInterface, notifier notify.Notifier) *App {
	registry := asset.DefaultRegistry().ForNetwork(cfg.Network.Name)
	if notifier == nil {
		notifier = notify.Discard{}
	}

	container := di.NewContainer()
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("registry", registry)
	container.Register("notifier", notifier)

	return &App{
		config:    cfg,
		logger:    log,
		registry:  registry,
		notifier:  notifier,
		container: container,
	}
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *App) Registry() *asset.Registry {
	return a.registry
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *App) Container() di.Container {
	return a.container
}

func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// RegisterModules registers all provided modules.
func (a *App) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *App) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close runs registered cleanups, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
