package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/config"
	"github.com/km-arc/go-laravel-container/framework/container"
	"github.com/km-arc/go-laravel-container/framework/inspect"
	"github.com/km-arc/go-laravel-container/framework/logging"
	"github.com/km-arc/go-laravel-container/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	return app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the zap logger built from "config".
//
// Bound abstracts:
//   - "log"     → *zap.Logger
//   - "logger"  → alias of "log"
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	app.Singleton("log", func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log, cfg.App.Name)
	})
	return app.Alias("log", "logger")
}

// Boot tags the logger with the container id so every component sharing it
// can be traced back to this application instance, then hands it to the
// container for its own debug events. A rebound logger is handed over again.
func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	err := app.Extend("log", func(instance any, c *container.Container) (any, error) {
		log, ok := instance.(*zap.Logger)
		if !ok {
			return nil, fmt.Errorf("log: expected *zap.Logger, got %T", instance)
		}
		return log.With(zap.String("container", c.ID())), nil
	})
	if err != nil {
		return err
	}

	log, err := container.Resolve[*zap.Logger](app, "log")
	if err != nil {
		return err
	}
	app.SetLogger(log)
	app.Rebinding("log", func(instance any, c *container.Container) {
		if log, ok := instance.(*zap.Logger); ok {
			c.SetLogger(log)
		}
	})
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	app.Singleton("router", func(c *container.Container) (any, error) {
		log, err := container.Resolve[*zap.Logger](c, "log")
		if err != nil {
			return nil, err
		}
		return routing.New(log), nil
	})
	return nil
}

// ── InspectServiceProvider ────────────────────────────────────────────────────

// InspectServiceProvider mounts the container inspector on the router when
// INSPECT_ENABLED is true.
//
// Bound abstracts:
//   - "inspect"  → *inspect.Handler
type InspectServiceProvider struct {
	container.BaseProvider
}

func (p *InspectServiceProvider) Register(app *container.Container) error {
	app.Singleton("inspect", func(c *container.Container) (any, error) {
		return inspect.New(c), nil
	})
	return nil
}

func (p *InspectServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if !cfg.Inspect.Enabled {
		return nil
	}
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	handler, err := container.Resolve[*inspect.Handler](app, "inspect")
	if err != nil {
		return err
	}
	handler.Mount(router, cfg.Inspect.Prefix)
	return nil
}
