package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/app"
	"github.com/km-arc/go-laravel-container/framework/container"
)

// greeter is a small service used to show bindings, extenders and rebound
// callbacks in the inspector.
type greeter struct {
	prefix string
}

func (g *greeter) Greet(name string) string { return g.prefix + ", " + name }

// AppServiceProvider wires the demo services.
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(c *container.Container) error {
	c.Singleton("greeter", func(*container.Container) (any, error) {
		return &greeter{prefix: "Hello"}, nil
	})
	c.Bind("request.id", func(*container.Container) (any, error) {
		return fmt.Sprintf("req-%d", os.Getpid()), nil
	})
	return c.Alias("greeter", "hello")
}

func (p *AppServiceProvider) Boot(c *container.Container) error {
	log := container.MustResolve[*zap.Logger](c, "log")

	c.Rebinding("greeter", logRebound(log))

	if err := c.Extend("hello", func(instance any, _ *container.Container) (any, error) {
		g := instance.(*greeter)
		return &greeter{prefix: strings.ToUpper(g.prefix)}, nil
	}); err != nil {
		return err
	}

	g := container.MustResolve[*greeter](c, "greeter")
	log.Info("booted", zap.String("greeting", g.Greet("world")))

	// decorates the cached instance right away and fires the rebound callback
	return c.Extend("greeter", func(instance any, _ *container.Container) (any, error) {
		return &greeter{prefix: instance.(*greeter).prefix + "!"}, nil
	})
}

// logRebound logs the new greeting whenever "greeter" is rebound. A rebind
// with nothing cached only logs that it happened.
func logRebound(log *zap.Logger) container.ReboundCallback {
	return func(instance any, _ *container.Container) {
		if container.IsUnmaterialized(instance) {
			log.Info("greeter rebound")
			return
		}
		g, ok := instance.(*greeter)
		if !ok {
			log.Warn("greeter rebound to unexpected value", zap.String("type", fmt.Sprintf("%T", instance)))
			return
		}
		log.Info("greeter rebound", zap.String("greeting", g.Greet("world")))
	}
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := application.Register(&AppServiceProvider{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
