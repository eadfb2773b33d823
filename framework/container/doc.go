// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container maps abstract identifiers to concrete values. It builds values
// lazily from factories, caches singletons and registered instances, resolves
// aliases transparently, decorates values with extenders, and notifies
// observers when an already-produced value is replaced.
//
// Because Go has no runtime constructor reflection, auto-wiring is replaced by
// explicit factory functions.
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("Foo", func(c *container.Container) (any, error) { return &Foo{}, nil })
//
//	// Singleton: created once, reused
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.NewRedis(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance("config", myConfig)
//
//	// Alias
//	err := c.Alias("cache", "cacheManager")
//
// Replacing an existing binding resets the abstract: its cached instance,
// resolved flag and extenders are dropped.
//
// # Resolving
//
//	raw, err := c.Make("cache")
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//
// Make on an abstract with neither instance nor binding fails with
// *UnboundIdentifierError (errors.Is(err, container.ErrUnbound)).
//
// # Extend / Decorate
//
//	c.Extend("logger", func(instance any, c *container.Container) (any, error) {
//	    return &TimestampLogger{Inner: instance.(*Logger)}, nil
//	})
//
// Extend on a cached instance decorates it immediately and fires the rebound
// callbacks. On anything else the extender waits for the next build. Keyed
// extenders run in registration order, followed by global extenders added
// with ExtendGlobal. Global extenders never touch cached instances.
//
// # Rebound callbacks
//
//	c.Rebinding("logger", func(instance any, c *container.Container) {
//	    if container.IsUnmaterialized(instance) {
//	        return // transient binding: nothing cached to report
//	    }
//	    ...
//	})
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	if err := registry.Register(&AppServiceProvider{}); err != nil { ... }
//	if err := registry.Boot(); err != nil { ... }
//
// Deferred providers (IsDeferred() == true) are registered the first time one
// of their Provides() abstracts is resolved.
package container
