package container

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnboundHandler is consulted once when Make finds neither an instance nor a
// binding. It may register the abstract (as deferred providers do) and report
// handled=true, in which case the lookup is retried.
type UnboundHandler func(c *Container, abstract string) (handled bool, err error)

// Option configures a Container.
type Option func(*Container)

type resolvedCallback func(abstract string, instance any)

// maxExtendAttempts bounds how often Extend re-runs an extender whose target
// instance changed while it ran.
const maxExtendAttempts = 8

// WithLogger sets the logger used for container debug events.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log.Store(log)
		}
	}
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Resolve (generic)
//   - Extend (per abstract) and ExtendGlobal (every build)
//   - Rebound callbacks
//   - Resolved event callbacks
//
// A single mutex guards all state. Factories, extenders and callbacks always
// run with the mutex released, so they may call back into the container.
type Container struct {
	mu sync.Mutex

	id  string
	log atomic.Pointer[zap.Logger]

	aliases   *aliasTable
	bindings  *bindingRegistry
	instances *instanceCache
	resolved  *resolutionTracker
	extenders *extenderChain
	rebound   *reboundRegistry

	afterResolving []resolvedCallback

	onUnbound UnboundHandler
}

// New creates an empty container bound to itself under "container".
func New(opts ...Option) *Container {
	c := &Container{id: uuid.NewString()}
	c.log.Store(zap.NewNop())
	for _, opt := range opts {
		opt(c)
	}
	c.log.Store(c.log.Load().With(zap.String("container", c.id)))
	c.reset()
	return c
}

func (c *Container) reset() {
	c.aliases = newAliasTable()
	c.bindings = newBindingRegistry()
	c.instances = newInstanceCache()
	c.resolved = newResolutionTracker()
	c.extenders = newExtenderChain()
	c.rebound = newReboundRegistry()
	c.afterResolving = nil

	// Bind the container to itself, like Laravel's $app->instance()
	c.instances.set("container", c)
	c.resolved.mark("container")
}

// ID returns the random identifier assigned to this container.
func (c *Container) ID() string { return c.id }

// SetLogger replaces the logger used for container debug events. Unlike
// WithLogger, log is used as given: callers add the container id themselves.
func (c *Container) SetLogger(log *zap.Logger) {
	if log != nil {
		c.log.Store(log)
	}
}

func (c *Container) logger() *zap.Logger { return c.log.Load() }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](c, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &EloquentUserRepository{DB: db}, nil
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.BindLifetime(abstract, factory, Transient)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract string, factory Factory) {
	c.BindLifetime(abstract, factory, Shared)
}

// BindLifetime registers factory under abstract with an explicit lifetime.
//
// Replacing an existing binding resets the abstract: its cached instance,
// resolved flag and keyed extenders are dropped. The first binding of an
// abstract only drops a stale instance and resolved flag, so extenders queued
// before it still apply on first resolution.
func (c *Container) BindLifetime(abstract string, factory Factory, lifetime Lifetime) {
	if factory == nil {
		panic(fmt.Sprintf("container: nil factory for [%s]", abstract))
	}

	c.mu.Lock()
	key := c.aliases.canonical(abstract)
	replacing := c.bindings.has(key)
	if replacing {
		c.dropState(key)
	} else {
		c.instances.delete(key)
		c.resolved.forget(key)
	}
	c.bindings.set(key, &binding{factory: factory, lifetime: lifetime})
	c.mu.Unlock()

	c.logger().Debug("container: bind",
		zap.String("abstract", key),
		zap.Stringer("lifetime", lifetime),
		zap.Bool("replaced", replacing))
}

// Instance registers a pre-built value as a singleton. The value is stored
// as-is: no extenders run. If the abstract was already bound, rebound
// callbacks fire with the new value.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.aliases.canonical(abstract)
	wasBound := c.bindings.has(key) || c.instances.has(key)
	c.instances.set(key, instance)
	c.resolved.mark(key)
	var callbacks []ReboundCallback
	if wasBound {
		callbacks = c.rebound.forKey(key)
	}
	c.mu.Unlock()

	c.logger().Debug("container: instance", zap.String("abstract", key), zap.Bool("rebound", wasBound))
	c.fireRebound(key, callbacks, instance)
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cacheManager", "cache")
func (c *Container) Alias(abstract, alias string) error {
	c.mu.Lock()
	err := c.aliases.add(alias, abstract)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.logger().Debug("container: alias", zap.String("alias", alias), zap.String("abstract", abstract))
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
// If an instance is cached it is decorated immediately, replaced, and the
// rebound callbacks receive the new value. Otherwise the extender is queued
// for the next build; if the abstract was already resolved once the rebound
// callbacks fire with Unmaterialized.
//
// If the cached instance is replaced while the extender runs, the extender
// runs again against the new value; if the instance is dropped, the extender
// is queued instead. An *ExtendConflictError is returned when the instance
// keeps changing.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) (any, error) {
//	    return logging.NewTimestampWrapper(instance.(*Logger)), nil
//	})
func (c *Container) Extend(abstract string, fn Extender) error {
	if fn == nil {
		panic(fmt.Sprintf("container: nil extender for [%s]", abstract))
	}

	c.mu.Lock()
	key := c.aliases.canonical(abstract)

	for attempt := 1; ; attempt++ {
		inst, ok := c.instances.get(key)
		if !ok {
			break
		}
		cache, gen := c.instances, c.instances.generation(key)
		c.mu.Unlock()

		extended, err := fn(inst, c)
		if err != nil {
			return err
		}

		c.mu.Lock()
		if c.instances == cache && cache.generation(key) == gen {
			c.instances.set(key, extended)
			callbacks := c.rebound.forKey(key)
			c.mu.Unlock()

			c.logger().Debug("container: extend instance", zap.String("abstract", key), zap.Int("attempt", attempt))
			c.fireRebound(key, callbacks, extended)
			return nil
		}
		// the instance was replaced or dropped while fn ran
		if attempt == maxExtendAttempts {
			c.mu.Unlock()
			return &ExtendConflictError{Abstract: key, Attempts: attempt}
		}
	}

	c.extenders.add(key, fn)
	var callbacks []ReboundCallback
	wasResolved := c.resolved.isResolved(key)
	if wasResolved {
		callbacks = c.rebound.forKey(key)
	}
	c.mu.Unlock()

	c.logger().Debug("container: extend", zap.String("abstract", key), zap.Bool("resolved", wasResolved))
	c.fireRebound(key, callbacks, Unmaterialized)
	return nil
}

// ExtendGlobal registers an extender applied to every build after the
// keyed extenders. Cached instances are not touched and no rebound
// callbacks fire.
//
//	// Laravel: $app->extend(fn($obj, $app) => ...)
func (c *Container) ExtendGlobal(fn Extender) {
	if fn == nil {
		panic("container: nil global extender")
	}

	c.mu.Lock()
	c.extenders.addGlobal(fn)
	c.mu.Unlock()

	c.logger().Debug("container: extend global")
}

// ForgetExtenders removes the keyed extenders of an abstract.
func (c *Container) ForgetExtenders(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extenders.forget(c.aliases.canonical(abstract))
}

// ForgetGlobalExtenders removes every global extender.
func (c *Container) ForgetGlobalExtenders() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extenders.forgetGlobal()
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
//
// A cached instance is returned unchanged. Otherwise the binding's factory
// runs, keyed extenders then global extenders decorate the result, and shared
// bindings cache it. Errors from factories and extenders are returned as-is.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Make("UserRepository")
func (c *Container) Make(abstract string) (any, error) {
	return c.make(abstract, true)
}

// MustMake is like Make but panics on error.
func (c *Container) MustMake(abstract string) any {
	instance, err := c.Make(abstract)
	if err != nil {
		panic(err)
	}
	return instance
}

func (c *Container) make(abstract string, consultUnbound bool) (any, error) {
	c.mu.Lock()
	key := c.aliases.canonical(abstract)
	if inst, ok := c.instances.get(key); ok {
		c.mu.Unlock()
		return inst, nil
	}
	b, ok := c.bindings.get(key)
	handler := c.onUnbound
	c.mu.Unlock()

	if !ok {
		if consultUnbound && handler != nil {
			handled, err := handler(c, key)
			if err != nil {
				return nil, err
			}
			if handled {
				return c.make(abstract, false)
			}
		}
		return nil, &UnboundIdentifierError{Abstract: abstract, Canonical: key}
	}

	return c.build(key, b)
}

// build runs the factory and decorators for key.
func (c *Container) build(key string, b *binding) (any, error) {
	instance, err := b.factory(c)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	keyed := c.extenders.forKey(key)
	global := c.extenders.globals()
	c.mu.Unlock()

	for _, ext := range keyed {
		if instance, err = ext(instance, c); err != nil {
			return nil, err
		}
	}
	for _, ext := range global {
		if instance, err = ext(instance, c); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.resolved.mark(key)
	if b.lifetime == Shared {
		if current, ok := c.instances.get(key); ok {
			// a concurrent build or Instance call got there first
			instance = current
		} else if cur, ok := c.bindings.get(key); ok && cur == b {
			c.instances.set(key, instance)
		}
	}
	callbacks := append([]resolvedCallback(nil), c.afterResolving...)
	c.mu.Unlock()

	c.logger().Debug("container: built",
		zap.String("abstract", key),
		zap.Stringer("lifetime", b.lifetime),
		zap.Int("extenders", len(keyed)+len(global)))

	for _, cb := range callbacks {
		cb(key, instance)
	}
	return instance, nil
}

// ── Forget ────────────────────────────────────────────────────────────────────

// Forget removes the binding, cached instance, resolved flag and keyed
// extenders of an abstract. Aliases and rebound callbacks are kept.
//
//	// Laravel: unset($app[Cache::class])
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	key := c.aliases.canonical(abstract)
	c.bindings.delete(key)
	c.dropState(key)
	c.mu.Unlock()

	c.logger().Debug("container: forget", zap.String("abstract", key))
}

// ForgetInstance drops only the cached instance of an abstract, so the next
// Make rebuilds it from its binding.
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) ForgetInstance(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances.delete(c.aliases.canonical(abstract))
}

// Flush resets the entire container, keeping only its self binding and the
// unbound handler, so a ProviderRegistry keeps loading deferred providers.
func (c *Container) Flush() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()

	c.logger().Debug("container: flush")
}

// dropState clears everything derived from a binding (must hold mu).
func (c *Container) dropState(key string) {
	c.instances.delete(key)
	c.resolved.forget(key)
	c.extenders.forget(key)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has a binding, an instance, or is an alias.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aliases.isAlias(abstract) {
		return true
	}
	key := c.aliases.canonical(abstract)
	return c.bindings.has(key) || c.instances.has(key)
}

// Resolved returns true if the abstract has been built or registered as an
// instance at least once since it was last forgotten.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved.isResolved(c.aliases.canonical(abstract))
}

// IsShared returns true for singleton bindings and registered instances.
func (c *Container) IsShared(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.aliases.canonical(abstract)
	if c.instances.has(key) {
		return true
	}
	b, ok := c.bindings.get(key)
	return ok && b.lifetime == Shared
}

// IsAlias returns true if name is registered as an alias.
func (c *Container) IsAlias(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aliases.isAlias(name)
}

// GetAlias returns the canonical abstract for name.
func (c *Container) GetAlias(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aliases.canonical(name)
}

// Bindings returns the sorted canonical keys that have a binding or an
// instance.
func (c *Container) Bindings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keysLocked()
}

func (c *Container) keysLocked() []string {
	out := make([]string, 0, len(c.bindings.entries)+len(c.instances.values))
	for k := range c.bindings.entries {
		out = append(out, k)
	}
	for k := range c.instances.values {
		if !c.bindings.has(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback fired whenever the abstract is rebound:
// re-registered as an instance, or extended after it was first produced.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb ReboundCallback) {
	if cb == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebound.add(c.aliases.canonical(abstract), cb)
}

// AfterResolving registers a callback fired after every build. Cache hits
// do not fire it.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb == nil {
		return
	}
	c.afterResolving = append(c.afterResolving, cb)
}

// OnUnbound installs the handler consulted before Make gives up on an
// unbound abstract. A later call replaces the earlier handler.
func (c *Container) OnUnbound(handler UnboundHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnbound = handler
}

func (c *Container) fireRebound(key string, callbacks []ReboundCallback, instance any) {
	if len(callbacks) == 0 {
		return
	}
	c.logger().Debug("container: rebound", zap.String("abstract", key), zap.Int("callbacks", len(callbacks)))
	for _, cb := range callbacks {
		cb(instance, c)
	}
}
