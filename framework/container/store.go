package container

// Lifetime decides whether a built value is cached.
type Lifetime int

const (
	// Transient bindings are rebuilt on every Make.
	Transient Lifetime = iota
	// Shared bindings are built once and cached.
	Shared
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// Factory builds a concrete value. It receives the container so it can
// resolve its own dependencies.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and its lifetime.
type binding struct {
	factory  Factory
	lifetime Lifetime
}

type bindingRegistry struct {
	entries map[string]*binding
}

func newBindingRegistry() *bindingRegistry {
	return &bindingRegistry{entries: make(map[string]*binding)}
}

func (r *bindingRegistry) get(key string) (*binding, bool) {
	b, ok := r.entries[key]
	return b, ok
}

func (r *bindingRegistry) set(key string, b *binding) { r.entries[key] = b }
func (r *bindingRegistry) delete(key string)          { delete(r.entries, key) }

func (r *bindingRegistry) has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// instanceCache holds shared and explicitly registered values. Every set or
// delete bumps the key's generation.
type instanceCache struct {
	values map[string]any
	gens   map[string]uint64
}

func newInstanceCache() *instanceCache {
	return &instanceCache{values: make(map[string]any), gens: make(map[string]uint64)}
}

func (c *instanceCache) get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *instanceCache) set(key string, v any) {
	c.values[key] = v
	c.gens[key]++
}

func (c *instanceCache) delete(key string) {
	if _, ok := c.values[key]; ok {
		delete(c.values, key)
		c.gens[key]++
	}
}

func (c *instanceCache) generation(key string) uint64 { return c.gens[key] }

func (c *instanceCache) has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// resolutionTracker remembers which abstracts were built at least once,
// independent of caching.
type resolutionTracker struct {
	resolved map[string]struct{}
}

func newResolutionTracker() *resolutionTracker {
	return &resolutionTracker{resolved: make(map[string]struct{})}
}

func (t *resolutionTracker) mark(key string)   { t.resolved[key] = struct{}{} }
func (t *resolutionTracker) forget(key string) { delete(t.resolved, key) }

func (t *resolutionTracker) isResolved(key string) bool {
	_, ok := t.resolved[key]
	return ok
}
