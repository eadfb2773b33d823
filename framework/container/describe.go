package container

// Description is a point-in-time view of one abstract.
type Description struct {
	Abstract         string `json:"abstract"`
	Canonical        string `json:"canonical"`
	Bound            bool   `json:"bound"`
	Lifetime         string `json:"lifetime,omitempty"`
	Cached           bool   `json:"cached"`
	Resolved         bool   `json:"resolved"`
	Extenders        int    `json:"extenders"`
	ReboundCallbacks int    `json:"rebound_callbacks"`
}

// Describe reports the state of abstract. ok is false when nothing at all is
// known about it: no binding, instance, alias, extender or callback.
func (c *Container) Describe(abstract string) (Description, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.describeLocked(abstract)
	known := d.Bound || d.Resolved || d.Extenders > 0 || d.ReboundCallbacks > 0
	return d, known
}

// Snapshot describes every bound abstract, sorted by key.
func (c *Container) Snapshot() []Description {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.keysLocked()
	out := make([]Description, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.describeLocked(k))
	}
	return out
}

// Aliases returns a copy of the alias → target map.
func (c *Container) Aliases() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aliases.snapshot()
}

func (c *Container) describeLocked(abstract string) Description {
	key := c.aliases.canonical(abstract)
	d := Description{
		Abstract:         abstract,
		Canonical:        key,
		Cached:           c.instances.has(key),
		Resolved:         c.resolved.isResolved(key),
		Extenders:        c.extenders.count(key),
		ReboundCallbacks: c.rebound.count(key),
	}
	if b, ok := c.bindings.get(key); ok {
		d.Lifetime = b.lifetime.String()
	} else if d.Cached {
		d.Lifetime = Shared.String()
	}
	d.Bound = d.Lifetime != "" || c.aliases.isAlias(abstract)
	return d
}
