package container

// Extender decorates an already-built value and returns its replacement.
type Extender func(instance any, c *Container) (any, error)

// ReboundCallback observes a value being replaced or re-decorated after it
// was first produced.
type ReboundCallback func(instance any, c *Container)

type unmaterialized struct{}

func (unmaterialized) String() string { return "<unmaterialized>" }

// Unmaterialized is handed to rebound callbacks when an abstract is extended
// after being resolved, but no instance is cached to report (a transient
// binding). Callbacks that need the new value should call Make.
var Unmaterialized any = unmaterialized{}

// IsUnmaterialized reports whether v is the Unmaterialized sentinel.
func IsUnmaterialized(v any) bool {
	_, ok := v.(unmaterialized)
	return ok
}

// extenderChain stores per-abstract decorators plus one global list. Reads
// return copies so they can be iterated with the container unlocked.
type extenderChain struct {
	keyed  map[string][]Extender
	global []Extender
}

func newExtenderChain() *extenderChain {
	return &extenderChain{keyed: make(map[string][]Extender)}
}

func (e *extenderChain) add(key string, fn Extender) {
	e.keyed[key] = append(e.keyed[key], fn)
}

func (e *extenderChain) addGlobal(fn Extender) {
	e.global = append(e.global, fn)
}

func (e *extenderChain) forKey(key string) []Extender {
	return append([]Extender(nil), e.keyed[key]...)
}

func (e *extenderChain) globals() []Extender {
	return append([]Extender(nil), e.global...)
}

func (e *extenderChain) count(key string) int { return len(e.keyed[key]) }

func (e *extenderChain) forget(key string) { delete(e.keyed, key) }

func (e *extenderChain) forgetGlobal() { e.global = nil }

// reboundRegistry stores observers per abstract. Callbacks are never removed
// automatically.
type reboundRegistry struct {
	callbacks map[string][]ReboundCallback
}

func newReboundRegistry() *reboundRegistry {
	return &reboundRegistry{callbacks: make(map[string][]ReboundCallback)}
}

func (r *reboundRegistry) add(key string, cb ReboundCallback) {
	r.callbacks[key] = append(r.callbacks[key], cb)
}

func (r *reboundRegistry) forKey(key string) []ReboundCallback {
	return append([]ReboundCallback(nil), r.callbacks[key]...)
}

func (r *reboundRegistry) count(key string) int { return len(r.callbacks[key]) }
