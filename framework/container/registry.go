package container

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ── Registrations ─────────────────────────────────────────────────────────────

// Factory builds a component value from its owning container.
//
// A factory runs at most once per container: the first Resolve of its key
// invokes it, and the result (value or error) is memoized for every later
// caller. Factories may block (open a connection, read a file); concurrent
// first resolutions of the same key collapse to a single invocation.
type Factory func(c *Container) (any, error)

// Origin records how a key entered the registry.
type Origin int

const (
	// OriginComponent marks a directly registered component factory,
	// typically supplied by auto-discovery or application code.
	OriginComponent Origin = iota

	// OriginProvider marks a key registered by a provider's start hook.
	OriginProvider

	// OriginImport marks a lazy proxy installed by import wiring; the
	// underlying component is owned by the exporting container.
	OriginImport
)

func (o Origin) String() string {
	switch o {
	case OriginComponent:
		return "component"
	case OriginProvider:
		return "provider"
	case OriginImport:
		return "import"
	default:
		return "unknown"
	}
}

// entry is one registration: a factory plus the memoized result of its
// single invocation. The sync.Once is the per-key serialization point —
// losers of a first-resolution race block inside Do until the winner's
// result is visible.
//
// Import proxies are a separate shape: importSource/importKey set, no
// factory. They memoize nothing locally — every resolution re-enters the
// source container, whose own entry does the memoizing.
type entry struct {
	key     string
	origin  Origin
	factory Factory

	importSource *Container
	importKey    string

	once     sync.Once
	done     atomic.Bool
	instance any
	err      error
}

func (e *entry) resolve(owner *Container) (any, error) {
	e.once.Do(func() {
		defer func() {
			e.done.Store(true)
			if r := recover(); r != nil {
				// A panicking factory must not poison the entry into
				// reporting (nil, nil) success forever after.
				e.instance = nil
				e.err = fmt.Errorf("container %q: factory for key %q panicked: %v", owner.name, e.key, r)
			}
		}()
		e.instance, e.err = e.factory(owner)
		if e.err != nil {
			e.instance = nil
		}
	})
	return e.instance, e.err
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry is the key → factory/instance store inside a Container.
//
// Keys are dotted names, unique within their container; duplicate
// registration fails rather than overwriting. Keys() preserves
// first-declaration order.
type Registry struct {
	mu      sync.RWMutex
	owner   *Container
	entries map[string]*entry
	order   []string
}

func newRegistry(owner *Container) *Registry {
	return &Registry{
		owner:   owner,
		entries: make(map[string]*entry),
	}
}

// Register adds a component factory under key.
func (r *Registry) Register(key string, f Factory) error {
	return r.register(key, OriginComponent, f)
}

// RegisterValue adds a pre-built value under key.
func (r *Registry) RegisterValue(key string, value any) error {
	return r.register(key, OriginComponent, func(*Container) (any, error) {
		return value, nil
	})
}

func (r *Registry) register(key string, origin Origin, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return &DuplicateKeyError{Container: r.owner.name, Key: key}
	}
	r.entries[key] = &entry{key: key, origin: origin, factory: f}
	r.order = append(r.order, key)
	return nil
}

// registerImport installs a proxy entry delegating to source's sourceKey.
func (r *Registry) registerImport(key string, source *Container, sourceKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return &DuplicateKeyError{Container: r.owner.name, Key: key}
	}
	r.entries[key] = &entry{key: key, origin: OriginImport, importSource: source, importKey: sourceKey}
	r.order = append(r.order, key)
	return nil
}

// Resolve returns the memoized instance for key, invoking the factory on
// first access. Fails with *UnknownKeyError when no registration matches.
func (r *Registry) Resolve(key string) (any, error) {
	return r.resolve(key, newStartChain())
}

// resolve carries the caller's provider start chain so that import proxies
// and lazy provider triggers reached through resolution keep accumulating
// the chain — a requirement cycle is rejected instead of blocking.
func (r *Registry) resolve(key string, chain *startChain) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownKeyError{Container: r.owner.name, Key: key}
	}
	if e.importSource != nil {
		return e.importSource.resolve(e.importKey, chain)
	}
	return e.resolve(r.owner)
}

// Has reports whether key is registered (resolved or not).
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Resolved reports whether key has been resolved at least once. For an
// import proxy this asks the source container, which holds the instance.
func (r *Registry) Resolved(key string) bool {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.importSource != nil {
		return e.importSource.Resolved(e.importKey)
	}
	return e.done.Load()
}

// Origin returns how key entered the registry.
func (r *Registry) Origin(key string) (Origin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return 0, false
	}
	return e.origin, true
}

// Keys returns every registered key in first-declaration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
