package container

import (
	"fmt"
	"strings"
	"sync"
)

// ── Lifecycle state ───────────────────────────────────────────────────────────

// State is a container's lifecycle position.
type State int

const (
	// StateUnprepared is the initial state: components and providers may be
	// registered, imports are not yet wired.
	StateUnprepared State = iota

	// StatePrepared means import/export wiring is done; resolution is lazy.
	StatePrepared

	// StateBooted means every registered key has been eagerly resolved and
	// every declared provider started.
	StateBooted
)

func (s State) String() string {
	switch s {
	case StateUnprepared:
		return "unprepared"
	case StatePrepared:
		return "prepared"
	case StateBooted:
		return "booted"
	default:
		return "unknown"
	}
}

// ── Import declarations ───────────────────────────────────────────────────────

// ImportDecl declares keys pulled in from another container.
//
// Keys nil means "everything the source exports". As defaults to the
// source container's name; imported keys land under "<As>.<key>".
type ImportDecl struct {
	From string
	Keys []string
	As   string
}

// Host is the application-level collaborator a container is attached to.
// It locates providers in sibling containers for cross-container start
// dependencies and records the global start order for reverse-order
// shutdown.
type Host interface {
	LookupProvider(containerName, providerName string) (*Provider, bool)
	RecordStart(p *Provider)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is a named scope owning a component registry, a set of
// providers, and import/export declarations. An application has exactly one
// root container and zero or more slice containers attached to a Host.
type Container struct {
	name     string
	registry *Registry

	mu              sync.Mutex
	state           State
	providers       []*Provider
	providersByName map[string]*Provider
	startOrder      []*Provider
	imports         []ImportDecl
	exports         []string
	exportAll       bool
	host            Host
}

// New creates an empty, unprepared container.
func New(name string) *Container {
	c := &Container{
		name:            name,
		providersByName: make(map[string]*Provider),
	}
	c.registry = newRegistry(c)
	return c
}

func (c *Container) Name() string { return c.name }

// State returns the container's current lifecycle state.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Registry exposes the underlying component registry.
func (c *Container) Registry() *Registry { return c.registry }

// SetHost attaches the container to an application host. Called by the
// application when the container is created or registered as a slice.
func (c *Container) SetHost(h Host) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = h
}

func (c *Container) currentHost() Host {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a component factory under key.
func (c *Container) Register(key string, f Factory) error {
	return c.registry.Register(key, f)
}

// RegisterValue adds a pre-built value under key.
func (c *Container) RegisterValue(key string, value any) error {
	return c.registry.RegisterValue(key, value)
}

// RegisterImport installs a lazy proxy under key that delegates to
// sourceKey in the source container. The proxy never owns the component:
// every resolution re-enters the source container, whose own memoization
// guarantees all importers observe the same instance.
//
// Used by application wiring; export authorization happens there.
func (c *Container) RegisterImport(key string, source *Container, sourceKey string) error {
	return c.registry.registerImport(key, source, sourceKey)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns the component registered under key, constructing and
// memoizing it on first access.
//
// When the key is not registered but a provider's name matches the key's
// first dotted segment, that provider is started first and the lookup
// retried — a prepared (lazy) container loads providers on demand.
func (c *Container) Resolve(key string) (any, error) {
	return c.resolve(key, newStartChain())
}

// resolve threads the caller's provider start chain through the lazy
// trigger and any import proxies, so a provider whose start hook resolves
// its way back into an in-flight start fails with *ProviderCycleError
// instead of deadlocking on that provider's own lock.
func (c *Container) resolve(key string, chain *startChain) (any, error) {
	if !c.registry.Has(key) {
		if p, ok := c.Provider(rootSegment(key)); ok {
			if err := p.start(chain); err != nil {
				return nil, err
			}
		}
	}
	return c.registry.resolve(key, chain)
}

// Resolved reports whether key has been resolved at least once.
func (c *Container) Resolved(key string) bool {
	return c.registry.Resolved(key)
}

// Has reports whether key is currently registered.
func (c *Container) Has(key string) bool {
	return c.registry.Has(key)
}

// Keys returns every registered key in first-declaration order.
func (c *Container) Keys() []string {
	return c.registry.Keys()
}

// ResolveAs resolves key and type-asserts the result.
//
//	log, err := container.ResolveAs[*zap.Logger](c, "logger")
func ResolveAs[T any](c *Container, key string) (T, error) {
	var zero T
	v, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container %q: key %q resolved to %T, want %T", c.name, key, v, zero)
	}
	return typed, nil
}

func rootSegment(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		return key[:i]
	}
	return key
}

// ── Providers ─────────────────────────────────────────────────────────────────

// RegisterProvider declares a named provider on this container. Provider
// names are unique per container.
func (c *Container) RegisterProvider(name string, hooks Hooks, opts ...ProviderOption) (*Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providersByName[name]; exists {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("container %q: provider %q is already declared", c.name, name)}
	}
	p := newProvider(name, c, hooks, opts...)
	c.providers = append(c.providers, p)
	c.providersByName[name] = p
	return p, nil
}

// Provider returns the provider declared under name, if any.
func (c *Container) Provider(name string) (*Provider, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.providersByName[name]
	return p, ok
}

// Providers returns all declared providers in declaration order.
func (c *Container) Providers() []*Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// noteStarted records a successful provider start, locally and with the
// host when attached.
func (c *Container) noteStarted(p *Provider) {
	c.mu.Lock()
	c.startOrder = append(c.startOrder, p)
	h := c.host
	c.mu.Unlock()
	if h != nil {
		h.RecordStart(p)
	}
}

// ── Imports & exports ─────────────────────────────────────────────────────────

// Export grants importers visibility of the given keys. Nothing is exported
// unless declared (exporting is a capability grant, not a registration).
func (c *Container) Export(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exports = append(c.exports, keys...)
}

// ExportAll exports every key registered at wiring time. Explicit opt-in
// for containers that are pure libraries of shared components.
func (c *Container) ExportAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exportAll = true
}

// Import declares keys pulled in from another container. Wiring happens
// when the application prepares or boots.
func (c *Container) Import(decl ImportDecl) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imports = append(c.imports, decl)
}

// Imports returns the declared imports in declaration order.
func (c *Container) Imports() []ImportDecl {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ImportDecl, len(c.imports))
	copy(out, c.imports)
	return out
}

// ExportedKeys returns the effective export list.
func (c *Container) ExportedKeys() []string {
	c.mu.Lock()
	all := c.exportAll
	exports := make([]string, len(c.exports))
	copy(exports, c.exports)
	c.mu.Unlock()
	if all {
		return c.registry.Keys()
	}
	return exports
}

// ExportsKey reports whether key is in the effective export list.
func (c *Container) ExportsKey(key string) bool {
	for _, k := range c.ExportedKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Prepare marks the container prepared. Idempotent; resolution stays lazy.
func (c *Container) Prepare() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnprepared {
		c.state = StatePrepared
	}
}

// StartProviders starts every declared provider in declaration order.
func (c *Container) StartProviders() error {
	for _, p := range c.Providers() {
		if err := p.Start(); err != nil {
			return err
		}
	}
	return nil
}

// ResolveAll eagerly resolves every registered key, surfacing any factory
// or unknown-dependency error immediately.
func (c *Container) ResolveAll() error {
	for _, key := range c.registry.Keys() {
		if _, err := c.Resolve(key); err != nil {
			return err
		}
	}
	return nil
}

// Boot prepares the container, starts every provider, then eagerly
// resolves every key. Standalone-container convenience; applications phase
// these steps across containers themselves.
func (c *Container) Boot() error {
	c.Prepare()
	if err := c.StartProviders(); err != nil {
		return err
	}
	if err := c.ResolveAll(); err != nil {
		return err
	}
	c.MarkBooted()
	return nil
}

// MarkBooted records the booted state. Called by the application once its
// phased boot (providers first, then eager resolution) has completed.
func (c *Container) MarkBooted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateBooted
}

// Shutdown stops this container's started providers in reverse start
// order. Containers attached to an application host are shut down globally
// by the host instead.
func (c *Container) Shutdown() error {
	c.mu.Lock()
	order := make([]*Provider, len(c.startOrder))
	copy(order, c.startOrder)
	c.startOrder = c.startOrder[:0]
	c.mu.Unlock()

	var err error
	for i := len(order) - 1; i >= 0; i-- {
		if stopErr := order[i].Stop(); stopErr != nil {
			err = stopErr
		}
	}
	return err
}
