package container

import (
	"fmt"
	"sync"
)

// ── Provider state machine ────────────────────────────────────────────────────

// ProviderState is a provider's lifecycle position.
//
// Transitions run Unprepared → Prepared → Started → Stopped; a Stopped
// provider may re-enter Started unless it is single-shot. Every transition
// is idempotent and serialized per provider.
type ProviderState int

const (
	ProviderUnprepared ProviderState = iota
	ProviderPrepared
	ProviderStarted
	ProviderStopped
)

func (s ProviderState) String() string {
	switch s {
	case ProviderUnprepared:
		return "unprepared"
	case ProviderPrepared:
		return "prepared"
	case ProviderStarted:
		return "started"
	case ProviderStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Hooks are a provider's lifecycle callbacks. All are optional.
//
// Prepare is for side-effect-free setup. Start performs the provider's
// actual registrations through its Scope. Stop releases whatever Start
// acquired.
type Hooks struct {
	Prepare func(s *Scope) error
	Start   func(s *Scope) error
	Stop    func(s *Scope) error
}

// ProviderOption configures a provider at declaration time.
type ProviderOption func(*Provider)

// SingleShot marks a provider as not restartable: once stopped, Start
// becomes a no-op.
func SingleShot() ProviderOption {
	return func(p *Provider) { p.singleShot = true }
}

// ── Provider ──────────────────────────────────────────────────────────────────

// Provider is a named, deferred unit of setup owned by one container. Its
// start hook registers keys into that container imperatively, so the set
// of keys a provider contributes is only known once it has started.
type Provider struct {
	name       string
	target     *Container
	hooks      Hooks
	singleShot bool

	mu    sync.Mutex
	state ProviderState
	keys  []string
}

func newProvider(name string, target *Container, hooks Hooks, opts ...ProviderOption) *Provider {
	p := &Provider{name: name, target: target, hooks: hooks}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return p.name }

// Container returns the container this provider registers into.
func (p *Provider) Container() *Container { return p.target }

// State returns the provider's current lifecycle state.
func (p *Provider) State() ProviderState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Keys returns the keys the start hook has registered so far.
func (p *Provider) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Provider) id() string {
	return p.target.name + "/" + p.name
}

// Prepare runs the prepare hook once. No-op when already prepared,
// started, or stopped.
func (p *Provider) Prepare() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prepareLocked(newStartChain())
}

func (p *Provider) prepareLocked(chain *startChain) error {
	if p.state != ProviderUnprepared {
		return nil
	}
	if p.hooks.Prepare != nil {
		if err := p.hooks.Prepare(&Scope{provider: p, chain: chain}); err != nil {
			return err
		}
	}
	p.state = ProviderPrepared
	return nil
}

// Start runs the start hook once, running Prepare first if needed. No-op
// when already started, and when stopped on a single-shot provider.
//
// Inside the start hook, Scope.Require and Scope.RequireFrom start other
// providers first; a circular requirement fails with *ProviderCycleError
// before any hook in the cycle runs, leaving no provider partially
// started.
func (p *Provider) Start() error {
	return p.start(newStartChain())
}

func (p *Provider) start(chain *startChain) error {
	// Cycle check happens before taking the provider lock, so a recursive
	// requirement loop errors out instead of deadlocking.
	if chain.contains(p.id()) {
		return &ProviderCycleError{Chain: append(chain.snapshot(), p.id())}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == ProviderStarted {
		return nil
	}
	if p.state == ProviderStopped && p.singleShot {
		return nil
	}
	if err := p.prepareLocked(chain); err != nil {
		return err
	}

	chain.push(p.id())
	defer chain.pop()

	if p.hooks.Start != nil {
		if err := p.hooks.Start(&Scope{provider: p, chain: chain}); err != nil {
			// The provider stays Prepared; a failed start is retryable
			// once the underlying cause is fixed.
			return err
		}
	}
	p.state = ProviderStarted
	p.target.noteStarted(p)
	return nil
}

// Stop runs the stop hook and transitions to Stopped. Only meaningful from
// Started; a no-op in every other state.
func (p *Provider) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != ProviderStarted {
		return nil
	}
	if p.hooks.Stop != nil {
		if err := p.hooks.Stop(&Scope{provider: p, chain: newStartChain()}); err != nil {
			return err
		}
	}
	p.state = ProviderStopped
	return nil
}

// ── Start scope ───────────────────────────────────────────────────────────────

// Scope is handed to provider hooks. Registrations land in the provider's
// target container tagged as provider-contributed; Require/RequireFrom
// express start-order dependencies on other providers.
type Scope struct {
	provider *Provider
	chain    *startChain
}

// Container returns the provider's target container.
func (s *Scope) Container() *Container { return s.provider.target }

// Register adds a factory under key in the target container.
func (s *Scope) Register(key string, f Factory) error {
	if err := s.provider.target.registry.register(key, OriginProvider, f); err != nil {
		return err
	}
	s.provider.keys = append(s.provider.keys, key)
	return nil
}

// RegisterValue adds a pre-built value under key in the target container.
func (s *Scope) RegisterValue(key string, value any) error {
	return s.Register(key, func(*Container) (any, error) { return value, nil })
}

// Resolve resolves key against the target container. The scope's start
// chain rides along, so a resolution that lazily triggers another
// provider keeps the cycle check intact.
func (s *Scope) Resolve(key string) (any, error) {
	return s.provider.target.resolve(key, s.chain)
}

// Require starts another provider in the same container before this one
// finishes starting.
func (s *Scope) Require(name string) error {
	dep, ok := s.provider.target.Provider(name)
	if !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("container %q: provider %q requires unknown provider %q",
			s.provider.target.name, s.provider.name, name)}
	}
	return dep.start(s.chain)
}

// RequireFrom starts a provider declared in another container of the same
// application.
func (s *Scope) RequireFrom(containerName, providerName string) error {
	host := s.provider.target.currentHost()
	if host == nil {
		return &ConfigurationError{Reason: fmt.Sprintf("container %q: provider %q requires %q/%q but the container is not attached to an application",
			s.provider.target.name, s.provider.name, containerName, providerName)}
	}
	dep, ok := host.LookupProvider(containerName, providerName)
	if !ok {
		return &ConfigurationError{Reason: fmt.Sprintf("container %q: provider %q requires unknown provider %q/%q",
			s.provider.target.name, s.provider.name, containerName, providerName)}
	}
	return dep.start(s.chain)
}

// ── Start chain ───────────────────────────────────────────────────────────────

// startChain tracks the providers currently starting in one logical start
// call, in requirement order. It flows through nested Require calls and
// through Scope.Resolve (including import proxies and lazy provider
// triggers), and is how cycles are caught before they block.
//
// The chain is per logical call, so it catches any cycle walked by one
// goroutine. Two goroutines concurrently starting different providers of
// a cyclic graph can still block on each other's provider locks; boot is
// sequential, so a cyclic graph is always rejected there first.
type startChain struct {
	ids []string
}

func newStartChain() *startChain { return &startChain{} }

func (c *startChain) contains(id string) bool {
	for _, existing := range c.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (c *startChain) push(id string) { c.ids = append(c.ids, id) }
func (c *startChain) pop()           { c.ids = c.ids[:len(c.ids)-1] }

func (c *startChain) snapshot() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}
