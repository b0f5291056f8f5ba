// Package app composes containers into an application: one root, flat
// slices, cross-container import wiring, and phased boot/shutdown.
package app

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/loomstack/loom/framework/container"
)

// Application is the top-level runtime: one root container plus zero or
// more slice containers, each a direct child of the root (slices do not
// nest). The application wires cross-container imports, phases boot and
// shutdown across all containers, and tracks the global provider start
// order so shutdown runs in reverse.
type Application struct {
	name string
	log  *zap.Logger

	mu sync.Mutex

	rootContainer *container.Container
	slices        []*container.Container
	byName        map[string]*container.Container

	wireOnce sync.Once
	wireErr  error
	started  []*container.Provider
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the application's own logger. Distinct from the
// "logger" registry entry components resolve; defaults to zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(a *Application) { a.log = l }
}

// New creates an application with an empty root container.
func New(name string, opts ...Option) *Application {
	a := &Application{
		name:   name,
		log:    zap.NewNop(),
		byName: make(map[string]*container.Container),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.rootContainer = container.New(name)
	a.rootContainer.SetHost(a)
	a.byName[name] = a.rootContainer
	return a
}

func (a *Application) Name() string { return a.name }

// Root returns the application (root) container.
func (a *Application) Root() *container.Container { return a.rootContainer }

// RegisterSlice creates a slice container attached to this application.
// Slice names are unique and must not collide with the root's name.
func (a *Application) RegisterSlice(name string) (*container.Container, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.byName[name]; exists {
		return nil, &container.ConfigurationError{Reason: fmt.Sprintf("application %q: container %q already exists", a.name, name)}
	}
	c := container.New(name)
	c.SetHost(a)
	a.slices = append(a.slices, c)
	a.byName[name] = c
	return c, nil
}

// Slice returns the slice container registered under name.
func (a *Application) Slice(name string) (*container.Container, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if name == a.name {
		return nil, false
	}
	c, ok := a.byName[name]
	return c, ok
}

// Slices returns all slice containers in registration order.
func (a *Application) Slices() []*container.Container {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*container.Container, len(a.slices))
	copy(out, a.slices)
	return out
}

// Container returns the root or a slice container by name.
func (a *Application) Container(name string) (*container.Container, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.byName[name]
	return c, ok
}

// containers returns root plus slices in wiring order (root first).
func (a *Application) containers() []*container.Container {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*container.Container, 0, len(a.slices)+1)
	out = append(out, a.rootContainer)
	out = append(out, a.slices...)
	return out
}

// ── Host interface ────────────────────────────────────────────────────────────

// LookupProvider finds a provider by container and provider name, for
// cross-container start requirements.
func (a *Application) LookupProvider(containerName, providerName string) (*container.Provider, bool) {
	c, ok := a.Container(containerName)
	if !ok {
		return nil, false
	}
	return c.Provider(providerName)
}

// RecordStart appends p to the global start order. Shutdown walks this
// list in reverse.
func (a *Application) RecordStart(p *container.Provider) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = append(a.started, p)
}

// ── Boot & shutdown ───────────────────────────────────────────────────────────

// PrepareAll wires imports and exports across every container and marks
// them prepared. Everything else stays lazy: components construct on first
// access, providers start on demand. Idempotent and safe under concurrent
// callers: wiring runs exactly once, and a wiring error is definitive —
// configuration does not get better by retrying.
func (a *Application) PrepareAll() error {
	a.wireOnce.Do(func() { a.wireErr = a.wire() })
	if a.wireErr != nil {
		return a.wireErr
	}
	for _, c := range a.containers() {
		c.Prepare()
	}
	return nil
}

// BootAll wires, starts every declared provider (root container first,
// declaration order within each container), then eagerly resolves every
// registered key in every container. All configuration errors — duplicate
// or unknown keys, unauthorized imports, cycles — surface here, before the
// process accepts traffic.
func (a *Application) BootAll() error {
	if err := a.PrepareAll(); err != nil {
		return err
	}
	for _, c := range a.containers() {
		if err := c.StartProviders(); err != nil {
			return err
		}
	}
	for _, c := range a.containers() {
		if err := c.ResolveAll(); err != nil {
			return err
		}
		c.MarkBooted()
	}
	return nil
}

// ShutdownAll stops every started provider in reverse start order. Stop
// failures do not halt the walk; they are aggregated into the returned
// error.
func (a *Application) ShutdownAll() error {
	a.mu.Lock()
	order := make([]*container.Provider, len(a.started))
	copy(order, a.started)
	a.started = a.started[:0]
	a.mu.Unlock()

	var err error
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		if stopErr := p.Stop(); stopErr != nil {
			a.log.Error("provider stop failed",
				zap.String("container", p.Container().Name()),
				zap.String("provider", p.Name()),
				zap.Error(stopErr))
			err = multierr.Append(err, stopErr)
		}
	}
	return err
}
