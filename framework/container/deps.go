package container

import (
	"strings"
)

// ── Dependency declarations ───────────────────────────────────────────────────

// Dep declares one dependency of a component: the registry key to resolve
// and the local name the resolved value is bound to.
type Dep struct {
	Local string
	Key   string
}

// Use declares a dependency bound under the last dotted segment of its
// key: Use("persistence.db") binds local name "db".
func Use(key string) Dep {
	local := key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		local = key[i+1:]
	}
	return Dep{Local: local, Key: key}
}

// UseAs declares a dependency bound under an explicit local name, leaving
// the registry's own key namespace untouched.
func UseAs(local, key string) Dep {
	return Dep{Local: local, Key: key}
}

// ── Blueprint ─────────────────────────────────────────────────────────────────

// Blueprint couples a component constructor with its declared
// dependencies. The constructor receives resolved values keyed by local
// name.
type Blueprint struct {
	deps []Dep
	ctor func(deps map[string]any) (any, error)
}

// NewBlueprint declares a component built by ctor from the given
// dependencies.
func NewBlueprint(ctor func(deps map[string]any) (any, error), deps ...Dep) *Blueprint {
	return &Blueprint{deps: deps, ctor: ctor}
}

// Construct builds the component against c. Values present in overrides
// are bound directly under their local name, bypassing the registry for
// those dependencies only; every other declared key resolves from c. A
// missing key surfaces *UnknownKeyError — a dependency is never silently
// absent.
//
// Overrides substitute collaborators without touching the registry, which
// is how a component is exercised in isolation:
//
//	svc, err := blueprint.Construct(c, map[string]any{"mailer": fakeMailer})
func (b *Blueprint) Construct(c *Container, overrides map[string]any) (any, error) {
	bound := make(map[string]any, len(b.deps))
	for _, d := range b.deps {
		if v, ok := overrides[d.Local]; ok {
			bound[d.Local] = v
			continue
		}
		v, err := c.Resolve(d.Key)
		if err != nil {
			return nil, err
		}
		bound[d.Local] = v
	}
	return b.ctor(bound)
}

// Deps returns the declared dependencies in declaration order.
func (b *Blueprint) Deps() []Dep {
	out := make([]Dep, len(b.deps))
	copy(out, b.deps)
	return out
}

// Factory adapts the blueprint to a registry factory, resolving every
// declared dependency from the owning container.
func (b *Blueprint) Factory() Factory {
	return func(c *Container) (any, error) {
		return b.Construct(c, nil)
	}
}
