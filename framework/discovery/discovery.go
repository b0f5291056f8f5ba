// Package discovery is the boundary to component auto-discovery. A Source
// produces an ordered list of (dotted-key, factory) pairs — typically
// derived from a directory or namespace convention elsewhere — and Apply
// registers them into a container. The container layer never touches the
// file system.
package discovery

import (
	"github.com/loomstack/loom/framework/container"
)

// Entry is one discovered component.
type Entry struct {
	Key     string
	Factory container.Factory

	// NonRegistrable marks a component that is declared but opted out of
	// registration; Apply skips it.
	NonRegistrable bool
}

// Source supplies discovered components in declaration order.
type Source interface {
	Components() ([]Entry, error)
}

// Static is an in-memory Source.
type Static []Entry

func (s Static) Components() ([]Entry, error) { return s, nil }

// Option configures Apply.
type Option func(*options)

type options struct {
	excluded map[string]bool
}

// Exclude skips the given keys during Apply, on top of any entries
// flagged NonRegistrable.
func Exclude(keys ...string) Option {
	return func(o *options) {
		for _, k := range keys {
			o.excluded[k] = true
		}
	}
}

// Apply registers every registrable entry from src into c, preserving
// source order. A key that is already registered fails with
// *DuplicateKeyError.
func Apply(c *container.Container, src Source, opts ...Option) error {
	o := &options{excluded: make(map[string]bool)}
	for _, opt := range opts {
		opt(o)
	}

	entries, err := src.Components()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.NonRegistrable || o.excluded[e.Key] {
			continue
		}
		if err := c.Register(e.Key, e.Factory); err != nil {
			return err
		}
	}
	return nil
}
