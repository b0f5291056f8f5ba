package container

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ────────────────────────────────────────────────────────────
//
// All container failures are configuration or programming errors. They are
// never retried: wiring-time errors (duplicate keys, unauthorized imports,
// cycles) abort application startup; resolution-time errors (unknown keys)
// propagate to whichever caller triggered the resolution.

// DuplicateKeyError reports a registration conflict: the key is already
// present in the container, whether registered locally, by a provider, or
// installed as an import proxy.
type DuplicateKeyError struct {
	Container string
	Key       string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("container %q: key %q is already registered", e.Container, e.Key)
}

// UnknownKeyError reports resolution of a key with no matching registration.
type UnknownKeyError struct {
	Container string
	Key       string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("container %q: no registration for key %q", e.Container, e.Key)
}

// UnauthorizedImportError reports an import of a key the source container
// does not export. Raised at wiring time, before any provider starts.
type UnauthorizedImportError struct {
	Importer string
	Source   string
	Key      string
}

func (e *UnauthorizedImportError) Error() string {
	return fmt.Sprintf("container %q: key %q is not exported by %q", e.Importer, e.Key, e.Source)
}

// ProviderCycleError reports a circular start dependency between providers.
// Chain lists provider ids ("container/provider") in dependency order; the
// first and last elements are the same provider.
type ProviderCycleError struct {
	Chain []string
}

func (e *ProviderCycleError) Error() string {
	return fmt.Sprintf("provider start cycle: %s", strings.Join(e.Chain, " -> "))
}

// ImportCycleError reports circular import declarations between containers.
// Chain lists container names in import order; the first and last elements
// are the same container.
type ImportCycleError struct {
	Chain []string
}

func (e *ImportCycleError) Error() string {
	return fmt.Sprintf("import cycle between containers: %s", strings.Join(e.Chain, " -> "))
}

// As lets errors.As match an ImportCycleError as a *ConfigurationError,
// since a cyclic import is one kind of invalid configuration.
func (e *ImportCycleError) As(target any) bool {
	if p, ok := target.(**ConfigurationError); ok {
		*p = &ConfigurationError{Reason: e.Error()}
		return true
	}
	return false
}

// ConfigurationError reports invalid application configuration that does
// not fit a more specific error type (unknown source container, duplicate
// slice or provider names, self-imports).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}
