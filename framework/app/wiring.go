package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/loomstack/loom/framework/container"
)

// wire resolves every import declaration across the application. It runs
// exactly once, after all export lists are known and before any provider
// starts: duplicate keys, unauthorized imports, and import cycles are all
// caught here rather than at resolution time.
func (a *Application) wire() error {
	all := a.containers()

	if err := a.checkImportCycles(all); err != nil {
		return err
	}

	for _, importer := range all {
		for _, decl := range importer.Imports() {
			if err := a.installImport(importer, decl); err != nil {
				return err
			}
		}
	}
	return nil
}

// installImport installs one import declaration: a lazy proxy per
// effective key, aliased under the declared prefix (or the source
// container's name).
func (a *Application) installImport(importer *container.Container, decl container.ImportDecl) error {
	source, ok := a.Container(decl.From)
	if !ok {
		return &container.ConfigurationError{Reason: fmt.Sprintf("container %q imports from unknown container %q",
			importer.Name(), decl.From)}
	}
	if source == importer {
		return &container.ConfigurationError{Reason: fmt.Sprintf("container %q imports from itself", importer.Name())}
	}

	keys := decl.Keys
	if keys == nil {
		keys = source.ExportedKeys()
	}
	prefix := decl.As
	if prefix == "" {
		prefix = source.Name()
	}

	for _, key := range keys {
		if !source.ExportsKey(key) {
			return &container.UnauthorizedImportError{
				Importer: importer.Name(),
				Source:   source.Name(),
				Key:      key,
			}
		}
		alias := prefix + "." + key
		if err := importer.RegisterImport(alias, source, key); err != nil {
			return err
		}
		a.log.Debug("import wired",
			zap.String("importer", importer.Name()),
			zap.String("source", source.Name()),
			zap.String("key", key),
			zap.String("alias", alias))
	}
	return nil
}

// checkImportCycles rejects circular import declarations from the
// declarations alone, before installing anything. Imports are lazy
// proxies, so a cycle would not deadlock resolution — it is still an
// incoherent configuration and fails fast.
func (a *Application) checkImportCycles(all []*container.Container) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(all))
	byName := make(map[string]*container.Container, len(all))
	for _, c := range all {
		byName[c.Name()] = c
	}

	var visit func(c *container.Container, path []string) error
	visit = func(c *container.Container, path []string) error {
		switch state[c.Name()] {
		case visiting:
			// Trim the path to the cycle itself.
			chain := append(path, c.Name())
			for i, name := range chain {
				if name == c.Name() {
					chain = chain[i:]
					break
				}
			}
			return &container.ImportCycleError{Chain: chain}
		case done:
			return nil
		}
		state[c.Name()] = visiting
		for _, decl := range c.Imports() {
			source, ok := byName[decl.From]
			if !ok {
				// Reported with full context by installImport.
				continue
			}
			if err := visit(source, append(path, c.Name())); err != nil {
				return err
			}
		}
		state[c.Name()] = done
		return nil
	}

	for _, c := range all {
		if err := visit(c, nil); err != nil {
			return err
		}
	}
	return nil
}
