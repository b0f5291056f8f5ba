// Package container provides named component containers with lazy,
// memoized resolution, a provider lifecycle, and cross-container
// import/export wiring.
//
// # Containers and registries
//
// A Container is a named scope around a Registry: a dotted-key → factory
// store in which every factory runs at most once. Resolving a key twice
// returns the identical instance; concurrent first resolutions of one key
// collapse to a single construction.
//
//	c := container.New("main")
//	c.Register("greeter", func(c *container.Container) (any, error) {
//	    return "hello", nil
//	})
//	v, err := c.Resolve("greeter")
//
// Duplicate registration fails with *DuplicateKeyError; resolving an
// absent key fails with *UnknownKeyError.
//
// # Providers
//
// A Provider is a deferred unit of setup with prepare/start/stop hooks.
// Its start hook registers keys imperatively through a Scope, so a
// provider's keys exist only once it has started:
//
//	c.RegisterProvider("db", container.Hooks{
//	    Start: func(s *container.Scope) error {
//	        handle := openDatabase()
//	        return s.RegisterValue("db.conn", handle)
//	    },
//	    Stop: func(s *container.Scope) error {
//	        return closeDatabase()
//	    },
//	})
//
// Transitions are monotonic and idempotent: Start implies Prepare, a
// second Start is a no-op, Stop is only meaningful from Started. Inside a
// start hook, Scope.Require starts another provider first; circular
// requirements fail with *ProviderCycleError.
//
// In a prepared (lazy) container, resolving a missing key whose first
// dotted segment names a provider starts that provider on demand.
//
// # Dependency declarations
//
// A Blueprint pairs a constructor with declared dependency keys,
// optionally renamed to local names. Construction may override individual
// dependencies without touching the registry:
//
//	bp := container.NewBlueprint(newCheckout,
//	    container.Use("payments.gateway"),
//	    container.UseAs("log", "logger"),
//	)
//	c.Register("checkout", bp.Factory())
//
// # Imports and exports
//
// Containers export nothing by default. Export grants visibility;
// ImportDecl pulls exported keys in under "<alias>.<key>" as lazy proxies
// that delegate to the source container, so every importer shares the
// source's singleton. Wiring across containers, including import-cycle
// rejection, is performed by the application layer (see package app).
package container
