package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomstack/loom/framework/container"
)

// ── Basic resolution ──────────────────────────────────────────────────────────

func TestContainer_GreeterScenario(t *testing.T) {
	c := container.New("App")
	calls := 0
	require.NoError(t, c.Register("greeter", func(*container.Container) (any, error) {
		calls++
		return "hello", nil
	}))

	v, err := c.Resolve("greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	again, err := c.Resolve("greeter")
	require.NoError(t, err)
	assert.Equal(t, v, again)
	assert.Equal(t, 1, calls)
}

func TestContainer_ResolveAs(t *testing.T) {
	c := container.New("main")
	require.NoError(t, c.RegisterValue("port", 8080))

	port, err := container.ResolveAs[int](c, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = container.ResolveAs[string](c, "port")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolved to int")
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func TestContainer_StateTransitions(t *testing.T) {
	c := container.New("main")
	assert.Equal(t, container.StateUnprepared, c.State())

	c.Prepare()
	assert.Equal(t, container.StatePrepared, c.State())
	c.Prepare()
	assert.Equal(t, container.StatePrepared, c.State())

	require.NoError(t, c.Boot())
	assert.Equal(t, container.StateBooted, c.State())
}

func TestContainer_BootResolvesEagerly(t *testing.T) {
	c := container.New("main")
	resolved := map[string]bool{}
	for _, key := range []string{"alpha", "beta"} {
		key := key
		require.NoError(t, c.Register(key, func(*container.Container) (any, error) {
			resolved[key] = true
			return key, nil
		}))
	}

	require.NoError(t, c.Boot())
	assert.True(t, resolved["alpha"])
	assert.True(t, resolved["beta"])
}

func TestContainer_BootSurfacesFactoryErrors(t *testing.T) {
	c := container.New("main")
	boom := errors.New("bad component")
	require.NoError(t, c.Register("broken", func(*container.Container) (any, error) {
		return nil, boom
	}))

	require.ErrorIs(t, c.Boot(), boom)
}

func TestContainer_BootStartsProviders(t *testing.T) {
	c := container.New("main")
	_, err := c.RegisterProvider("db", container.Hooks{
		Start: func(s *container.Scope) error {
			return s.RegisterValue("database", "handle")
		},
	})
	require.NoError(t, err)

	require.NoError(t, c.Boot())

	v, err := c.Resolve("database")
	require.NoError(t, err)
	assert.Equal(t, "handle", v)
}

func TestContainer_ShutdownStopsInReverseStartOrder(t *testing.T) {
	c := container.New("main")
	var stopped []string
	for _, name := range []string{"db", "cache", "web"} {
		name := name
		_, err := c.RegisterProvider(name, container.Hooks{
			Stop: func(*container.Scope) error {
				stopped = append(stopped, name)
				return nil
			},
		})
		require.NoError(t, err)
	}

	require.NoError(t, c.StartProviders())
	require.NoError(t, c.Shutdown())
	assert.Equal(t, []string{"web", "cache", "db"}, stopped)
}

// ── Exports ───────────────────────────────────────────────────────────────────

func TestContainer_NothingExportedByDefault(t *testing.T) {
	c := container.New("cdn")
	require.NoError(t, c.RegisterValue("purge", "svc"))

	assert.Empty(t, c.ExportedKeys())
	assert.False(t, c.ExportsKey("purge"))
}

func TestContainer_ExportGrantsVisibility(t *testing.T) {
	c := container.New("cdn")
	c.Export("purge", "stats")

	assert.Equal(t, []string{"purge", "stats"}, c.ExportedKeys())
	assert.True(t, c.ExportsKey("purge"))
	assert.False(t, c.ExportsKey("secrets"))
}

func TestContainer_ExportAll(t *testing.T) {
	c := container.New("shared")
	require.NoError(t, c.RegisterValue("a", 1))
	require.NoError(t, c.RegisterValue("b", 2))
	c.ExportAll()

	assert.Equal(t, []string{"a", "b"}, c.ExportedKeys())
}
